package driven

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alorle/iptv-player/internal/channel"
	"github.com/alorle/iptv-player/internal/metrics"
)

const (
	playerWriteWait  = 10 * time.Second
	playerPongWait   = 60 * time.Second
	playerPingPeriod = 30 * time.Second
	playerReadLimit  = 64 << 10
	playerSendBuffer = 64
)

// Event types sent to render clients.
const (
	EventPlay   = "play"
	EventStop   = "stop"
	EventRetry  = "retry"
	EventNotice = "notice"

	// EventStatus is sent by render clients to report their state.
	EventStatus = "status"
)

// ErrPlayerHubStopped is returned for commands sent after Run returned.
var ErrPlayerHubStopped = errors.New("player hub stopped")

// PlayerEnvelope wraps every message exchanged with a render client.
type PlayerEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// PlayerChannel is the channel description sent with play and retry events.
type PlayerChannel struct {
	Number     int    `json:"number"`
	Name       string `json:"name"`
	StreamURL  string `json:"stream_url"`
	GroupTitle string `json:"group_title,omitempty"`
	LogoURL    string `json:"logo_url,omitempty"`
}

// PlayerNotice is the payload of notice events.
type PlayerNotice struct {
	Message string `json:"message"`
}

func newPlayerEnvelope(eventType string, data any) ([]byte, error) {
	env := PlayerEnvelope{Type: eventType}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

// PlayerClient is one connected render client.
type PlayerClient struct {
	hub  *PlayerHub
	conn *websocket.Conn
	send chan []byte
}

// PlayerHub implements the PlaybackEngine and Notifier ports by
// broadcasting commands to every connected render client. The last play
// command is replayed to clients that connect later.
type PlayerHub struct {
	logger *slog.Logger

	register   chan *PlayerClient
	unregister chan *PlayerClient
	broadcast  chan []byte
	done       chan struct{}

	mu       sync.RWMutex
	clients  map[*PlayerClient]bool
	lastPlay []byte
}

// NewPlayerHub creates a hub. Run must be started before clients connect.
func NewPlayerHub(logger *slog.Logger) *PlayerHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlayerHub{
		logger:     logger,
		register:   make(chan *PlayerClient),
		unregister: make(chan *PlayerClient),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		clients:    make(map[*PlayerClient]bool),
	}
}

// Run is the hub's main loop. It returns when ctx is done, closing every
// client connection.
func (h *PlayerHub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			metrics.SetPlayerClients(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			last := h.lastPlay
			count := len(h.clients)
			h.mu.Unlock()

			if last != nil {
				client.enqueue(last)
			}
			metrics.SetPlayerClients(count)
			h.logger.Info("player client connected", "remote_addr", client.remoteAddr(), "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			metrics.SetPlayerClients(count)
			h.logger.Info("player client disconnected", "remote_addr", client.remoteAddr(), "clients", count)

		case msg := <-h.broadcast:
			h.mu.RLock()
			var slow []*PlayerClient
			for client := range h.clients {
				if !client.enqueue(msg) {
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range slow {
				h.logger.Warn("dropping slow player client", "remote_addr", client.remoteAddr())
				h.drop(client)
			}
		}
	}
}

func (h *PlayerHub) drop(client *PlayerClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	count := len(h.clients)
	h.mu.Unlock()
	metrics.SetPlayerClients(count)
}

// ClientCount returns the number of connected render clients.
func (h *PlayerHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Play tells every client to render ch.
func (h *PlayerHub) Play(ctx context.Context, ch channel.Channel) error {
	msg, err := newPlayerEnvelope(EventPlay, toPlayerChannel(ch))
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.lastPlay = msg
	h.mu.Unlock()

	return h.send(ctx, msg)
}

// Retry tells every client to restart ch.
func (h *PlayerHub) Retry(ctx context.Context, ch channel.Channel) error {
	msg, err := newPlayerEnvelope(EventRetry, toPlayerChannel(ch))
	if err != nil {
		return err
	}
	return h.send(ctx, msg)
}

// Stop tells every client to stop playback.
func (h *PlayerHub) Stop(ctx context.Context) error {
	msg, err := newPlayerEnvelope(EventStop, nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.lastPlay = nil
	h.mu.Unlock()

	return h.send(ctx, msg)
}

// Notify shows a transient message on every client.
func (h *PlayerHub) Notify(ctx context.Context, message string) error {
	msg, err := newPlayerEnvelope(EventNotice, PlayerNotice{Message: message})
	if err != nil {
		return err
	}
	return h.send(ctx, msg)
}

func (h *PlayerHub) send(ctx context.Context, msg []byte) error {
	select {
	case h.broadcast <- msg:
		return nil
	case <-h.done:
		return ErrPlayerHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func toPlayerChannel(ch channel.Channel) PlayerChannel {
	return PlayerChannel{
		Number:     ch.Number(),
		Name:       ch.Name(),
		StreamURL:  ch.StreamURL(),
		GroupTitle: ch.GroupTitle(),
		LogoURL:    ch.LogoURL(),
	}
}

// NewClient wraps an upgraded connection.
func (h *PlayerHub) NewClient(conn *websocket.Conn) *PlayerClient {
	return &PlayerClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, playerSendBuffer),
	}
}

// Register adds the client to the hub. It reports false when the hub has
// stopped.
func (h *PlayerHub) Register(client *PlayerClient) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// enqueue reports false when the client's buffer is full.
func (c *PlayerClient) enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *PlayerClient) remoteAddr() string {
	if c.conn == nil {
		return ""
	}
	return c.conn.RemoteAddr().String()
}

// ReadPump passes every message received from the client to onMessage until
// the connection fails, then unregisters the client.
func (c *PlayerClient) ReadPump(onMessage func(PlayerEnvelope)) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(playerReadLimit)
	c.conn.SetReadDeadline(time.Now().Add(playerPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(playerPongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("player websocket error", "error", err)
			}
			return
		}

		var env PlayerEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.hub.logger.Debug("ignoring malformed player message", "error", err)
			continue
		}
		onMessage(env)
	}
}

// WritePump forwards queued messages to the connection and keeps it alive
// with pings.
func (c *PlayerClient) WritePump() {
	ticker := time.NewTicker(playerPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(playerWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(playerWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
