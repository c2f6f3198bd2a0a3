package driver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/alorle/iptv-player/internal/adapter/driven"
	"github.com/alorle/iptv-player/internal/application"
	"github.com/alorle/iptv-player/internal/playback"
)

// statusReport is the payload of a render client's status message.
type statusReport struct {
	Number   int    `json:"number"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

// PlayerWSHandler upgrades render clients to websockets, registers them with
// the hub and feeds their status reports to the playback service.
type PlayerWSHandler struct {
	hub      *driven.PlayerHub
	playback *application.PlaybackService
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewPlayerWSHandler creates the /ws/player handler.
func NewPlayerWSHandler(hub *driven.PlayerHub, playbackService *application.PlaybackService, logger *slog.Logger) *PlayerWSHandler {
	return &PlayerWSHandler{
		hub:      hub,
		playback: playbackService,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Render clients run on the local network, often from file:// pages.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *PlayerWSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("player websocket upgrade failed", "error", err)
		return
	}

	client := h.hub.NewClient(conn)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump(h.handleMessage)
}

func (h *PlayerWSHandler) handleMessage(env driven.PlayerEnvelope) {
	if env.Type != driven.EventStatus {
		h.logger.Debug("ignoring player message", "type", env.Type)
		return
	}

	var rep statusReport
	if err := json.Unmarshal(env.Data, &rep); err != nil {
		h.logger.Debug("malformed player status", "error", err)
		return
	}

	state, err := h.playback.ReportState(rep.Number, playback.Status(rep.Status), rep.Progress, rep.Message)
	if err != nil {
		h.logger.Debug("player status rejected", "number", rep.Number, "status", rep.Status, "error", err)
		return
	}
	h.logger.Debug("player status", "number", rep.Number, "status", state.Status())
}
