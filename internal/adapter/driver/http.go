package driver

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/alorle/iptv-player/internal/application"
	"github.com/alorle/iptv-player/internal/channel"
	"github.com/alorle/iptv-player/internal/playback"
)

// errorResponse represents a JSON error response.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// bindPathParam decodes a simple-style path parameter into dest.
func bindPathParam(name, value string, dest any) error {
	return runtime.BindStyledParameterWithOptions("simple", name, value, dest, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
}

// subPath returns the part of path after prefix without the leading slash.
// ok is false when path does not start with prefix.
func subPath(path, prefix string) (rest string, ok bool) {
	if !strings.HasPrefix(path, prefix) {
		return "", false
	}
	return strings.TrimPrefix(strings.TrimPrefix(path, prefix), "/"), true
}

// channelResponse represents a channel in JSON format.
type channelResponse struct {
	Number     int    `json:"number"`
	Name       string `json:"name"`
	StreamURL  string `json:"stream_url"`
	GroupTitle string `json:"group_title,omitempty"`
	LogoURL    string `json:"logo_url,omitempty"`
	Origin     string `json:"origin"`
}

func toChannelResponse(ch channel.Channel) channelResponse {
	return channelResponse{
		Number:     ch.Number(),
		Name:       ch.Name(),
		StreamURL:  ch.StreamURL(),
		GroupTitle: ch.GroupTitle(),
		LogoURL:    ch.LogoURL(),
		Origin:     string(ch.Origin()),
	}
}

func toChannelResponsePtr(ch *channel.Channel) *channelResponse {
	if ch == nil {
		return nil
	}
	resp := toChannelResponse(*ch)
	return &resp
}

// playbackResponse represents the player state in JSON format.
type playbackResponse struct {
	Status   string           `json:"status"`
	Progress int              `json:"progress,omitempty"`
	Message  string           `json:"message,omitempty"`
	Channel  *channelResponse `json:"channel,omitempty"`
}

func toPlaybackResponse(s playback.State) playbackResponse {
	resp := playbackResponse{
		Status:   string(s.Status()),
		Progress: s.Progress(),
		Message:  s.Message(),
	}
	if ch, ok := s.Channel(); ok {
		resp.Channel = toChannelResponsePtr(&ch)
	}
	return resp
}

// remoteResponse is the screen state in JSON format.
type remoteResponse struct {
	Overlays     []string         `json:"overlays"`
	NumberInput  string           `json:"number_input"`
	Current      *channelResponse `json:"current,omitempty"`
	ChannelCount int              `json:"channel_count"`
	State        playbackResponse `json:"state"`
	Notification string           `json:"notification,omitempty"`
}

func toRemoteResponse(s application.RemoteSnapshot) remoteResponse {
	overlays := make([]string, len(s.Overlays))
	for i, k := range s.Overlays {
		overlays[i] = string(k)
	}
	return remoteResponse{
		Overlays:     overlays,
		NumberInput:  s.NumberInput,
		Current:      toChannelResponsePtr(s.Current),
		ChannelCount: s.ChannelCount,
		State:        toPlaybackResponse(s.State),
		Notification: s.Notification,
	}
}
