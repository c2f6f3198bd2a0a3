package driver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alorle/iptv-player/internal/application"
	"github.com/alorle/iptv-player/internal/channel"
)

// PlaybackHTTPHandler handles HTTP requests that drive the player.
type PlaybackHTTPHandler struct {
	service *application.PlaybackService
	logger  *slog.Logger
}

// NewPlaybackHTTPHandler creates a new HTTP handler for playback.
func NewPlaybackHTTPHandler(service *application.PlaybackService, logger *slog.Logger) *PlaybackHTTPHandler {
	return &PlaybackHTTPHandler{service: service, logger: logger}
}

// ServeHTTP routes the request to the appropriate handler based on method and path.
func (h *PlaybackHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest, ok := subPath(r.URL.Path, "/playback")
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if rest == "" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, toPlaybackResponse(h.service.State()))
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch rest {
	case "next":
		h.run(w, r, h.service.Next)
	case "previous":
		h.run(w, r, h.service.Previous)
	case "retry":
		h.run(w, r, h.service.Retry)
	default:
		numberParam, ok := subPath(rest, "channel")
		if !ok || numberParam == "" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		var number int
		if err := bindPathParam("number", numberParam, &number); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.run(w, r, func(ctx context.Context) (channel.Channel, error) {
			return h.service.SwitchTo(ctx, number)
		})
	}
}

// run executes a playback command and answers with the resulting state. A
// rejected stream is not a request failure: the state carries the error.
func (h *PlaybackHTTPHandler) run(w http.ResponseWriter, r *http.Request, cmd func(context.Context) (channel.Channel, error)) {
	_, err := cmd(r.Context())
	switch {
	case err == nil, errors.Is(err, application.ErrUnplayableStream):
		writeJSON(w, http.StatusOK, toPlaybackResponse(h.service.State()))
	case errors.Is(err, channel.ErrChannelNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, application.ErrNoChannels),
		errors.Is(err, application.ErrNothingPlaying):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("playback command failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
	}
}
