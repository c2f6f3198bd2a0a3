package driver

import (
	"errors"
	"net/http"

	"github.com/alorle/iptv-player/internal/application"
)

// RemoteHTTPHandler accepts remote control key presses.
type RemoteHTTPHandler struct {
	service *application.RemoteService
}

// NewRemoteHTTPHandler creates a new HTTP handler for the remote control.
func NewRemoteHTTPHandler(service *application.RemoteService) *RemoteHTTPHandler {
	return &RemoteHTTPHandler{service: service}
}

// ServeHTTP handles GET /remote and POST /remote/keys/{key}
func (h *RemoteHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest, ok := subPath(r.URL.Path, "/remote")
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if rest == "" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, toRemoteResponse(h.service.Snapshot(r.Context())))
		return
	}

	keyParam, ok := subPath(rest, "keys")
	if !ok || keyParam == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var key string
	if err := bindPathParam("key", keyParam, &key); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.service.Press(r.Context(), application.Key(key))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toRemoteResponse(snap))
	case errors.Is(err, application.ErrUnknownKey):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusServiceUnavailable, err.Error())
	}
}
