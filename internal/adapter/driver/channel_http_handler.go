package driver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alorle/iptv-player/internal/application"
	"github.com/alorle/iptv-player/internal/channel"
)

// ChannelHTTPHandler handles HTTP requests for channel management.
type ChannelHTTPHandler struct {
	service *application.ChannelService
}

// NewChannelHTTPHandler creates a new HTTP handler for channels.
func NewChannelHTTPHandler(service *application.ChannelService) *ChannelHTTPHandler {
	return &ChannelHTTPHandler{service: service}
}

// channelRequest represents the JSON body for adding or updating a channel.
type channelRequest struct {
	Number    int    `json:"number"`
	Name      string `json:"name"`
	StreamURL string `json:"stream_url"`
}

// ServeHTTP routes the request to the appropriate handler based on method and path.
func (h *ChannelHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest, ok := subPath(r.URL.Path, "/channels")
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleAdd(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	var number int
	if err := bindPathParam("number", rest, &number); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, number)
	case http.MethodPut:
		h.handleUpdate(w, r, number)
	case http.MethodDelete:
		h.handleDelete(w, r, number)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// writeChannelError maps channel domain errors to status codes.
func writeChannelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, channel.ErrInvalidNumber),
		errors.Is(err, channel.ErrEmptyName),
		errors.Is(err, channel.ErrEmptyStreamURL),
		errors.Is(err, channel.ErrInvalidName),
		errors.Is(err, channel.ErrInvalidStreamURL):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, channel.ErrChannelNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, channel.ErrChannelAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleList handles GET /channels
func (h *ChannelHTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	channels, err := h.service.ListChannels(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]channelResponse, len(channels))
	for i, ch := range channels {
		response[i] = toChannelResponse(ch)
	}

	writeJSON(w, http.StatusOK, response)
}

// handleAdd handles POST /channels
func (h *ChannelHTTPHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req channelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ch, err := h.service.AddChannel(r.Context(), req.Number, req.Name, req.StreamURL)
	if err != nil {
		writeChannelError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toChannelResponse(ch))
}

// handleGet handles GET /channels/{number}
func (h *ChannelHTTPHandler) handleGet(w http.ResponseWriter, r *http.Request, number int) {
	ch, err := h.service.GetChannel(r.Context(), number)
	if err != nil {
		writeChannelError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toChannelResponse(ch))
}

// handleUpdate handles PUT /channels/{number}
func (h *ChannelHTTPHandler) handleUpdate(w http.ResponseWriter, r *http.Request, number int) {
	var req channelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ch, err := h.service.UpdateChannel(r.Context(), number, req.Name, req.StreamURL)
	if err != nil {
		writeChannelError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toChannelResponse(ch))
}

// handleDelete handles DELETE /channels/{number}
func (h *ChannelHTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request, number int) {
	if err := h.service.DeleteChannel(r.Context(), number); err != nil {
		writeChannelError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
