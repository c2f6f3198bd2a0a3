package driver

import (
	"encoding/json"
	"net/http"

	"github.com/alorle/iptv-player/internal/application"
)

// SettingsHTTPHandler handles HTTP requests for user settings.
type SettingsHTTPHandler struct {
	service *application.SettingsService
}

// NewSettingsHTTPHandler creates a new HTTP handler for settings.
func NewSettingsHTTPHandler(service *application.SettingsService) *SettingsHTTPHandler {
	return &SettingsHTTPHandler{service: service}
}

type settingsRequest struct {
	AutoPlayOnLaunch *bool `json:"auto_play_on_launch"`
}

type settingsResponse struct {
	PlaylistSource    string `json:"playlist_source"`
	ChannelCount      int    `json:"channel_count"`
	LastChannelNumber int    `json:"last_channel_number"`
	AutoPlayOnLaunch  bool   `json:"auto_play_on_launch"`
}

func toSettingsResponse(s application.Settings) settingsResponse {
	return settingsResponse{
		PlaylistSource:    s.PlaylistSource,
		ChannelCount:      s.ChannelCount,
		LastChannelNumber: s.LastChannelNumber,
		AutoPlayOnLaunch:  s.AutoPlayOnLaunch,
	}
}

// ServeHTTP routes the request to the appropriate handler based on method and path.
func (h *SettingsHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/settings" && r.Method == http.MethodGet:
		settings, err := h.service.Get(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, toSettingsResponse(settings))

	case r.URL.Path == "/settings" && r.Method == http.MethodPut:
		var req settingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AutoPlayOnLaunch == nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		settings, err := h.service.SetAutoPlay(r.Context(), *req.AutoPlayOnLaunch)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, toSettingsResponse(settings))

	case r.URL.Path == "/settings/data" && r.Method == http.MethodDelete:
		if err := h.service.ClearAllData(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
