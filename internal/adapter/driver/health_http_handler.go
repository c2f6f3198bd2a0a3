package driver

import (
	"net/http"

	"github.com/alorle/iptv-player/internal/application"
)

// HealthHTTPHandler serves GET /health. A degraded service answers 503 so
// orchestrators can take it out of rotation.
type HealthHTTPHandler struct {
	service *application.HealthService
}

func NewHealthHTTPHandler(service *application.HealthService) *HealthHTTPHandler {
	return &HealthHTTPHandler{service: service}
}

type healthResponse struct {
	Status          string `json:"status"`
	Store           string `json:"store"`
	StoreError      string `json:"store_error,omitempty"`
	PlaylistFetcher string `json:"playlist_fetcher,omitempty"`
	PlayerClients   int    `json:"player_clients"`
}

func (h *HealthHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	report := h.service.Check(r.Context())
	resp := healthResponse{
		Status:          report.Status,
		Store:           application.HealthOK,
		PlaylistFetcher: report.FetcherState,
		PlayerClients:   report.PlayerClients,
	}
	if report.StoreErr != nil {
		resp.Store = "error"
		resp.StoreError = report.StoreErr.Error()
	}

	status := http.StatusOK
	if report.Status != application.HealthOK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
