package driver

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alorle/iptv-player/internal/application"
	"github.com/alorle/iptv-player/internal/playlist"
	"github.com/alorle/iptv-player/internal/port/driven"
)

// PlaylistHTTPHandler loads playlists (POST /playlist, POST /playlist/refresh)
// and exports the channel list (GET /playlist.m3u).
type PlaylistHTTPHandler struct {
	service *application.PlaylistService
	logger  *slog.Logger
}

// NewPlaylistHTTPHandler creates a new HTTP handler for playlists.
func NewPlaylistHTTPHandler(service *application.PlaylistService, logger *slog.Logger) *PlaylistHTTPHandler {
	return &PlaylistHTTPHandler{service: service, logger: logger}
}

type loadPlaylistRequest struct {
	Source string `json:"source"`
}

type skipResponse struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type loadReportResponse struct {
	Source       string         `json:"source"`
	ChannelCount int            `json:"channel_count"`
	SkippedLines int            `json:"skipped_lines"`
	Skips        []skipResponse `json:"skips,omitempty"`
}

func toLoadReportResponse(r application.LoadReport) loadReportResponse {
	resp := loadReportResponse{
		Source:       r.Source,
		ChannelCount: r.ChannelCount,
		SkippedLines: r.SkippedLines,
	}
	for _, s := range r.Skips {
		resp.Skips = append(resp.Skips, skipResponse{Line: s.Line, Reason: s.Reason})
	}
	return resp
}

// ServeHTTP routes the request to the appropriate handler based on method and path.
func (h *PlaylistHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/playlist.m3u":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleExport(w, r)
	case "/playlist":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleLoad(w, r)
	case "/playlist/refresh":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleRefresh(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// writeLoadError maps playlist load failures to status codes.
func (h *PlaylistHTTPHandler) writeLoadError(w http.ResponseWriter, err error) {
	var parseErr *playlist.ParseError
	switch {
	case errors.Is(err, application.ErrBlankSource),
		errors.Is(err, driven.ErrUnsupportedSourceScheme):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrNoPlaylistSource):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &parseErr), errors.Is(err, application.ErrEmptyPlaylist):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, application.ErrFetchFailed):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error("playlist load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleLoad handles POST /playlist
func (h *PlaylistHTTPHandler) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req loadPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.service.Load(r.Context(), req.Source)
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLoadReportResponse(report))
}

// handleRefresh handles POST /playlist/refresh
func (h *PlaylistHTTPHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Refresh(r.Context())
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLoadReportResponse(report))
}

// handleExport handles GET /playlist.m3u
func (h *PlaylistHTTPHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf); err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "audio/mpegurl")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
