package driver

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alorle/iptv-player/internal/adapter/driven"
	"github.com/alorle/iptv-player/internal/application"
)

// Services groups what the HTTP surface drives.
type Services struct {
	Channels *application.ChannelService
	Playlist *application.PlaylistService
	Playback *application.PlaybackService
	Remote   *application.RemoteService
	Settings *application.SettingsService
	Health   *application.HealthService
	Hub      *driven.PlayerHub
}

// NewRouter builds the root handler: the validated API under /api, the M3U
// export, the player websocket and the metrics endpoint.
func NewRouter(svc Services, logger *slog.Logger) (http.Handler, error) {
	doc, err := LoadOpenAPI()
	if err != nil {
		return nil, err
	}

	playlistHandler := NewPlaylistHTTPHandler(svc.Playlist, logger)
	channelHandler := NewChannelHTTPHandler(svc.Channels)
	playbackHandler := NewPlaybackHTTPHandler(svc.Playback, logger)
	remoteHandler := NewRemoteHTTPHandler(svc.Remote)
	settingsHandler := NewSettingsHTTPHandler(svc.Settings)

	apiMux := http.NewServeMux()
	apiMux.Handle("/channels", channelHandler)
	apiMux.Handle("/channels/", channelHandler)
	apiMux.Handle("/playlist", playlistHandler)
	apiMux.Handle("/playlist/", playlistHandler)
	apiMux.Handle("/playback", playbackHandler)
	apiMux.Handle("/playback/", playbackHandler)
	apiMux.Handle("/remote", remoteHandler)
	apiMux.Handle("/remote/", remoteHandler)
	apiMux.Handle("/settings", settingsHandler)
	apiMux.Handle("/settings/", settingsHandler)
	apiMux.Handle("/health", NewHealthHTTPHandler(svc.Health))

	rootMux := http.NewServeMux()
	rootMux.Handle("/api/openapi.yaml", NewOpenAPIHandler())
	rootMux.Handle("/api/", http.StripPrefix("/api", NewRequestValidator(doc)(apiMux)))
	rootMux.Handle("/playlist.m3u", playlistHandler)
	rootMux.Handle("/metrics", promhttp.Handler())
	if svc.Hub != nil {
		rootMux.Handle("/ws/player", NewPlayerWSHandler(svc.Hub, svc.Playback, logger))
	}

	return rootMux, nil
}
