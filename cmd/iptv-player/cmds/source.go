package cmds

import (
	"fmt"
	"log/slog"

	"github.com/alorle/iptv-player/internal/adapter/driven"
	"github.com/alorle/iptv-player/internal/circuitbreaker"
	"github.com/alorle/iptv-player/internal/config"
	"github.com/alorle/iptv-player/internal/metrics"
)

const playlistBreakerName = "playlist_http"

// newPlaylistSource builds the scheme router over the guarded HTTP source
// and the file source. The per-host breakers are returned for health
// reporting.
func newPlaylistSource(cfg *config.Config, logger *slog.Logger) (*driven.PlaylistSourceRouter, *circuitbreaker.Group, error) {
	var cache *driven.PlaylistFileCache
	if cfg.Playlist.CacheDir != "" {
		c, err := driven.NewPlaylistFileCache(cfg.Playlist.CacheDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create playlist cache: %w", err)
		}
		cache = c
	}

	breakers := circuitbreaker.NewGroup(circuitbreaker.Config{
		Name:             playlistBreakerName,
		FailureThreshold: cfg.Resilience.CBFailureThreshold,
		Timeout:          cfg.Resilience.CBTimeout,
		HalfOpenRequests: cfg.Resilience.CBHalfOpenRequests,
		Logger:           logger,
		OnStateChange: func(name string, _, to circuitbreaker.State) {
			metrics.SetCircuitBreakerState(name, to.String())
		},
	})

	httpSource := driven.NewPlaylistHTTPSource(cfg.Playlist.FetchTimeout, cfg.Playlist.UserAgent, breakers, cache, logger)
	return driven.NewPlaylistSourceRouter(httpSource, driven.NewPlaylistFileSource()), breakers, nil
}
