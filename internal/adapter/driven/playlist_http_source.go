package driven

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/alorle/iptv-player/internal/circuitbreaker"
	"github.com/alorle/iptv-player/internal/metrics"
	"github.com/alorle/iptv-player/internal/playlist"
)

// maxPlaylistBytes bounds how much of a response body is read.
const maxPlaylistBytes = 32 << 20

var (
	ErrUpstreamStatus   = errors.New("playlist server returned an error status")
	ErrPlaylistTooLarge = errors.New("playlist exceeds size limit")
)

// StatusError is a non-200 answer from the playlist server. It matches
// ErrUpstreamStatus.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUpstreamStatus, e.Status)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUpstreamStatus
}

// upstreamFault reports whether err says the server is unhealthy. A client
// error such as 404 or 403 only says the location is wrong, except 429.
func upstreamFault(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 500 || statusErr.Code == http.StatusTooManyRequests
	}
	return err != nil
}

// PlaylistHTTPSource fetches playlists over HTTP(S). Calls go through a
// circuit breaker per host; when the origin fails and a cached copy exists,
// the cached copy is returned instead.
type PlaylistHTTPSource struct {
	client    *http.Client
	userAgent string
	breakers  *circuitbreaker.Group
	cache     *PlaylistFileCache
	logger    *slog.Logger
}

// NewPlaylistHTTPSource creates an HTTP playlist source. breakers and cache
// may be nil.
func NewPlaylistHTTPSource(timeout time.Duration, userAgent string, breakers *circuitbreaker.Group, cache *PlaylistFileCache, logger *slog.Logger) *PlaylistHTTPSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaylistHTTPSource{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		breakers:  breakers,
		cache:     cache,
		logger:    logger,
	}
}

// Fetch returns the playlist at location, falling back to the cache.
// Only bodies that start with the #EXTM3U header are cached.
func (s *PlaylistHTTPSource) Fetch(ctx context.Context, location string) (string, error) {
	var (
		content   string
		clientErr error
	)
	fetch := func() error {
		var err error
		content, err = s.download(ctx, location)
		if err != nil && !upstreamFault(err) {
			clientErr = err
			return nil
		}
		return err
	}

	var err error
	if s.breakers != nil {
		err = s.breakers.Get(breakerKey(location)).Execute(fetch)
	} else {
		err = fetch()
	}
	if err == nil {
		err = clientErr
	}

	if err == nil {
		s.store(location, content)
		return content, nil
	}

	s.logger.Warn("playlist fetch failed", "location", location, "error", err)
	if s.cache == nil || ctx.Err() != nil {
		return "", err
	}

	cached, cacheErr := s.cache.Get(location)
	if cacheErr != nil {
		return "", fmt.Errorf("upstream fetch failed and no cache available: %w", err)
	}

	s.logger.Warn("serving stale playlist from cache",
		"location", location,
		"fetched_at", cached.FetchedAt.Format(time.RFC3339),
		"age", time.Since(cached.FetchedAt).Round(time.Second).String(),
	)
	metrics.RecordStaleServe()
	return cached.Content, nil
}

func (s *PlaylistHTTPSource) download(ctx context.Context, location string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return "", fmt.Errorf("invalid playlist request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxPlaylistBytes {
		return "", ErrPlaylistTooLarge
	}
	return string(body), nil
}

func (s *PlaylistHTTPSource) store(location, content string) {
	if s.cache == nil {
		return
	}
	if !playlist.HasHeader(content) {
		s.logger.Warn("not caching response without playlist header", "location", location)
		return
	}
	if err := s.cache.Put(location, content); err != nil {
		s.logger.Warn("failed to update playlist cache", "location", location, "error", err)
	}
}

// breakerKey groups locations by host. Unparsable locations share one key;
// the request itself reports them as invalid.
func breakerKey(location string) string {
	u, err := url.Parse(location)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Host
}
