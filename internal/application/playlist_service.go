package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/alorle/iptv-player/internal/metrics"
	"github.com/alorle/iptv-player/internal/playlist"
	"github.com/alorle/iptv-player/internal/port/driven"
)

var (
	ErrEmptyPlaylist    = errors.New("Playlist is empty")
	ErrNoPlaylistSource = errors.New("No playlist file path saved")
	ErrBlankSource      = errors.New("playlist source cannot be empty")
	ErrFetchFailed      = errors.New("playlist fetch failed")
)

// DefaultFetchTimeout bounds a single playlist fetch.
const DefaultFetchTimeout = 30 * time.Second

// LoadReport summarizes a successful playlist load.
type LoadReport struct {
	Source       string
	ChannelCount int
	SkippedLines int
	Skips        []playlist.Skip
}

// PlaylistService loads playlists into the channel store and exports the
// stored channel list. It depends only on port interfaces.
type PlaylistService struct {
	source       driven.PlaylistSource
	channels     driven.ChannelRepository
	prefs        driven.PreferencesRepository
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// NewPlaylistService creates a PlaylistService. A non-positive fetchTimeout
// uses DefaultFetchTimeout.
func NewPlaylistService(
	source driven.PlaylistSource,
	channels driven.ChannelRepository,
	prefs driven.PreferencesRepository,
	fetchTimeout time.Duration,
	logger *slog.Logger,
) *PlaylistService {
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &PlaylistService{
		source:       source,
		channels:     channels,
		prefs:        prefs,
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}
}

// Load fetches and parses the playlist at location. Only a successful parse
// touches the store: playlist channels are replaced, manual channels kept
// and location is remembered for Refresh. Parse failures are returned as
// *playlist.ParseError.
func (s *PlaylistService) Load(ctx context.Context, location string) (LoadReport, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return LoadReport{}, ErrBlankSource
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	content, err := s.source.Fetch(fetchCtx, location)
	cancel()
	if err != nil {
		metrics.RecordPlaylistLoad("fetch_error", 0, 0)
		s.logger.Warn("playlist fetch failed", "source", location, "error", err)
		return LoadReport{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	if strings.TrimSpace(content) == "" {
		metrics.RecordPlaylistLoad("empty", 0, 0)
		return LoadReport{}, ErrEmptyPlaylist
	}

	result, err := playlist.Parse(content)
	if err != nil {
		metrics.RecordPlaylistLoad("parse_error", 0, 0)
		s.logger.Warn("playlist rejected", "source", location, "error", err)
		return LoadReport{}, err
	}

	if err := s.channels.ReplacePlaylistChannels(ctx, result.Channels); err != nil {
		return LoadReport{}, fmt.Errorf("store channels: %w", err)
	}
	if err := s.prefs.SetPlaylistSource(ctx, location); err != nil {
		return LoadReport{}, fmt.Errorf("remember playlist source: %w", err)
	}

	metrics.RecordPlaylistLoad("success", len(result.Channels), result.SkippedLines)
	s.logger.Info("playlist loaded",
		"source", location,
		"channels", len(result.Channels),
		"skipped_lines", result.SkippedLines,
	)
	for _, skip := range result.Skips {
		s.logger.Debug("playlist entry skipped", "line", skip.Line, "reason", skip.Reason)
	}

	return LoadReport{
		Source:       location,
		ChannelCount: len(result.Channels),
		SkippedLines: result.SkippedLines,
		Skips:        result.Skips,
	}, nil
}

// Refresh reloads the remembered playlist source.
func (s *PlaylistService) Refresh(ctx context.Context) (LoadReport, error) {
	p, err := s.prefs.Get(ctx)
	if err != nil {
		return LoadReport{}, err
	}
	if !p.HasPlaylist() {
		return LoadReport{}, ErrNoPlaylistSource
	}
	return s.Load(ctx, p.PlaylistSource())
}

// Export writes the stored channel list as an M3U playlist.
func (s *PlaylistService) Export(ctx context.Context, w io.Writer) error {
	channels, err := s.channels.FindAll(ctx)
	if err != nil {
		return err
	}
	return playlist.Encode(w, channels)
}
