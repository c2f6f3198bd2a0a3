package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alorle/iptv-player/internal/channel"
	"github.com/alorle/iptv-player/internal/metrics"
	"github.com/alorle/iptv-player/internal/navigation"
	"github.com/alorle/iptv-player/internal/playback"
	"github.com/alorle/iptv-player/internal/port/driven"
	"github.com/alorle/iptv-player/internal/streamurl"
)

var (
	ErrNoChannels       = errors.New("no channels available")
	ErrNothingPlaying   = errors.New("no channel selected")
	ErrUnplayableStream = errors.New("stream URL rejected")
	ErrStaleReport      = errors.New("state report for a channel that is no longer current")
)

// Switch directions, used as metric labels.
const (
	directionInitial  = "initial"
	directionNext     = "next"
	directionPrevious = "previous"
	directionNumber   = "number"
	directionList     = "list"
)

// PlaybackService owns the current channel and drives the playback engine.
// All operations are serialized so every navigation step starts from the
// channel the previous one settled on.
type PlaybackService struct {
	channels driven.ChannelRepository
	prefs    driven.PreferencesRepository
	engine   driven.PlaybackEngine
	logger   *slog.Logger

	mu      sync.Mutex
	current *channel.Channel
	state   playback.State
}

// NewPlaybackService creates an idle PlaybackService.
func NewPlaybackService(
	channels driven.ChannelRepository,
	prefs driven.PreferencesRepository,
	engine driven.PlaybackEngine,
	logger *slog.Logger,
) *PlaybackService {
	return &PlaybackService{
		channels: channels,
		prefs:    prefs,
		engine:   engine,
		logger:   logger,
		state:    playback.Idle(),
	}
}

// Start resolves the channel to begin with: the last watched one when it
// still exists, otherwise the first. It is played when auto-play is on.
// The boolean is false when there are no channels.
func (s *PlaybackService) Start(ctx context.Context) (channel.Channel, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.channels.FindAll(ctx)
	if err != nil {
		return channel.Channel{}, false, err
	}
	prefs, err := s.prefs.Get(ctx)
	if err != nil {
		return channel.Channel{}, false, err
	}

	ch, ok := navigation.Initial(list, prefs.LastChannelNumber())
	if !ok {
		s.current = nil
		return channel.Channel{}, false, nil
	}

	if !prefs.AutoPlayOnLaunch() {
		s.current = &ch
		return ch, true, nil
	}

	ch, err = s.playLocked(ctx, ch, directionInitial)
	return ch, true, err
}

// Next switches to the channel after the current one, wrapping around.
func (s *PlaybackService) Next(ctx context.Context) (channel.Channel, error) {
	return s.step(ctx, navigation.Next, directionNext)
}

// Previous switches to the channel before the current one, wrapping around.
func (s *PlaybackService) Previous(ctx context.Context) (channel.Channel, error) {
	return s.step(ctx, navigation.Previous, directionPrevious)
}

func (s *PlaybackService) step(
	ctx context.Context,
	move func([]channel.Channel, *channel.Channel) (channel.Channel, bool),
	direction string,
) (channel.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.channels.FindAll(ctx)
	if err != nil {
		return channel.Channel{}, err
	}

	ch, ok := move(list, s.current)
	if !ok {
		return channel.Channel{}, ErrNoChannels
	}
	return s.playLocked(ctx, ch, direction)
}

// SwitchTo plays the channel carrying number.
// Returns channel.ErrChannelNotFound if there is none.
func (s *PlaybackService) SwitchTo(ctx context.Context, number int) (channel.Channel, error) {
	return s.jump(ctx, number, directionNumber)
}

// Select plays a channel picked from the channel list.
func (s *PlaybackService) Select(ctx context.Context, number int) (channel.Channel, error) {
	return s.jump(ctx, number, directionList)
}

func (s *PlaybackService) jump(ctx context.Context, number int, direction string) (channel.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.channels.FindByNumber(ctx, number)
	if err != nil {
		return channel.Channel{}, err
	}
	return s.playLocked(ctx, ch, direction)
}

// Retry restarts the current channel.
func (s *PlaybackService) Retry(ctx context.Context) (channel.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return channel.Channel{}, ErrNothingPlaying
	}
	ch := *s.current

	if _, err := streamurl.Validate(ch.StreamURL()); err != nil {
		s.setStateLocked(playback.Failed(&ch, err.Error()))
		return ch, fmt.Errorf("%w: %w", ErrUnplayableStream, err)
	}

	s.setStateLocked(playback.Loading(ch))
	if err := s.engine.Retry(ctx, ch); err != nil {
		s.setStateLocked(playback.Failed(&ch, err.Error()))
		return ch, err
	}
	return ch, nil
}

// Reset stops playback and forgets the current channel.
func (s *PlaybackService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	s.setStateLocked(playback.Idle())
	return s.engine.Stop(ctx)
}

// Current returns the current channel, if any.
func (s *PlaybackService) Current() (channel.Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return channel.Channel{}, false
	}
	return *s.current, true
}

// State returns the player state.
func (s *PlaybackService) State() playback.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// ReportState applies a state reported by the player for channel number.
// Reports about a channel other than the current one are stale and dropped
// with ErrStaleReport.
func (s *PlaybackService) ReportState(number int, status playback.Status, progress int, message string) (playback.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return s.state, ErrNothingPlaying
	}
	if s.current.Number() != number {
		return s.state, ErrStaleReport
	}

	next, err := playback.FromReport(*s.current, status, progress, message)
	if err != nil {
		return s.state, err
	}

	next, err = s.state.Transition(next)
	if err != nil {
		return s.state, err
	}
	s.setStateLocked(next)
	return next, nil
}

// playLocked makes ch current, remembers it and hands it to the engine.
// A stream URL that may not be played puts the player in the Error state.
func (s *PlaybackService) playLocked(ctx context.Context, ch channel.Channel, direction string) (channel.Channel, error) {
	s.current = &ch
	metrics.RecordChannelSwitch(direction)

	if err := s.prefs.SetLastChannelNumber(ctx, ch.Number()); err != nil {
		s.logger.Warn("failed to remember last channel", "number", ch.Number(), "error", err)
	}

	if _, err := streamurl.Validate(ch.StreamURL()); err != nil {
		s.logger.Warn("refusing to play stream", "number", ch.Number(), "error", err)
		s.setStateLocked(playback.Failed(&ch, err.Error()))
		return ch, fmt.Errorf("%w: %w", ErrUnplayableStream, err)
	}

	s.setStateLocked(playback.Loading(ch))
	if err := s.engine.Play(ctx, ch); err != nil {
		s.logger.Error("playback engine rejected channel", "number", ch.Number(), "error", err)
		s.setStateLocked(playback.Failed(&ch, err.Error()))
		return ch, err
	}

	s.logger.Info("channel switched", "number", ch.Number(), "name", ch.Name(), "direction", direction)
	return ch, nil
}

// setStateLocked stores next and counts status changes. It does not consult
// the transition table, so a rejected URL fails straight from Idle.
// ReportState checks engine reports before calling it.
func (s *PlaybackService) setStateLocked(next playback.State) {
	if next.Status() != s.state.Status() {
		metrics.RecordPlaybackState(string(next.Status()))
	}
	s.state = next
}
