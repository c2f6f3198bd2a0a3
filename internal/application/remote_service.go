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
	"github.com/alorle/iptv-player/internal/overlay"
	"github.com/alorle/iptv-player/internal/playback"
	"github.com/alorle/iptv-player/internal/port/driven"
)

// Key is a remote control button.
type Key string

const (
	KeyUp     Key = "UP"
	KeyDown   Key = "DOWN"
	KeyLeft   Key = "LEFT"
	KeyRight  Key = "RIGHT"
	KeyCenter Key = "CENTER"
	KeyBack   Key = "BACK"
	KeyMenu   Key = "MENU"
)

var ErrUnknownKey = errors.New("unknown remote key")

// IsDigit reports whether k is one of the number keys 0-9.
func (k Key) IsDigit() bool {
	return len(k) == 1 && k[0] >= '0' && k[0] <= '9'
}

// RemoteSnapshot is what the screen shows after a key press.
type RemoteSnapshot struct {
	Overlays     []overlay.Kind
	NumberInput  string
	Current      *channel.Channel
	ChannelCount int
	State        playback.State
	Notification string
}

// RemoteService turns remote key presses into navigation and overlay changes.
type RemoteService struct {
	playback *PlaybackService
	channels driven.ChannelRepository
	notifier driven.Notifier
	logger   *slog.Logger
	overlays *overlay.Controller

	mu     sync.Mutex
	digits navigation.DigitEntry
}

// NewRemoteService creates a RemoteService. Call Close to stop its overlay timers.
func NewRemoteService(
	playbackService *PlaybackService,
	channels driven.ChannelRepository,
	notifier driven.Notifier,
	timeouts overlay.Timeouts,
	logger *slog.Logger,
) *RemoteService {
	s := &RemoteService{
		playback: playbackService,
		channels: channels,
		notifier: notifier,
		logger:   logger,
	}
	s.overlays = overlay.NewController(timeouts, s.overlayExpired)
	return s
}

// overlayExpired runs on the overlay timer goroutine, after the controller
// has already hidden k. A digit pressed in between reopens the pad with a
// fresh buffer, which must survive the stale expiry.
func (s *RemoteService) overlayExpired(k overlay.Kind) {
	if k != overlay.NumberPad {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.overlays.Visible(overlay.NumberPad) {
		s.digits.Clear()
	}
}

// Close stops pending overlay timers.
func (s *RemoteService) Close() {
	s.overlays.Close()
}

// Press handles one key.
//
// UP and DOWN switch to the previous and next channel, or only keep the
// channel list open while it is shown. LEFT opens the channel list, MENU
// the settings. Digits feed the number pad and CENTER confirms it; without
// a number pad CENTER shows the channel info. BACK closes the topmost overlay.
func (s *RemoteService) Press(ctx context.Context, key Key) (RemoteSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		notice string
		err    error
	)

	switch {
	case key.IsDigit():
		s.pressDigit(string(key))
	case key == KeyUp || key == KeyDown:
		err = s.pressStep(ctx, key)
	case key == KeyLeft:
		s.overlays.Show(overlay.ChannelList)
	case key == KeyRight:
		s.overlays.Hide(overlay.ChannelList)
	case key == KeyCenter:
		notice, err = s.pressCenter(ctx)
	case key == KeyBack:
		if k, ok := s.overlays.DismissActive(); ok && k == overlay.NumberPad {
			s.digits.Clear()
		}
	case key == KeyMenu:
		s.overlays.Show(overlay.Settings)
	default:
		return s.snapshotLocked(ctx, ""), fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	return s.snapshotLocked(ctx, notice), err
}

func (s *RemoteService) pressDigit(digit string) {
	if !s.overlays.Visible(overlay.NumberPad) {
		s.digits.Clear()
	}
	if s.digits.Append(digit) || !s.digits.Empty() {
		s.overlays.Show(overlay.NumberPad)
	}
}

func (s *RemoteService) pressStep(ctx context.Context, key Key) error {
	if s.overlays.Touch(overlay.ChannelList) {
		return nil
	}

	var err error
	if key == KeyUp {
		_, err = s.playback.Previous(ctx)
	} else {
		_, err = s.playback.Next(ctx)
	}
	if errors.Is(err, ErrNoChannels) {
		return nil
	}
	s.overlays.Show(overlay.ChannelInfo)
	return s.playbackError(err)
}

func (s *RemoteService) pressCenter(ctx context.Context) (string, error) {
	if !s.overlays.Visible(overlay.NumberPad) {
		s.overlays.Show(overlay.ChannelInfo)
		return "", nil
	}

	list, err := s.channels.FindAll(ctx)
	if err != nil {
		return "", err
	}

	ch, err := s.digits.Confirm(list, len(list))
	var outOfRange *navigation.OutOfRangeError
	switch {
	case errors.Is(err, navigation.ErrNoDigits):
		s.overlays.Hide(overlay.NumberPad)
		return "", nil
	case errors.As(err, &outOfRange):
		metrics.RecordOutOfRangeEntry()
		s.overlays.Hide(overlay.NumberPad)
		return s.notify(ctx, outOfRange.Error()), nil
	case errors.Is(err, channel.ErrChannelNotFound):
		s.overlays.Touch(overlay.NumberPad)
		return s.notify(ctx, fmt.Sprintf("Channel %s does not exist", s.digits.Input())), nil
	case err != nil:
		return "", err
	}

	s.overlays.Hide(overlay.NumberPad)
	_, err = s.playback.SwitchTo(ctx, ch.Number())
	s.overlays.Show(overlay.ChannelInfo)
	return "", s.playbackError(err)
}

// playbackError keeps a rejected stream from failing the key press; the
// player state already carries the error.
func (s *RemoteService) playbackError(err error) error {
	if errors.Is(err, ErrUnplayableStream) {
		s.overlays.Show(overlay.Error)
		return nil
	}
	return err
}

func (s *RemoteService) notify(ctx context.Context, message string) string {
	if s.notifier == nil {
		return message
	}
	if err := s.notifier.Notify(ctx, message); err != nil {
		s.logger.Warn("failed to deliver notification", "message", message, "error", err)
	}
	return message
}

// Snapshot returns the current screen state.
func (s *RemoteService) Snapshot(ctx context.Context) RemoteSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked(ctx, "")
}

func (s *RemoteService) snapshotLocked(ctx context.Context, notice string) RemoteSnapshot {
	snap := RemoteSnapshot{
		Overlays:     s.overlays.VisibleKinds(),
		NumberInput:  s.digits.Input(),
		State:        s.playback.State(),
		Notification: notice,
	}
	if ch, ok := s.playback.Current(); ok {
		snap.Current = &ch
	}
	count, err := s.channels.Count(ctx)
	if err != nil {
		s.logger.Warn("failed to count channels", "error", err)
	}
	snap.ChannelCount = count
	return snap
}
