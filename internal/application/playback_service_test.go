package application

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/alorle/iptv-player/internal/channel"
	"github.com/alorle/iptv-player/internal/metrics"
	"github.com/alorle/iptv-player/internal/playback"
	"github.com/alorle/iptv-player/internal/preferences"
	"github.com/alorle/iptv-player/internal/streamurl"
)

func prefsWith(t *testing.T, last int, autoPlay bool) *mockPreferencesRepository {
	t.Helper()
	p, err := preferences.New(last, "", autoPlay)
	if err != nil {
		t.Fatalf("failed to build preferences: %v", err)
	}
	return &mockPreferencesRepository{
		getFunc: func(ctx context.Context) (preferences.Preferences, error) {
			return p, nil
		},
	}
}

func newTestPlaybackService(t *testing.T, channels []channel.Channel, prefs *mockPreferencesRepository) (*PlaybackService, *mockPlaybackEngine) {
	t.Helper()
	engine := &mockPlaybackEngine{}
	return NewPlaybackService(staticChannelRepository(channels), prefs, engine, discardLogger()), engine
}

func TestPlaybackService_Start(t *testing.T) {
	tests := []struct {
		name       string
		numbers    []int
		last       int
		autoPlay   bool
		wantOK     bool
		wantNumber int
		wantPlayed []int
	}{
		{"resumes last channel", []int{1, 2, 3}, 2, true, true, 2, []int{2}},
		{"falls back to first when last is gone", []int{1, 2, 3}, 9, true, true, 1, []int{1}},
		{"selects without playing when auto-play is off", []int{1, 2}, 2, false, true, 2, nil},
		{"reports no channel on an empty store", nil, 1, true, false, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, engine := newTestPlaybackService(t, testChannels(t, tt.numbers...), prefsWith(t, tt.last, tt.autoPlay))

			ch, ok, err := service.Start(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && ch.Number() != tt.wantNumber {
				t.Errorf("expected channel %d, got %d", tt.wantNumber, ch.Number())
			}
			if got := engine.playedNumbers(); !equalInts(got, tt.wantPlayed) {
				t.Errorf("expected played %v, got %v", tt.wantPlayed, got)
			}
		})
	}
}

func TestPlaybackService_NextPrevious(t *testing.T) {
	var remembered []int
	prefs := prefsWith(t, 1, false)
	prefs.setLastChannelFunc = func(ctx context.Context, number int) error {
		remembered = append(remembered, number)
		return nil
	}
	service, engine := newTestPlaybackService(t, testChannels(t, 1, 2, 3), prefs)
	ctx := context.Background()

	if _, _, err := service.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	steps := []struct {
		move func(context.Context) (channel.Channel, error)
		want int
	}{
		{service.Next, 2},
		{service.Next, 3},
		{service.Next, 1},
		{service.Previous, 3},
		{service.Previous, 2},
	}
	for i, step := range steps {
		ch, err := step.move(ctx)
		if err != nil {
			t.Fatalf("step %d: expected no error, got %v", i, err)
		}
		if ch.Number() != step.want {
			t.Errorf("step %d: expected channel %d, got %d", i, step.want, ch.Number())
		}
	}

	want := []int{2, 3, 1, 3, 2}
	if got := engine.playedNumbers(); !equalInts(got, want) {
		t.Errorf("expected played %v, got %v", want, got)
	}
	if !equalInts(remembered, want) {
		t.Errorf("expected remembered %v, got %v", want, remembered)
	}
	if service.State().Status() != playback.StatusLoading {
		t.Errorf("expected loading state, got %s", service.State().Status())
	}
}

func TestPlaybackService_NextWithoutChannels(t *testing.T) {
	service, _ := newTestPlaybackService(t, nil, prefsWith(t, 1, true))

	if _, err := service.Next(context.Background()); !errors.Is(err, ErrNoChannels) {
		t.Errorf("expected ErrNoChannels, got %v", err)
	}
}

func TestPlaybackService_SwitchTo(t *testing.T) {
	service, engine := newTestPlaybackService(t, testChannels(t, 1, 5), prefsWith(t, 1, false))
	ctx := context.Background()

	ch, err := service.SwitchTo(ctx, 5)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ch.Number() != 5 {
		t.Errorf("expected channel 5, got %d", ch.Number())
	}
	if cur, ok := service.Current(); !ok || cur.Number() != 5 {
		t.Errorf("expected current channel 5, got %d (ok=%v)", cur.Number(), ok)
	}

	if _, err := service.Select(ctx, 3); !errors.Is(err, channel.ErrChannelNotFound) {
		t.Errorf("expected ErrChannelNotFound, got %v", err)
	}
	if cur, _ := service.Current(); cur.Number() != 5 {
		t.Errorf("failed lookup must keep channel 5, got %d", cur.Number())
	}
	if got := engine.playedNumbers(); !equalInts(got, []int{5}) {
		t.Errorf("expected played [5], got %v", got)
	}
}

func TestPlaybackService_RejectsUnplayableStream(t *testing.T) {
	ch, err := channel.New(1, "Blocked", "javascript:alert(1)", "", "")
	if err != nil {
		t.Fatalf("failed to build channel: %v", err)
	}
	service, engine := newTestPlaybackService(t, []channel.Channel{ch}, prefsWith(t, 1, false))

	_, err = service.SwitchTo(context.Background(), 1)
	if !errors.Is(err, ErrUnplayableStream) || !errors.Is(err, streamurl.ErrBlockedScheme) {
		t.Fatalf("expected ErrUnplayableStream wrapping ErrBlockedScheme, got %v", err)
	}
	if len(engine.playedNumbers()) != 0 {
		t.Error("engine must not receive a rejected stream")
	}
	state := service.State()
	if !state.HasError() {
		t.Errorf("expected error state, got %s", state.Status())
	}
	if cur, ok := state.Channel(); !ok || cur.Number() != 1 {
		t.Error("expected error state to carry the channel")
	}
}

func TestPlaybackService_EngineFailure(t *testing.T) {
	engineErr := errors.New("no player connected")
	engine := &mockPlaybackEngine{
		playFunc: func(ctx context.Context, ch channel.Channel) error {
			return engineErr
		},
	}
	service := NewPlaybackService(staticChannelRepository(testChannels(t, 1)), prefsWith(t, 1, false), engine, discardLogger())

	if _, err := service.SwitchTo(context.Background(), 1); !errors.Is(err, engineErr) {
		t.Fatalf("expected engine error, got %v", err)
	}
	if state := service.State(); !state.HasError() || state.Message() != engineErr.Error() {
		t.Errorf("expected error state with engine message, got %s %q", state.Status(), state.Message())
	}
}

func TestPlaybackService_Retry(t *testing.T) {
	t.Run("requires a current channel", func(t *testing.T) {
		service, _ := newTestPlaybackService(t, testChannels(t, 1), prefsWith(t, 1, false))

		if _, err := service.Retry(context.Background()); !errors.Is(err, ErrNothingPlaying) {
			t.Errorf("expected ErrNothingPlaying, got %v", err)
		}
	})

	t.Run("restarts the current channel", func(t *testing.T) {
		service, engine := newTestPlaybackService(t, testChannels(t, 1, 2), prefsWith(t, 1, false))
		ctx := context.Background()

		if _, err := service.SwitchTo(ctx, 2); err != nil {
			t.Fatalf("switch: %v", err)
		}
		if _, err := service.ReportState(2, playback.StatusError, 0, "decoder failed"); err != nil {
			t.Fatalf("report: %v", err)
		}

		ch, err := service.Retry(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if ch.Number() != 2 || !equalInts(engine.retried, []int{2}) {
			t.Errorf("expected retry of channel 2, got %d (%v)", ch.Number(), engine.retried)
		}
		if service.State().Status() != playback.StatusLoading {
			t.Errorf("expected loading after retry, got %s", service.State().Status())
		}
	})
}

func TestPlaybackService_ReportState(t *testing.T) {
	service, _ := newTestPlaybackService(t, testChannels(t, 1, 2), prefsWith(t, 1, false))
	ctx := context.Background()

	if _, err := service.ReportState(1, playback.StatusPlaying, 0, ""); !errors.Is(err, ErrNothingPlaying) {
		t.Errorf("expected ErrNothingPlaying before any switch, got %v", err)
	}

	if _, err := service.SwitchTo(ctx, 1); err != nil {
		t.Fatalf("switch: %v", err)
	}

	state, err := service.ReportState(1, playback.StatusBuffering, 150, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if state.Progress() != 100 {
		t.Errorf("expected progress clamped to 100, got %d", state.Progress())
	}

	if _, err := service.ReportState(2, playback.StatusPlaying, 0, ""); !errors.Is(err, ErrStaleReport) {
		t.Errorf("expected ErrStaleReport, got %v", err)
	}

	if _, err := service.ReportState(1, playback.StatusPlaying, 0, ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !service.State().IsPlaying() {
		t.Errorf("expected playing, got %s", service.State().Status())
	}

	if _, err := service.ReportState(1, playback.StatusError, 0, "lost"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := service.ReportState(1, playback.StatusPlaying, 0, ""); !errors.Is(err, playback.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition from error to playing, got %v", err)
	}
}

func TestPlaybackService_CountsStatusChanges(t *testing.T) {
	service, _ := newTestPlaybackService(t, testChannels(t, 1), prefsWith(t, 1, false))
	ctx := context.Background()
	buffering := metrics.PlaybackStates.WithLabelValues(string(playback.StatusBuffering))
	failed := metrics.PlaybackStates.WithLabelValues(string(playback.StatusError))

	if _, err := service.SwitchTo(ctx, 1); err != nil {
		t.Fatalf("switch: %v", err)
	}

	before := testutil.ToFloat64(buffering)
	for _, progress := range []int{10, 50, 90} {
		if _, err := service.ReportState(1, playback.StatusBuffering, progress, ""); err != nil {
			t.Fatalf("report %d: %v", progress, err)
		}
	}
	if got := testutil.ToFloat64(buffering) - before; got != 1 {
		t.Errorf("buffering progress updates counted %v times, want 1", got)
	}

	bad, err := channel.New(2, "Blocked", "javascript:alert(1)", "", "")
	if err != nil {
		t.Fatalf("failed to build channel: %v", err)
	}
	service, _ = newTestPlaybackService(t, []channel.Channel{bad}, prefsWith(t, 1, false))

	before = testutil.ToFloat64(failed)
	if _, err := service.SwitchTo(ctx, 2); !errors.Is(err, ErrUnplayableStream) {
		t.Fatalf("expected ErrUnplayableStream, got %v", err)
	}
	if got := testutil.ToFloat64(failed) - before; got != 1 {
		t.Errorf("rejected stream counted %v error transitions, want 1", got)
	}
	if service.State().Status() != playback.StatusError {
		t.Errorf("expected error straight from idle, got %s", service.State().Status())
	}
}

func TestPlaybackService_Reset(t *testing.T) {
	service, engine := newTestPlaybackService(t, testChannels(t, 1), prefsWith(t, 1, true))
	ctx := context.Background()

	if _, _, err := service.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := service.Reset(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := service.Current(); ok {
		t.Error("expected no current channel after reset")
	}
	if service.State().Status() != playback.StatusIdle {
		t.Errorf("expected idle, got %s", service.State().Status())
	}
	if engine.stops != 1 {
		t.Errorf("expected one stop, got %d", engine.stops)
	}
}
