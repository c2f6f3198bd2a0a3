package playback

import (
	"errors"
	"testing"

	"github.com/alorle/iptv-player/internal/channel"
)

func testChannel(t *testing.T) channel.Channel {
	t.Helper()

	ch, err := channel.New(1, "News", "http://example.com/news", "", "")
	if err != nil {
		t.Fatalf("channel.New() unexpected error = %v", err)
	}
	return ch
}

func TestConstructors(t *testing.T) {
	ch := testChannel(t)

	tests := []struct {
		name        string
		state       State
		wantStatus  Status
		wantChannel bool
		playing     bool
		loading     bool
		hasError    bool
	}{
		{name: "idle", state: Idle(), wantStatus: StatusIdle},
		{name: "loading", state: Loading(ch), wantStatus: StatusLoading, wantChannel: true, loading: true},
		{name: "buffering", state: Buffering(ch, 40), wantStatus: StatusBuffering, wantChannel: true, loading: true},
		{name: "playing", state: Playing(ch), wantStatus: StatusPlaying, wantChannel: true, playing: true},
		{name: "error with channel", state: Failed(&ch, "boom"), wantStatus: StatusError, wantChannel: true, hasError: true},
		{name: "error without channel", state: Failed(nil, "boom"), wantStatus: StatusError, hasError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.state.Status() != tt.wantStatus {
				t.Errorf("Status() = %q, want %q", tt.state.Status(), tt.wantStatus)
			}
			if _, ok := tt.state.Channel(); ok != tt.wantChannel {
				t.Errorf("Channel() ok = %v, want %v", ok, tt.wantChannel)
			}
			if tt.state.IsPlaying() != tt.playing {
				t.Errorf("IsPlaying() = %v", tt.state.IsPlaying())
			}
			if tt.state.IsLoading() != tt.loading {
				t.Errorf("IsLoading() = %v", tt.state.IsLoading())
			}
			if tt.state.HasError() != tt.hasError {
				t.Errorf("HasError() = %v", tt.state.HasError())
			}
		})
	}
}

func TestBuffering_ClampsProgress(t *testing.T) {
	ch := testChannel(t)

	tests := []struct {
		in, want int
	}{
		{in: -5, want: 0},
		{in: 0, want: 0},
		{in: 55, want: 55},
		{in: 100, want: 100},
		{in: 250, want: 100},
	}

	for _, tt := range tests {
		if got := Buffering(ch, tt.in).Progress(); got != tt.want {
			t.Errorf("Buffering(%d).Progress() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTransition(t *testing.T) {
	ch := testChannel(t)

	tests := []struct {
		name    string
		from    State
		to      State
		wantErr bool
	}{
		{name: "idle to loading", from: Idle(), to: Loading(ch)},
		{name: "idle to playing", from: Idle(), to: Playing(ch), wantErr: true},
		{name: "idle to error", from: Idle(), to: Failed(nil, "x"), wantErr: true},
		{name: "loading to buffering", from: Loading(ch), to: Buffering(ch, 10)},
		{name: "loading to playing", from: Loading(ch), to: Playing(ch)},
		{name: "loading to error", from: Loading(ch), to: Failed(&ch, "x")},
		{name: "buffering to playing", from: Buffering(ch, 90), to: Playing(ch)},
		{name: "playing to buffering", from: Playing(ch), to: Buffering(ch, 0)},
		{name: "playing to loading", from: Playing(ch), to: Loading(ch)},
		{name: "playing to error", from: Playing(ch), to: Failed(&ch, "x")},
		{name: "error to loading", from: Failed(&ch, "x"), to: Loading(ch)},
		{name: "error to playing", from: Failed(&ch, "x"), to: Playing(ch), wantErr: true},
		{name: "error to buffering", from: Failed(&ch, "x"), to: Buffering(ch, 1), wantErr: true},
		{name: "anything to idle", from: Playing(ch), to: Idle()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.from.Transition(tt.to)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("Transition() error = %v, want %v", err, ErrInvalidTransition)
				}
				if got.Status() != tt.from.Status() {
					t.Errorf("Transition() on error returned %q, want unchanged %q", got.Status(), tt.from.Status())
				}
				return
			}
			if err != nil {
				t.Fatalf("Transition() unexpected error = %v", err)
			}
			if got.Status() != tt.to.Status() {
				t.Errorf("Transition() = %q, want %q", got.Status(), tt.to.Status())
			}
		})
	}
}

func TestFromReport(t *testing.T) {
	ch := testChannel(t)

	s, err := FromReport(ch, StatusBuffering, 30, "")
	if err != nil {
		t.Fatalf("FromReport() unexpected error = %v", err)
	}
	if s.Status() != StatusBuffering || s.Progress() != 30 {
		t.Errorf("FromReport() = %q/%d", s.Status(), s.Progress())
	}

	s, err = FromReport(ch, StatusError, 0, "decoder failed")
	if err != nil || s.Message() != "decoder failed" {
		t.Errorf("FromReport() = %q, %v", s.Message(), err)
	}

	if _, err := FromReport(ch, Status("paused"), 0, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("FromReport() unknown status error = %v", err)
	}
	if Status("paused").IsValid() || !StatusPlaying.IsValid() {
		t.Error("IsValid() mismatch")
	}
}
