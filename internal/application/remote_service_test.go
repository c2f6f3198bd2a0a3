package application

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/alorle/iptv-player/internal/channel"
	"github.com/alorle/iptv-player/internal/overlay"
)

func longTimeouts() overlay.Timeouts {
	return overlay.Timeouts{
		ChannelInfo: time.Hour,
		ChannelList: time.Hour,
		NumberPad:   time.Hour,
		Settings:    time.Hour,
	}
}

type remoteFixture struct {
	remote   *RemoteService
	playback *PlaybackService
	engine   *mockPlaybackEngine
	notifier *mockNotifier
}

func newRemoteFixture(t *testing.T, channels []channel.Channel, timeouts overlay.Timeouts) remoteFixture {
	t.Helper()
	repo := staticChannelRepository(channels)
	engine := &mockPlaybackEngine{}
	notifier := &mockNotifier{}
	playbackService := NewPlaybackService(repo, prefsWith(t, 1, false), engine, discardLogger())
	remote := NewRemoteService(playbackService, repo, notifier, timeouts, discardLogger())
	t.Cleanup(remote.Close)
	return remoteFixture{remote: remote, playback: playbackService, engine: engine, notifier: notifier}
}

func (f remoteFixture) press(t *testing.T, keys ...Key) RemoteSnapshot {
	t.Helper()
	var snap RemoteSnapshot
	for _, k := range keys {
		var err error
		snap, err = f.remote.Press(context.Background(), k)
		if err != nil {
			t.Fatalf("press %s: %v", k, err)
		}
	}
	return snap
}

func TestRemoteService_ArrowsSwitchChannels(t *testing.T) {
	f := newRemoteFixture(t, testChannels(t, 1, 2, 3), longTimeouts())

	snap := f.press(t, KeyDown)
	if snap.Current == nil || snap.Current.Number() != 1 {
		t.Fatalf("expected channel 1 from an empty start, got %+v", snap.Current)
	}
	if !slices.Contains(snap.Overlays, overlay.ChannelInfo) {
		t.Errorf("expected channel info overlay, got %v", snap.Overlays)
	}
	if snap.ChannelCount != 3 {
		t.Errorf("expected 3 channels, got %d", snap.ChannelCount)
	}

	snap = f.press(t, KeyUp)
	if snap.Current.Number() != 3 {
		t.Errorf("expected wrap to channel 3, got %d", snap.Current.Number())
	}
}

func TestRemoteService_ArrowsKeepListOpen(t *testing.T) {
	f := newRemoteFixture(t, testChannels(t, 1, 2), longTimeouts())

	snap := f.press(t, KeyLeft, KeyDown)
	if snap.Current != nil {
		t.Errorf("expected no switch while the list is open, got channel %d", snap.Current.Number())
	}
	if !slices.Contains(snap.Overlays, overlay.ChannelList) {
		t.Errorf("expected channel list to stay open, got %v", snap.Overlays)
	}

	snap = f.press(t, KeyRight)
	if slices.Contains(snap.Overlays, overlay.ChannelList) {
		t.Error("expected RIGHT to close the channel list")
	}
}

func TestRemoteService_NumberEntry(t *testing.T) {
	t.Run("typed number switches channel", func(t *testing.T) {
		f := newRemoteFixture(t, testChannels(t, 1, 2, 12), longTimeouts())

		snap := f.press(t, "1", "2")
		if snap.NumberInput != "12" || !slices.Contains(snap.Overlays, overlay.NumberPad) {
			t.Fatalf("expected number pad showing 12, got %q %v", snap.NumberInput, snap.Overlays)
		}

		snap = f.press(t, KeyCenter)
		if snap.Current == nil || snap.Current.Number() != 12 {
			t.Fatalf("expected channel 12, got %+v", snap.Current)
		}
		if snap.NumberInput != "" || slices.Contains(snap.Overlays, overlay.NumberPad) {
			t.Errorf("expected number pad closed and cleared, got %q %v", snap.NumberInput, snap.Overlays)
		}
	})

	t.Run("leading zero and fourth digit are ignored", func(t *testing.T) {
		f := newRemoteFixture(t, testChannels(t, 1), longTimeouts())

		snap := f.press(t, "0")
		if slices.Contains(snap.Overlays, overlay.NumberPad) {
			t.Error("a lone zero must not open the number pad")
		}

		snap = f.press(t, "1", "2", "3", "4")
		if snap.NumberInput != "123" {
			t.Errorf("expected 123, got %q", snap.NumberInput)
		}
	})

	t.Run("out of range number notifies and clears", func(t *testing.T) {
		f := newRemoteFixture(t, testChannels(t, 1, 2, 3), longTimeouts())

		snap := f.press(t, "9", KeyCenter)
		if snap.Notification != "Channel 9 does not exist" {
			t.Errorf("unexpected notification %q", snap.Notification)
		}
		if snap.NumberInput != "" || slices.Contains(snap.Overlays, overlay.NumberPad) {
			t.Errorf("expected pad closed, got %q %v", snap.NumberInput, snap.Overlays)
		}
		if got := f.notifier.received(); len(got) != 1 || got[0] != "Channel 9 does not exist" {
			t.Errorf("unexpected notifications %v", got)
		}
		if len(f.engine.playedNumbers()) != 0 {
			t.Error("nothing must be played")
		}
	})

	t.Run("gap in numbering keeps the input", func(t *testing.T) {
		f := newRemoteFixture(t, testChannels(t, 1, 3), longTimeouts())

		snap := f.press(t, "2", KeyCenter)
		if snap.Notification != "Channel 2 does not exist" {
			t.Errorf("unexpected notification %q", snap.Notification)
		}
		if snap.NumberInput != "2" || !slices.Contains(snap.Overlays, overlay.NumberPad) {
			t.Errorf("expected pad to keep 2, got %q %v", snap.NumberInput, snap.Overlays)
		}
	})

	t.Run("number above the channel count is out of range despite a gap", func(t *testing.T) {
		f := newRemoteFixture(t, testChannels(t, 1, 3), longTimeouts())

		snap := f.press(t, "3", KeyCenter)
		if snap.Notification != "Channel 3 does not exist" {
			t.Errorf("unexpected notification %q", snap.Notification)
		}
		if snap.NumberInput != "" || slices.Contains(snap.Overlays, overlay.NumberPad) {
			t.Errorf("expected pad closed and cleared, got %q %v", snap.NumberInput, snap.Overlays)
		}
		if len(f.engine.playedNumbers()) != 0 {
			t.Error("nothing must be played")
		}
	})

	t.Run("back closes the pad and drops the input", func(t *testing.T) {
		f := newRemoteFixture(t, testChannels(t, 1), longTimeouts())

		snap := f.press(t, "4", KeyBack)
		if snap.NumberInput != "" || len(snap.Overlays) != 0 {
			t.Errorf("expected nothing left, got %q %v", snap.NumberInput, snap.Overlays)
		}
	})

	t.Run("idle pad expires and drops the input", func(t *testing.T) {
		timeouts := longTimeouts()
		timeouts.NumberPad = 20 * time.Millisecond
		f := newRemoteFixture(t, testChannels(t, 1), timeouts)

		f.press(t, "7")

		deadline := time.Now().Add(2 * time.Second)
		for {
			snap := f.remote.Snapshot(context.Background())
			if snap.NumberInput == "" && !slices.Contains(snap.Overlays, overlay.NumberPad) {
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("number pad did not expire: %q %v", snap.NumberInput, snap.Overlays)
			}
			time.Sleep(5 * time.Millisecond)
		}
	})

	t.Run("late expiry keeps input typed after the pad reopened", func(t *testing.T) {
		f := newRemoteFixture(t, testChannels(t, 1, 2, 3), longTimeouts())

		f.press(t, "5")
		// The controller hid the pad and released its lock; a digit reopened
		// it before the expiry callback ran.
		f.remote.overlayExpired(overlay.NumberPad)

		snap := f.remote.Snapshot(context.Background())
		if snap.NumberInput != "5" || !slices.Contains(snap.Overlays, overlay.NumberPad) {
			t.Errorf("expected pad to keep 5, got %q %v", snap.NumberInput, snap.Overlays)
		}
	})
}

func TestRemoteService_OverlayKeys(t *testing.T) {
	f := newRemoteFixture(t, testChannels(t, 1), longTimeouts())

	snap := f.press(t, KeyMenu, KeyLeft)
	want := []overlay.Kind{overlay.ChannelList, overlay.Settings}
	if !slices.Equal(snap.Overlays, want) {
		t.Fatalf("expected %v, got %v", want, snap.Overlays)
	}

	snap = f.press(t, KeyBack)
	if !slices.Equal(snap.Overlays, []overlay.Kind{overlay.Settings}) {
		t.Errorf("expected back to close the list first, got %v", snap.Overlays)
	}

	snap = f.press(t, KeyCenter)
	if !slices.Contains(snap.Overlays, overlay.ChannelInfo) {
		t.Errorf("expected CENTER to show channel info, got %v", snap.Overlays)
	}
}

func TestRemoteService_UnknownKey(t *testing.T) {
	f := newRemoteFixture(t, testChannels(t, 1), longTimeouts())

	if _, err := f.remote.Press(context.Background(), "VOLUME_UP"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}
}

func TestRemoteService_UnplayableStreamShowsError(t *testing.T) {
	ch, err := channel.New(1, "Bad", "ftp://example.com/stream", "", "")
	if err != nil {
		t.Fatalf("failed to build channel: %v", err)
	}
	f := newRemoteFixture(t, []channel.Channel{ch}, longTimeouts())

	snap := f.press(t, KeyDown)
	if !snap.State.HasError() {
		t.Errorf("expected error state, got %s", snap.State.Status())
	}
	if !slices.Contains(snap.Overlays, overlay.Error) {
		t.Errorf("expected error overlay, got %v", snap.Overlays)
	}
}
