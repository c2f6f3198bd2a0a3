package driven

import (
	"context"

	"github.com/alorle/iptv-player/internal/channel"
)

// PlaybackEngine renders streams. Implementations forward commands to the
// actual player and report its state back through the playback service.
type PlaybackEngine interface {
	// Play starts rendering the channel's stream, replacing the current one.
	Play(ctx context.Context, ch channel.Channel) error

	// Stop halts playback.
	Stop(ctx context.Context) error

	// Retry restarts the channel's stream after an error.
	Retry(ctx context.Context, ch channel.Channel) error
}

// Notifier shows short transient messages to the viewer.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}
