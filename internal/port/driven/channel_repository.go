package driven

import (
	"context"

	"github.com/alorle/iptv-player/internal/channel"
)

// ChannelRepository defines the interface for channel persistence operations.
// This is a driven port implemented by concrete adapters (BoltDB, PostgreSQL).
type ChannelRepository interface {
	// FindAll retrieves all channels ordered by number.
	FindAll(ctx context.Context) ([]channel.Channel, error)

	// FindByNumber retrieves a channel by its number. Returns
	// channel.ErrChannelNotFound if no channel carries that number.
	FindByNumber(ctx context.Context, number int) (channel.Channel, error)

	// Count returns the number of stored channels.
	Count(ctx context.Context) (int, error)

	// ReplacePlaylistChannels deletes every non-manual channel and then
	// upserts the given list in a single transaction. A manual channel whose
	// number is reused by the playlist is overwritten.
	ReplacePlaylistChannels(ctx context.Context, channels []channel.Channel) error

	// Save persists a new channel. Returns channel.ErrChannelAlreadyExists if
	// the number is taken.
	Save(ctx context.Context, ch channel.Channel) error

	// Update replaces name and stream URL of an existing channel, keeping the
	// stored origin. Returns channel.ErrChannelNotFound if it does not exist.
	Update(ctx context.Context, ch channel.Channel) error

	// Delete removes a channel by its number. Returns channel.ErrChannelNotFound
	// if the channel does not exist.
	Delete(ctx context.Context, number int) error

	// DeleteAll removes every channel.
	DeleteAll(ctx context.Context) error

	// Ping checks if the repository (database) is accessible and operational.
	// Returns nil if healthy, otherwise returns an error describing the issue.
	Ping(ctx context.Context) error
}
