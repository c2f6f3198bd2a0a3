package driven

import (
	"context"
	"slices"
	"sync"

	"github.com/alorle/iptv-player/internal/channel"
)

// ChannelMemoryRepository keeps channels in process memory.
type ChannelMemoryRepository struct {
	mu       sync.RWMutex
	channels map[int]channel.Channel
}

// NewChannelMemoryRepository creates a repository holding the given channels.
func NewChannelMemoryRepository(channels ...channel.Channel) *ChannelMemoryRepository {
	r := &ChannelMemoryRepository{channels: make(map[int]channel.Channel, len(channels))}
	for _, ch := range channels {
		r.channels[ch.Number()] = ch
	}
	return r
}

// Save adds a channel on a free number.
func (r *ChannelMemoryRepository) Save(ctx context.Context, ch channel.Channel) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[ch.Number()]; ok {
		return channel.ErrChannelAlreadyExists
	}
	r.channels[ch.Number()] = ch
	return nil
}

// Update replaces name and stream URL, keeping the stored origin.
func (r *ChannelMemoryRepository) Update(ctx context.Context, ch channel.Channel) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.channels[ch.Number()]
	if !ok {
		return channel.ErrChannelNotFound
	}
	r.channels[ch.Number()] = ch.WithOrigin(stored.Origin())
	return nil
}

// ReplacePlaylistChannels drops every playlist channel and stores the new list.
func (r *ChannelMemoryRepository) ReplacePlaylistChannels(ctx context.Context, channels []channel.Channel) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for number, ch := range r.channels {
		if !ch.IsManual() {
			delete(r.channels, number)
		}
	}
	for _, ch := range channels {
		r.channels[ch.Number()] = ch
	}
	return nil
}

func (r *ChannelMemoryRepository) FindByNumber(ctx context.Context, number int) (channel.Channel, error) {
	if err := ctx.Err(); err != nil {
		return channel.Channel{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.channels[number]
	if !ok {
		return channel.Channel{}, channel.ErrChannelNotFound
	}
	return ch, nil
}

// FindAll returns every channel ordered by number.
func (r *ChannelMemoryRepository) FindAll(ctx context.Context) ([]channel.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	channels := make([]channel.Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		channels = append(channels, ch)
	}
	slices.SortFunc(channels, func(a, b channel.Channel) int { return a.Number() - b.Number() })
	return channels, nil
}

func (r *ChannelMemoryRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels), nil
}

func (r *ChannelMemoryRepository) Delete(ctx context.Context, number int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[number]; !ok {
		return channel.ErrChannelNotFound
	}
	delete(r.channels, number)
	return nil
}

func (r *ChannelMemoryRepository) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.channels)
	return nil
}

// Ping always succeeds unless ctx is done.
func (r *ChannelMemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
