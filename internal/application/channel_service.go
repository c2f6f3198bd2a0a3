package application

import (
	"context"

	"github.com/alorle/iptv-player/internal/channel"
	"github.com/alorle/iptv-player/internal/port/driven"
)

// ChannelService provides use cases for managing the stored channel list.
// It depends only on domain packages and port interfaces.
type ChannelService struct {
	channelRepo driven.ChannelRepository
}

// NewChannelService creates a new ChannelService with the given repository.
func NewChannelService(channelRepo driven.ChannelRepository) *ChannelService {
	return &ChannelService{channelRepo: channelRepo}
}

// ListChannels retrieves all channels ordered by number.
func (s *ChannelService) ListChannels(ctx context.Context) ([]channel.Channel, error) {
	return s.channelRepo.FindAll(ctx)
}

// GetChannel retrieves a channel by its number.
// Returns channel.ErrChannelNotFound if the channel does not exist.
func (s *ChannelService) GetChannel(ctx context.Context, number int) (channel.Channel, error) {
	return s.channelRepo.FindByNumber(ctx, number)
}

// AddChannel stores a manual channel. A number of 0 picks the number after
// the highest one in use.
// Returns channel.ErrChannelAlreadyExists if the number is taken.
func (s *ChannelService) AddChannel(ctx context.Context, number int, name, streamURL string) (channel.Channel, error) {
	if number == 0 {
		next, err := s.nextFreeNumber(ctx)
		if err != nil {
			return channel.Channel{}, err
		}
		number = next
	}

	ch, err := channel.NewManual(number, name, streamURL)
	if err != nil {
		return channel.Channel{}, err
	}

	if err := s.channelRepo.Save(ctx, ch); err != nil {
		return channel.Channel{}, err
	}

	return ch, nil
}

// UpdateChannel renames a channel and changes its stream URL.
// Returns channel.ErrChannelNotFound if the channel does not exist.
func (s *ChannelService) UpdateChannel(ctx context.Context, number int, name, streamURL string) (channel.Channel, error) {
	existing, err := s.channelRepo.FindByNumber(ctx, number)
	if err != nil {
		return channel.Channel{}, err
	}

	updated, err := existing.WithDetails(name, streamURL)
	if err != nil {
		return channel.Channel{}, err
	}

	if err := s.channelRepo.Update(ctx, updated); err != nil {
		return channel.Channel{}, err
	}

	return updated, nil
}

// DeleteChannel removes a channel. Numbers of the remaining channels are
// not changed.
// Returns channel.ErrChannelNotFound if the channel does not exist.
func (s *ChannelService) DeleteChannel(ctx context.Context, number int) error {
	return s.channelRepo.Delete(ctx, number)
}

func (s *ChannelService) nextFreeNumber(ctx context.Context) (int, error) {
	channels, err := s.channelRepo.FindAll(ctx)
	if err != nil {
		return 0, err
	}

	highest := 0
	for _, ch := range channels {
		highest = max(highest, ch.Number())
	}
	return highest + 1, nil
}
