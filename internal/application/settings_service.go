package application

import (
	"context"
	"errors"

	"github.com/alorle/iptv-player/internal/port/driven"
)

// Settings is the data shown on the settings screen.
type Settings struct {
	PlaylistSource    string
	ChannelCount      int
	LastChannelNumber int
	AutoPlayOnLaunch  bool
}

// SettingsService reads and changes user settings.
type SettingsService struct {
	channels driven.ChannelRepository
	prefs    driven.PreferencesRepository
	playback *PlaybackService
}

func NewSettingsService(channels driven.ChannelRepository, prefs driven.PreferencesRepository, playbackService *PlaybackService) *SettingsService {
	return &SettingsService{channels: channels, prefs: prefs, playback: playbackService}
}

func (s *SettingsService) Get(ctx context.Context) (Settings, error) {
	p, err := s.prefs.Get(ctx)
	if err != nil {
		return Settings{}, err
	}
	count, err := s.channels.Count(ctx)
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		PlaylistSource:    p.PlaylistSource(),
		ChannelCount:      count,
		LastChannelNumber: p.LastChannelNumber(),
		AutoPlayOnLaunch:  p.AutoPlayOnLaunch(),
	}, nil
}

func (s *SettingsService) SetAutoPlay(ctx context.Context, enabled bool) (Settings, error) {
	if err := s.prefs.SetAutoPlayOnLaunch(ctx, enabled); err != nil {
		return Settings{}, err
	}
	return s.Get(ctx)
}

// ClearAllData stops playback and removes every channel and preference.
// It keeps going after a failure and reports all of them.
func (s *SettingsService) ClearAllData(ctx context.Context) error {
	var errs []error
	if s.playback != nil {
		if err := s.playback.Reset(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.channels.DeleteAll(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.prefs.Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
