package driven

import (
	"context"
	"sync"

	"github.com/alorle/iptv-player/internal/preferences"
)

// PreferencesMemoryRepository keeps the preferences in process memory.
type PreferencesMemoryRepository struct {
	mu    sync.Mutex
	prefs preferences.Preferences
}

// NewPreferencesMemoryRepository starts from preferences.Default().
func NewPreferencesMemoryRepository() *PreferencesMemoryRepository {
	return &PreferencesMemoryRepository{prefs: preferences.Default()}
}

func (r *PreferencesMemoryRepository) Get(ctx context.Context) (preferences.Preferences, error) {
	if err := ctx.Err(); err != nil {
		return preferences.Preferences{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prefs, nil
}

// modify validates the result of fn before storing it.
func (r *PreferencesMemoryRepository) modify(ctx context.Context, fn func(dto *preferencesDTO)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dto := preferencesToDTO(r.prefs)
	fn(&dto)

	p, err := preferences.New(dto.LastChannelNumber, dto.PlaylistSource, dto.AutoPlayOnLaunch)
	if err != nil {
		return err
	}
	r.prefs = p
	return nil
}

func (r *PreferencesMemoryRepository) SetLastChannelNumber(ctx context.Context, number int) error {
	return r.modify(ctx, func(dto *preferencesDTO) { dto.LastChannelNumber = number })
}

func (r *PreferencesMemoryRepository) SetPlaylistSource(ctx context.Context, source string) error {
	return r.modify(ctx, func(dto *preferencesDTO) { dto.PlaylistSource = source })
}

func (r *PreferencesMemoryRepository) SetAutoPlayOnLaunch(ctx context.Context, enabled bool) error {
	return r.modify(ctx, func(dto *preferencesDTO) { dto.AutoPlayOnLaunch = enabled })
}

// Clear restores the defaults.
func (r *PreferencesMemoryRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs = preferences.Default()
	return nil
}
