package driven

import (
	"context"

	"github.com/alorle/iptv-player/internal/preferences"
)

// PreferencesRepository persists the user preferences. Get returns
// preferences.Default() when nothing has been stored.
type PreferencesRepository interface {
	Get(ctx context.Context) (preferences.Preferences, error)
	SetLastChannelNumber(ctx context.Context, number int) error
	SetPlaylistSource(ctx context.Context, source string) error
	SetAutoPlayOnLaunch(ctx context.Context, enabled bool) error

	// Clear resets every preference to its default.
	Clear(ctx context.Context) error
}
