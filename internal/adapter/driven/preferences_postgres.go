package driven

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alorle/iptv-player/internal/preferences"
)

// The table holds at most one row, pinned by the id check.
const preferencesSchema = `
CREATE TABLE IF NOT EXISTS preferences (
	id                  SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	last_channel_number INTEGER  NOT NULL DEFAULT 1 CHECK (last_channel_number >= 1),
	playlist_source     TEXT     NOT NULL DEFAULT '',
	auto_play_on_launch BOOLEAN  NOT NULL DEFAULT TRUE
)`

// PreferencesPostgresRepository implements the PreferencesRepository port on PostgreSQL.
type PreferencesPostgresRepository struct {
	db *sql.DB
}

// NewPreferencesPostgresRepository creates the preferences table if needed.
func NewPreferencesPostgresRepository(ctx context.Context, db *sql.DB) (*PreferencesPostgresRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if _, err := db.ExecContext(ctx, preferencesSchema); err != nil {
		return nil, err
	}
	return &PreferencesPostgresRepository{db: db}, nil
}

// Get returns the stored preferences, or the defaults when the row is absent.
func (r *PreferencesPostgresRepository) Get(ctx context.Context) (preferences.Preferences, error) {
	var dto preferencesDTO
	err := r.db.QueryRowContext(ctx,
		`SELECT last_channel_number, playlist_source, auto_play_on_launch FROM preferences WHERE id = 1`,
	).Scan(&dto.LastChannelNumber, &dto.PlaylistSource, &dto.AutoPlayOnLaunch)
	if errors.Is(err, sql.ErrNoRows) {
		return preferences.Default(), nil
	}
	if err != nil {
		return preferences.Preferences{}, err
	}
	return preferences.New(dto.LastChannelNumber, dto.PlaylistSource, dto.AutoPlayOnLaunch)
}

// upsert writes a single column, creating the row with defaults when missing.
func (r *PreferencesPostgresRepository) upsert(ctx context.Context, column string, value any) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO preferences (id, `+column+`) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET `+column+` = EXCLUDED.`+column,
		value,
	)
	return err
}

// SetLastChannelNumber stores the last watched channel number.
func (r *PreferencesPostgresRepository) SetLastChannelNumber(ctx context.Context, number int) error {
	if number < 1 {
		return preferences.ErrInvalidLastChannel
	}
	return r.upsert(ctx, "last_channel_number", number)
}

// SetPlaylistSource stores the location of the last loaded playlist.
func (r *PreferencesPostgresRepository) SetPlaylistSource(ctx context.Context, source string) error {
	return r.upsert(ctx, "playlist_source", source)
}

// SetAutoPlayOnLaunch stores whether playback starts automatically.
func (r *PreferencesPostgresRepository) SetAutoPlayOnLaunch(ctx context.Context, enabled bool) error {
	return r.upsert(ctx, "auto_play_on_launch", enabled)
}

// Clear deletes the row so that Get returns the defaults.
func (r *PreferencesPostgresRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM preferences`)
	return err
}
