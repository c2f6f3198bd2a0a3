package driven

import (
	"context"
	"encoding/json"
	"errors"

	"go.etcd.io/bbolt"

	"github.com/alorle/iptv-player/internal/preferences"
)

const (
	preferencesBucket = "preferences"
	preferencesKey    = "user"
)

var errPreferencesBucketMissing = errors.New("preferences bucket not found")

// PreferencesBoltDBRepository implements the PreferencesRepository port
// using BoltDB. All preferences live in a single JSON document.
type PreferencesBoltDBRepository struct {
	db *bbolt.DB
}

// NewPreferencesBoltDBRepository creates a new BoltDB-backed preferences repository.
func NewPreferencesBoltDBRepository(db *bbolt.DB) (*PreferencesBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(preferencesBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &PreferencesBoltDBRepository{db: db}, nil
}

type preferencesDTO struct {
	LastChannelNumber int    `json:"last_channel_number"`
	PlaylistSource    string `json:"playlist_source,omitempty"`
	AutoPlayOnLaunch  bool   `json:"auto_play_on_launch"`
}

func preferencesToDTO(p preferences.Preferences) preferencesDTO {
	return preferencesDTO{
		LastChannelNumber: p.LastChannelNumber(),
		PlaylistSource:    p.PlaylistSource(),
		AutoPlayOnLaunch:  p.AutoPlayOnLaunch(),
	}
}

func readPreferences(bucket *bbolt.Bucket) (preferences.Preferences, error) {
	data := bucket.Get([]byte(preferencesKey))
	if data == nil {
		return preferences.Default(), nil
	}

	var dto preferencesDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return preferences.Preferences{}, err
	}
	return preferences.New(dto.LastChannelNumber, dto.PlaylistSource, dto.AutoPlayOnLaunch)
}

// Get returns the stored preferences, or the defaults when none are stored.
func (r *PreferencesBoltDBRepository) Get(ctx context.Context) (preferences.Preferences, error) {
	if err := ctx.Err(); err != nil {
		return preferences.Preferences{}, err
	}

	var p preferences.Preferences
	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(preferencesBucket))
		if bucket == nil {
			return errPreferencesBucketMissing
		}

		var err error
		p, err = readPreferences(bucket)
		return err
	})
	return p, err
}

// modify applies fn to the stored preferences inside one write transaction.
func (r *PreferencesBoltDBRepository) modify(ctx context.Context, fn func(dto *preferencesDTO)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(preferencesBucket))
		if bucket == nil {
			return errPreferencesBucketMissing
		}

		current, err := readPreferences(bucket)
		if err != nil {
			return err
		}

		dto := preferencesToDTO(current)
		fn(&dto)

		if _, err := preferences.New(dto.LastChannelNumber, dto.PlaylistSource, dto.AutoPlayOnLaunch); err != nil {
			return err
		}

		data, err := json.Marshal(dto)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(preferencesKey), data)
	})
}

// SetLastChannelNumber stores the last watched channel number.
func (r *PreferencesBoltDBRepository) SetLastChannelNumber(ctx context.Context, number int) error {
	return r.modify(ctx, func(dto *preferencesDTO) { dto.LastChannelNumber = number })
}

// SetPlaylistSource stores the location of the last loaded playlist.
func (r *PreferencesBoltDBRepository) SetPlaylistSource(ctx context.Context, source string) error {
	return r.modify(ctx, func(dto *preferencesDTO) { dto.PlaylistSource = source })
}

// SetAutoPlayOnLaunch stores whether playback starts automatically.
func (r *PreferencesBoltDBRepository) SetAutoPlayOnLaunch(ctx context.Context, enabled bool) error {
	return r.modify(ctx, func(dto *preferencesDTO) { dto.AutoPlayOnLaunch = enabled })
}

// Clear removes the stored preferences so that Get returns the defaults.
func (r *PreferencesBoltDBRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(preferencesBucket))
		if bucket == nil {
			return errPreferencesBucketMissing
		}
		return bucket.Delete([]byte(preferencesKey))
	})
}
