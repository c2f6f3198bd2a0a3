package driven

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"

	"go.etcd.io/bbolt"

	"github.com/alorle/iptv-player/internal/channel"
)

const (
	channelsBucket = "channels"
)

var errChannelsBucketMissing = errors.New("channels bucket not found")

// ChannelBoltDBRepository implements the ChannelRepository port using BoltDB.
// Keys are big-endian channel numbers, so cursor order is number order.
type ChannelBoltDBRepository struct {
	db *bbolt.DB
}

// NewChannelBoltDBRepository creates a new BoltDB-backed channel repository.
// It initializes the required bucket if it doesn't exist.
func NewChannelBoltDBRepository(db *bbolt.DB) (*ChannelBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(channelsBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &ChannelBoltDBRepository{db: db}, nil
}

// channelDTO is used for JSON serialization.
type channelDTO struct {
	Number     int    `json:"number"`
	Name       string `json:"name"`
	StreamURL  string `json:"stream_url"`
	GroupTitle string `json:"group_title,omitempty"`
	LogoURL    string `json:"logo_url,omitempty"`
	Origin     string `json:"origin"`
}

func channelToDTO(ch channel.Channel) channelDTO {
	return channelDTO{
		Number:     ch.Number(),
		Name:       ch.Name(),
		StreamURL:  ch.StreamURL(),
		GroupTitle: ch.GroupTitle(),
		LogoURL:    ch.LogoURL(),
		Origin:     string(ch.Origin()),
	}
}

func dtoToChannel(dto channelDTO) (channel.Channel, error) {
	origin := channel.Origin(dto.Origin)
	if origin == "" {
		origin = channel.OriginPlaylist
	}
	return channel.Reconstruct(dto.Number, dto.Name, dto.StreamURL, dto.GroupTitle, dto.LogoURL, origin)
}

func channelKey(number int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(number))
	return key
}

func putChannel(bucket *bbolt.Bucket, ch channel.Channel) error {
	data, err := json.Marshal(channelToDTO(ch))
	if err != nil {
		return err
	}
	return bucket.Put(channelKey(ch.Number()), data)
}

func decodeChannel(data []byte) (channel.Channel, error) {
	var dto channelDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return channel.Channel{}, err
	}
	return dtoToChannel(dto)
}

// Save persists a new channel to BoltDB.
func (r *ChannelBoltDBRepository) Save(ctx context.Context, ch channel.Channel) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(channelsBucket))
		if bucket == nil {
			return errChannelsBucketMissing
		}

		if bucket.Get(channelKey(ch.Number())) != nil {
			return channel.ErrChannelAlreadyExists
		}

		return putChannel(bucket, ch)
	})
}

// Update changes name and stream URL of an existing channel in BoltDB.
func (r *ChannelBoltDBRepository) Update(ctx context.Context, ch channel.Channel) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(channelsBucket))
		if bucket == nil {
			return errChannelsBucketMissing
		}

		data := bucket.Get(channelKey(ch.Number()))
		if data == nil {
			return channel.ErrChannelNotFound
		}

		stored, err := decodeChannel(data)
		if err != nil {
			return err
		}

		return putChannel(bucket, ch.WithOrigin(stored.Origin()))
	})
}

// ReplacePlaylistChannels drops every playlist channel and stores the new
// list, leaving manual channels on unused numbers untouched.
func (r *ChannelBoltDBRepository) ReplacePlaylistChannels(ctx context.Context, channels []channel.Channel) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(channelsBucket))
		if bucket == nil {
			return errChannelsBucketMissing
		}

		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			ch, err := decodeChannel(v)
			if err != nil {
				return err
			}
			if !ch.IsManual() {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}

		for _, ch := range channels {
			if err := putChannel(bucket, ch); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByNumber retrieves a channel by its number from BoltDB.
func (r *ChannelBoltDBRepository) FindByNumber(ctx context.Context, number int) (channel.Channel, error) {
	if err := ctx.Err(); err != nil {
		return channel.Channel{}, err
	}
	if number < 1 {
		return channel.Channel{}, channel.ErrChannelNotFound
	}

	var ch channel.Channel

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(channelsBucket))
		if bucket == nil {
			return errChannelsBucketMissing
		}

		data := bucket.Get(channelKey(number))
		if data == nil {
			return channel.ErrChannelNotFound
		}

		decoded, err := decodeChannel(data)
		if err != nil {
			return err
		}

		ch = decoded
		return nil
	})

	return ch, err
}

// FindAll retrieves all channels from BoltDB ordered by number.
func (r *ChannelBoltDBRepository) FindAll(ctx context.Context) ([]channel.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var channels []channel.Channel

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(channelsBucket))
		if bucket == nil {
			return errChannelsBucketMissing
		}

		return bucket.ForEach(func(k, v []byte) error {
			ch, err := decodeChannel(v)
			if err != nil {
				return err
			}

			channels = append(channels, ch)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	// Return empty slice instead of nil if no channels found
	if channels == nil {
		channels = []channel.Channel{}
	}

	return channels, nil
}

// Count returns the number of stored channels.
func (r *ChannelBoltDBRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var n int
	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(channelsBucket))
		if bucket == nil {
			return errChannelsBucketMissing
		}
		n = bucket.Stats().KeyN
		return nil
	})
	return n, err
}

// Delete removes a channel by its number from BoltDB.
func (r *ChannelBoltDBRepository) Delete(ctx context.Context, number int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(channelsBucket))
		if bucket == nil {
			return errChannelsBucketMissing
		}

		key := channelKey(number)
		if number < 1 || bucket.Get(key) == nil {
			return channel.ErrChannelNotFound
		}

		return bucket.Delete(key)
	})
}

// DeleteAll removes every channel by recreating the bucket.
func (r *ChannelBoltDBRepository) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(channelsBucket)); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket([]byte(channelsBucket))
		return err
	})
}

// Ping checks if the BoltDB database is accessible and operational.
func (r *ChannelBoltDBRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(channelsBucket)) == nil {
			return errChannelsBucketMissing
		}
		return nil
	})
}
