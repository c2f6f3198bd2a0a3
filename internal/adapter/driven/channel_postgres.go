package driven

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/alorle/iptv-player/internal/channel"
)

// uniqueViolation is the PostgreSQL error code for a duplicate key.
const uniqueViolation = "23505"

const channelsSchema = `
CREATE TABLE IF NOT EXISTS channels (
	number      INTEGER PRIMARY KEY CHECK (number >= 1),
	name        TEXT    NOT NULL,
	stream_url  TEXT    NOT NULL,
	group_title TEXT    NOT NULL DEFAULT '',
	logo_url    TEXT    NOT NULL DEFAULT '',
	origin      TEXT    NOT NULL DEFAULT 'playlist'
)`

// ChannelPostgresRepository implements the ChannelRepository port on PostgreSQL.
type ChannelPostgresRepository struct {
	db *sql.DB
}

// NewChannelPostgresRepository creates the channels table if needed.
func NewChannelPostgresRepository(ctx context.Context, db *sql.DB) (*ChannelPostgresRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if _, err := db.ExecContext(ctx, channelsSchema); err != nil {
		return nil, err
	}
	return &ChannelPostgresRepository{db: db}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChannel(row rowScanner) (channel.Channel, error) {
	var dto channelDTO
	if err := row.Scan(&dto.Number, &dto.Name, &dto.StreamURL, &dto.GroupTitle, &dto.LogoURL, &dto.Origin); err != nil {
		return channel.Channel{}, err
	}
	return dtoToChannel(dto)
}

const selectChannelColumns = `SELECT number, name, stream_url, group_title, logo_url, origin FROM channels`

// FindAll retrieves all channels ordered by number.
func (r *ChannelPostgresRepository) FindAll(ctx context.Context) ([]channel.Channel, error) {
	rows, err := r.db.QueryContext(ctx, selectChannelColumns+` ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	channels := []channel.Channel{}
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// FindByNumber retrieves a channel by its number.
func (r *ChannelPostgresRepository) FindByNumber(ctx context.Context, number int) (channel.Channel, error) {
	ch, err := scanChannel(r.db.QueryRowContext(ctx, selectChannelColumns+` WHERE number = $1`, number))
	if errors.Is(err, sql.ErrNoRows) {
		return channel.Channel{}, channel.ErrChannelNotFound
	}
	return ch, err
}

// Count returns the number of stored channels.
func (r *ChannelPostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM channels`).Scan(&n)
	return n, err
}

// ReplacePlaylistChannels deletes the playlist channels and bulk-upserts the
// new list in one transaction.
func (r *ChannelPostgresRepository) ReplacePlaylistChannels(ctx context.Context, channels []channel.Channel) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM channels WHERE origin <> $1`, string(channel.OriginManual)); err != nil {
		return err
	}

	if len(channels) > 0 {
		var (
			numbers = make([]int64, len(channels))
			names   = make([]string, len(channels))
			urls    = make([]string, len(channels))
			groups  = make([]string, len(channels))
			logos   = make([]string, len(channels))
			origins = make([]string, len(channels))
		)
		for i, ch := range channels {
			numbers[i] = int64(ch.Number())
			names[i] = ch.Name()
			urls[i] = ch.StreamURL()
			groups[i] = ch.GroupTitle()
			logos[i] = ch.LogoURL()
			origins[i] = string(ch.Origin())
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO channels (number, name, stream_url, group_title, logo_url, origin)
			SELECT * FROM unnest($1::int[], $2::text[], $3::text[], $4::text[], $5::text[], $6::text[])
			ON CONFLICT (number) DO UPDATE SET
				name = EXCLUDED.name,
				stream_url = EXCLUDED.stream_url,
				group_title = EXCLUDED.group_title,
				logo_url = EXCLUDED.logo_url,
				origin = EXCLUDED.origin`,
			pq.Array(numbers), pq.Array(names), pq.Array(urls), pq.Array(groups), pq.Array(logos), pq.Array(origins),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Save inserts a new channel.
func (r *ChannelPostgresRepository) Save(ctx context.Context, ch channel.Channel) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO channels (number, name, stream_url, group_title, logo_url, origin)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ch.Number(), ch.Name(), ch.StreamURL(), ch.GroupTitle(), ch.LogoURL(), string(ch.Origin()),
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return channel.ErrChannelAlreadyExists
	}
	return err
}

// Update changes name and stream URL, keeping the stored origin.
func (r *ChannelPostgresRepository) Update(ctx context.Context, ch channel.Channel) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE channels SET name = $2, stream_url = $3 WHERE number = $1`,
		ch.Number(), ch.Name(), ch.StreamURL(),
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes a channel by its number.
func (r *ChannelPostgresRepository) Delete(ctx context.Context, number int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM channels WHERE number = $1`, number)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteAll removes every channel.
func (r *ChannelPostgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM channels`)
	return err
}

// Ping checks that the database answers.
func (r *ChannelPostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return channel.ErrChannelNotFound
	}
	return nil
}
