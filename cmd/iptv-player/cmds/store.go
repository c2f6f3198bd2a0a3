package cmds

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.etcd.io/bbolt"

	"github.com/alorle/iptv-player/internal/adapter/driven"
	"github.com/alorle/iptv-player/internal/config"
	port "github.com/alorle/iptv-player/internal/port/driven"
)

// store bundles the repositories of the configured storage driver.
type store struct {
	channels port.ChannelRepository
	prefs    port.PreferencesRepository
	close    func() error
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		return openPostgresStore(ctx, cfg.Storage.PostgresDSN)
	case config.DriverMemory:
		return &store{
			channels: driven.NewChannelMemoryRepository(),
			prefs:    driven.NewPreferencesMemoryRepository(),
			close:    func() error { return nil },
		}, nil
	default:
		return openBoltStore(cfg.Storage.BoltPath)
	}
}

func openBoltStore(path string) (*store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	channels, err := driven.NewChannelBoltDBRepository(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create channel repository: %w", err)
	}
	prefs, err := driven.NewPreferencesBoltDBRepository(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create preferences repository: %w", err)
	}

	return &store{channels: channels, prefs: prefs, close: db.Close}, nil
}

func openPostgresStore(ctx context.Context, dsn string) (*store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	channels, err := driven.NewChannelPostgresRepository(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create channel repository: %w", err)
	}
	prefs, err := driven.NewPreferencesPostgresRepository(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create preferences repository: %w", err)
	}

	return &store{channels: channels, prefs: prefs, close: db.Close}, nil
}
