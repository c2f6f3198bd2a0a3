package cmds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alorle/iptv-player/internal/adapter/driven"
	"github.com/alorle/iptv-player/internal/adapter/driver"
	"github.com/alorle/iptv-player/internal/application"
	"github.com/alorle/iptv-player/internal/config"
	"github.com/alorle/iptv-player/internal/logging"
)

var servePort string

func NewServeCLI() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the player service: HTTP API, remote control and player websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if servePort != "" {
				cfg.HTTP.Port = servePort
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "HTTP listen port, overrides the config file")

	return serveCmd
}

func runServe(parent context.Context, cfg *config.Config) error {
	logger, logCloser := logging.New(cfg.Log, os.Stdout)
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("starting iptv-player",
		"addr", cfg.ListenAddr(),
		"storage", cfg.Storage.Driver,
		"log_level", cfg.Log.SlogLevel().String(),
	)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}()

	source, breakers, err := newPlaylistSource(cfg, logger)
	if err != nil {
		return err
	}

	hub := driven.NewPlayerHub(logger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	playlistService := application.NewPlaylistService(source, st.channels, st.prefs, cfg.Playlist.FetchTimeout, logger)
	playbackService := application.NewPlaybackService(st.channels, st.prefs, hub, logger)
	remoteService := application.NewRemoteService(playbackService, st.channels, hub, cfg.OverlayTimeouts(), logger)
	defer remoteService.Close()

	if err := bootstrap(ctx, cfg, st, playlistService, logger); err != nil {
		return err
	}
	if ch, ok, err := playbackService.Start(ctx); err != nil {
		logger.Warn("initial channel could not be started", "error", err)
	} else if ok {
		logger.Info("initial channel", "number", ch.Number(), "name", ch.Name())
	}

	handler, err := driver.NewRouter(driver.Services{
		Channels: application.NewChannelService(st.channels),
		Playlist: playlistService,
		Playback: playbackService,
		Remote:   remoteService,
		Settings: application.NewSettingsService(st.channels, st.prefs, playbackService),
		Health:   application.NewHealthService(st.channels, hub, breakers),
		Hub:      hub,
	}, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      logging.Middleware(logger, handler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received, shutting down gracefully")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
	return nil
}

// bootstrap prepares a fresh or emptied store: it applies the configured
// auto-play default, loads the initial playlist and reloads a remembered
// playlist whose channels are gone. Load failures are logged, not fatal.
func bootstrap(ctx context.Context, cfg *config.Config, st *store, playlists *application.PlaylistService, logger *slog.Logger) error {
	prefs, err := st.prefs.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read preferences: %w", err)
	}

	if !prefs.HasPlaylist() {
		if err := st.prefs.SetAutoPlayOnLaunch(ctx, cfg.Player.AutoPlayOnLaunch); err != nil {
			return fmt.Errorf("failed to store auto-play default: %w", err)
		}
		if cfg.Playlist.InitialSource == "" {
			logger.Info("no playlist configured yet")
			return nil
		}
		if _, err := playlists.Load(ctx, cfg.Playlist.InitialSource); err != nil {
			logger.Warn("initial playlist could not be loaded", "source", cfg.Playlist.InitialSource, "error", err)
		}
		return nil
	}

	count, err := st.channels.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count channels: %w", err)
	}
	if count == 0 {
		if _, err := playlists.Refresh(ctx); err != nil {
			logger.Warn("remembered playlist could not be reloaded", "source", prefs.PlaylistSource(), "error", err)
		}
	}
	return nil
}
