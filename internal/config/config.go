// Package config loads the player configuration from an optional YAML file,
// environment overrides and built-in defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alorle/iptv-player/internal/overlay"
)

// Storage drivers.
const (
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
	// DriverMemory keeps everything in process; nothing survives a restart.
	DriverMemory   = "memory"
)

// DefaultPath is the config file read when neither a flag nor CONFIG_FILE names one.
const DefaultPath = "config.yaml"

// Config holds the complete application configuration
type Config struct {
	// HTTP server settings
	HTTP struct {
		Address         string        `yaml:"address"`
		Port            string        `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		IdleTimeout     time.Duration `yaml:"idle_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"http"`

	// Channel and preferences store
	Storage struct {
		Driver      string `yaml:"driver"`
		BoltPath    string `yaml:"bolt_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"storage"`

	// Playlist fetching
	Playlist struct {
		FetchTimeout  time.Duration `yaml:"fetch_timeout"`
		UserAgent     string        `yaml:"user_agent"`
		CacheDir      string        `yaml:"cache_dir"`
		InitialSource string        `yaml:"initial_source"`
	} `yaml:"playlist"`

	Resilience ResilienceConfig `yaml:"resilience"`

	// Idle periods of the on-screen overlays, 0 disables auto-hide
	Overlay struct {
		ChannelInfo time.Duration `yaml:"channel_info"`
		ChannelList time.Duration `yaml:"channel_list"`
		NumberPad   time.Duration `yaml:"number_pad"`
		Settings    time.Duration `yaml:"settings"`
		Error       time.Duration `yaml:"error"`
	} `yaml:"overlay"`

	Log LogConfig `yaml:"log"`

	// Player defaults for a fresh install
	Player struct {
		AutoPlayOnLaunch bool `yaml:"auto_play_on_launch"`
	} `yaml:"player"`
}

// ResilienceConfig holds the circuit breaker settings of the playlist fetcher.
type ResilienceConfig struct {
	CBFailureThreshold int           `yaml:"cb_failure_threshold"`
	CBTimeout          time.Duration `yaml:"cb_timeout"`
	CBHalfOpenRequests int           `yaml:"cb_half_open_requests"`
}

// LogConfig selects the log level and an optional rotating log file.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

var validLogLevels = map[string]bool{
	"DEBUG": true,
	"INFO":  true,
	"WARN":  true,
	"ERROR": true,
}

// SlogLevel converts Level to a slog level, INFO when unknown.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToUpper(l.Level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// OverlayTimeouts returns the overlay section as overlay.Timeouts.
func (c *Config) OverlayTimeouts() overlay.Timeouts {
	return overlay.Timeouts{
		ChannelInfo: c.Overlay.ChannelInfo,
		ChannelList: c.Overlay.ChannelList,
		NumberPad:   c.Overlay.NumberPad,
		Settings:    c.Overlay.Settings,
		Error:       c.Overlay.Error,
	}
}

// ListenAddr joins address and port.
func (c *Config) ListenAddr() string {
	return c.HTTP.Address + ":" + c.HTTP.Port
}

// Default returns a Config with sensible default values
func Default() *Config {
	cfg := &Config{}

	cfg.HTTP.Address = "0.0.0.0"
	cfg.HTTP.Port = "8080"
	cfg.HTTP.ReadTimeout = 15 * time.Second
	cfg.HTTP.WriteTimeout = 15 * time.Second
	cfg.HTTP.IdleTimeout = 60 * time.Second
	cfg.HTTP.ShutdownTimeout = 10 * time.Second

	cfg.Storage.Driver = DriverBolt
	cfg.Storage.BoltPath = "iptv-player.db"

	cfg.Playlist.FetchTimeout = 30 * time.Second
	cfg.Playlist.UserAgent = "ATV-IPTV-Player/1.0"

	cfg.Resilience = ResilienceConfig{
		CBFailureThreshold: 5,
		CBTimeout:          30 * time.Second,
		CBHalfOpenRequests: 1,
	}

	d := overlay.DefaultTimeouts()
	cfg.Overlay.ChannelInfo = d.ChannelInfo
	cfg.Overlay.ChannelList = d.ChannelList
	cfg.Overlay.NumberPad = d.NumberPad
	cfg.Overlay.Settings = d.Settings
	cfg.Overlay.Error = d.Error

	cfg.Log = LogConfig{
		Level:      "INFO",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}

	cfg.Player.AutoPlayOnLaunch = true

	return cfg
}

// Validate reports every problem of the configuration at once.
func (c *Config) Validate() error {
	var errors []string

	if c.HTTP.Port == "" {
		errors = append(errors, "HTTP port is required")
	}
	durations := []struct {
		name  string
		value time.Duration
	}{
		{"HTTP read timeout", c.HTTP.ReadTimeout},
		{"HTTP write timeout", c.HTTP.WriteTimeout},
		{"HTTP idle timeout", c.HTTP.IdleTimeout},
		{"HTTP shutdown timeout", c.HTTP.ShutdownTimeout},
		{"Playlist fetch timeout", c.Playlist.FetchTimeout},
		{"Circuit breaker timeout", c.Resilience.CBTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errors = append(errors, d.name+" must be positive")
		}
	}

	switch c.Storage.Driver {
	case DriverBolt:
		if c.Storage.BoltPath == "" {
			errors = append(errors, "Bolt database path is required")
		}
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			errors = append(errors, "PostgreSQL DSN is required")
		}
	case DriverMemory:
	default:
		errors = append(errors, fmt.Sprintf("Storage driver must be %q, %q or %q, got %q", DriverBolt, DriverPostgres, DriverMemory, c.Storage.Driver))
	}

	if strings.TrimSpace(c.Playlist.UserAgent) == "" {
		errors = append(errors, "Playlist user agent is required")
	}

	if c.Resilience.CBFailureThreshold <= 0 {
		errors = append(errors, "Circuit breaker failure threshold must be positive")
	}
	if c.Resilience.CBHalfOpenRequests <= 0 {
		errors = append(errors, "Circuit breaker half-open requests must be positive")
	}

	t := c.OverlayTimeouts()
	if t.ChannelInfo < 0 || t.ChannelList < 0 || t.NumberPad < 0 || t.Settings < 0 || t.Error < 0 {
		errors = append(errors, "Overlay timeouts cannot be negative")
	}

	if !validLogLevels[strings.ToUpper(c.Log.Level)] {
		errors = append(errors, "Log level must be one of: DEBUG, INFO, WARN, ERROR")
	}
	if c.Log.File != "" && c.Log.MaxSizeMB <= 0 {
		errors = append(errors, "Log max size must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file over the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load reads the config file at path (CONFIG_FILE or DefaultPath when
// empty), applies environment overrides and validates the result. A
// missing file is not an error unless path was given explicitly.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath
	}

	var cfg *Config
	if _, err := os.Stat(path); err == nil {
		cfg, err = LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	} else {
		cfg = Default()
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if cfg.Playlist.CacheDir != "" {
		abs, err := filepath.Abs(cfg.Playlist.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve playlist cache dir: %w", err)
		}
		cfg.Playlist.CacheDir = abs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
