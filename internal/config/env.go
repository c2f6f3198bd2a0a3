package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// envParser collects every invalid environment value instead of stopping at the first
type envParser struct {
	errors []string
}

func (p *envParser) parseString(envName string, target *string) {
	if val := os.Getenv(envName); val != "" {
		*target = val
	}
}

// parseDuration parses a duration environment variable. Zero is accepted
// only when allowZero is set.
func (p *envParser) parseDuration(envName string, target *time.Duration, allowZero bool) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: invalid duration format (use '30s', '1m', etc.)", envName))
		return
	}

	if duration < 0 || (duration == 0 && !allowZero) {
		p.errors = append(p.errors, fmt.Sprintf("%s must be positive", envName))
		return
	}

	*target = duration
}

// parseInt parses an integer environment variable, ensuring it's positive
func (p *envParser) parseInt(envName string, target *int) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	intVal, err := strconv.Atoi(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: must be a valid integer", envName))
		return
	}

	if intVal <= 0 {
		p.errors = append(p.errors, fmt.Sprintf("%s must be positive", envName))
		return
	}

	*target = intVal
}

func (p *envParser) parseBool(envName string, target *bool) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: must be true or false", envName))
		return
	}

	*target = b
}

// parseEnum parses an enum environment variable from a set of valid values
func (p *envParser) parseEnum(envName string, target *string, validValues []string) {
	val := os.Getenv(envName)
	if val == "" {
		return
	}

	for _, v := range validValues {
		if strings.EqualFold(val, v) {
			*target = v
			return
		}
	}
	p.errors = append(p.errors, fmt.Sprintf("%s must be one of: %s", envName, strings.Join(validValues, ", ")))
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) error {
	p := &envParser{}

	p.parseString("HTTP_ADDRESS", &cfg.HTTP.Address)
	p.parseString("HTTP_PORT", &cfg.HTTP.Port)
	p.parseString("PORT", &cfg.HTTP.Port)
	p.parseDuration("HTTP_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout, false)

	p.parseEnum("STORAGE_DRIVER", &cfg.Storage.Driver, []string{DriverBolt, DriverPostgres, DriverMemory})
	p.parseString("DB_PATH", &cfg.Storage.BoltPath)
	p.parseString("POSTGRES_DSN", &cfg.Storage.PostgresDSN)

	p.parseDuration("PLAYLIST_FETCH_TIMEOUT", &cfg.Playlist.FetchTimeout, false)
	p.parseString("PLAYLIST_USER_AGENT", &cfg.Playlist.UserAgent)
	p.parseString("PLAYLIST_CACHE_DIR", &cfg.Playlist.CacheDir)
	p.parseString("PLAYLIST_SOURCE", &cfg.Playlist.InitialSource)

	p.parseInt("CB_FAILURE_THRESHOLD", &cfg.Resilience.CBFailureThreshold)
	p.parseDuration("CB_TIMEOUT", &cfg.Resilience.CBTimeout, false)
	p.parseInt("CB_HALF_OPEN_REQUESTS", &cfg.Resilience.CBHalfOpenRequests)

	p.parseDuration("OVERLAY_CHANNEL_INFO_TIMEOUT", &cfg.Overlay.ChannelInfo, true)
	p.parseDuration("OVERLAY_CHANNEL_LIST_TIMEOUT", &cfg.Overlay.ChannelList, true)
	p.parseDuration("OVERLAY_NUMBER_PAD_TIMEOUT", &cfg.Overlay.NumberPad, true)
	p.parseDuration("OVERLAY_SETTINGS_TIMEOUT", &cfg.Overlay.Settings, true)
	p.parseDuration("OVERLAY_ERROR_TIMEOUT", &cfg.Overlay.Error, true)

	p.parseEnum("LOG_LEVEL", &cfg.Log.Level, []string{"DEBUG", "INFO", "WARN", "ERROR"})
	p.parseString("LOG_FILE", &cfg.Log.File)

	p.parseBool("AUTO_PLAY_ON_LAUNCH", &cfg.Player.AutoPlayOnLaunch)

	if len(p.errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(p.errors, "\n  - "))
	}
	return nil
}
