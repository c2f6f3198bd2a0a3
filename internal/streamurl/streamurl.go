// Package streamurl decides whether a channel's stream URL may be handed to
// the player.
package streamurl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrEmptyURL          = errors.New("URL cannot be empty")
	ErrMissingScheme     = errors.New("URL has no scheme")
	ErrBlockedScheme     = errors.New("blocked URL scheme")
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	ErrMissingHost       = errors.New("URL has no host")
	ErrMalformedURL      = errors.New("malformed URL")
)

var allowedSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"rtsp":  true,
}

var blockedSchemes = map[string]bool{
	"file":       true,
	"javascript": true,
	"ftp":        true,
	"data":       true,
	"content":    true,
}

// Validate returns the parsed URL when raw may be played. Errors wrap one of
// the package sentinels.
func Validate(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedURL, raw)
	}

	scheme := strings.ToLower(u.Scheme)
	switch {
	case scheme == "":
		return nil, fmt.Errorf("%w: %s", ErrMissingScheme, raw)
	case blockedSchemes[scheme]:
		return nil, fmt.Errorf("%w: %s", ErrBlockedScheme, scheme)
	case !allowedSchemes[scheme]:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	case (scheme == "http" || scheme == "https") && strings.TrimSpace(u.Hostname()) == "":
		return nil, fmt.Errorf("%w: %s", ErrMissingHost, raw)
	}

	return u, nil
}

// IsValid reports whether Validate accepts raw.
func IsValid(raw string) bool {
	_, err := Validate(raw)
	return err == nil
}

// IsSecure reports whether raw uses https.
func IsSecure(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, "https")
}
