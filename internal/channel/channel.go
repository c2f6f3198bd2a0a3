package channel

import (
	"errors"
	"strings"
	"unicode"
)

// Domain errors
var (
	ErrInvalidNumber        = errors.New("channel number must be >= 1")
	ErrEmptyName            = errors.New("channel name cannot be empty")
	ErrEmptyStreamURL       = errors.New("channel stream url cannot be empty")
	ErrInvalidName          = errors.New("channel name cannot contain control characters")
	ErrInvalidStreamURL     = errors.New("channel stream url cannot contain control characters")
	ErrInvalidOrigin        = errors.New("invalid channel origin")
	ErrChannelNotFound      = errors.New("channel not found")
	ErrChannelAlreadyExists = errors.New("channel already exists")
)

// Origin records how a channel entered the store. Playlist channels are
// replaced on every successful playlist load; manual ones survive it.
type Origin string

const (
	OriginPlaylist Origin = "playlist"
	OriginManual   Origin = "manual"
)

// IsValid reports whether o is a known origin.
func (o Origin) IsValid() bool {
	return o == OriginPlaylist || o == OriginManual
}

// Channel is one playable entry of the channel list.
// It is immutable; use the With* methods to derive modified copies.
type Channel struct {
	number     int
	name       string
	streamURL  string
	groupTitle string
	logoURL    string
	origin     Origin
}

// New creates a playlist channel. Name and stream URL are trimmed and must
// not be blank; group title and logo URL are optional and kept verbatim.
func New(number int, name, streamURL, groupTitle, logoURL string) (Channel, error) {
	return build(number, name, streamURL, groupTitle, logoURL, OriginPlaylist)
}

// NewManual creates a channel added by hand rather than from a playlist.
func NewManual(number int, name, streamURL string) (Channel, error) {
	return build(number, name, streamURL, "", "", OriginManual)
}

// Reconstruct rebuilds a channel from persisted data, re-checking the invariants.
func Reconstruct(number int, name, streamURL, groupTitle, logoURL string, origin Origin) (Channel, error) {
	if !origin.IsValid() {
		return Channel{}, ErrInvalidOrigin
	}
	return build(number, name, streamURL, groupTitle, logoURL, origin)
}

func build(number int, name, streamURL, groupTitle, logoURL string, origin Origin) (Channel, error) {
	if number < 1 {
		return Channel{}, ErrInvalidNumber
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Channel{}, ErrEmptyName
	}
	if hasControl(name) {
		return Channel{}, ErrInvalidName
	}
	streamURL = strings.TrimSpace(streamURL)
	if streamURL == "" {
		return Channel{}, ErrEmptyStreamURL
	}
	if hasControl(streamURL) {
		return Channel{}, ErrInvalidStreamURL
	}
	return Channel{
		number:     number,
		name:       name,
		streamURL:  streamURL,
		groupTitle: groupTitle,
		logoURL:    logoURL,
		origin:     origin,
	}, nil
}

// hasControl reports control characters other than tab. Line breaks would
// split a channel across lines of an exported playlist.
func hasControl(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return r != '\t' && unicode.IsControl(r)
	})
}

// Number returns the 1-based channel number.
func (c Channel) Number() int { return c.number }

// Name returns the display name.
func (c Channel) Name() string { return c.name }

// StreamURL returns the stream location.
func (c Channel) StreamURL() string { return c.streamURL }

// GroupTitle returns the category, or "" when the channel has none.
func (c Channel) GroupTitle() string { return c.groupTitle }

// LogoURL returns the logo location, or "" when the channel has none.
func (c Channel) LogoURL() string { return c.logoURL }

// Origin returns where the channel came from.
func (c Channel) Origin() Origin { return c.origin }

// IsManual reports whether the channel was added by hand.
func (c Channel) IsManual() bool { return c.origin == OriginManual }

// WithDetails returns a copy with a new name and stream URL, validated like New.
func (c Channel) WithDetails(name, streamURL string) (Channel, error) {
	return build(c.number, name, streamURL, c.groupTitle, c.logoURL, c.origin)
}

// WithOrigin returns a copy carrying the given origin.
func (c Channel) WithOrigin(origin Origin) Channel {
	c.origin = origin
	return c
}

// Equal reports whether both channels carry the same data.
func (c Channel) Equal(other Channel) bool {
	return c == other
}
