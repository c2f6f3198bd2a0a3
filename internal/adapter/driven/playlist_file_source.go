package driven

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// PlaylistFileSource reads playlists from the local filesystem. Locations
// may be plain paths or file:// URLs.
type PlaylistFileSource struct{}

// NewPlaylistFileSource creates a file playlist source.
func NewPlaylistFileSource() *PlaylistFileSource {
	return &PlaylistFileSource{}
}

// Fetch reads the whole file at location.
func (s *PlaylistFileSource) Fetch(ctx context.Context, location string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := location
	if strings.HasPrefix(strings.ToLower(location), "file:") {
		u, err := url.Parse(location)
		if err != nil {
			return "", fmt.Errorf("invalid file location: %w", err)
		}
		path = u.Path
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to open playlist: %w", err)
	}
	if info.Size() > maxPlaylistBytes {
		return "", ErrPlaylistTooLarge
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read playlist: %w", err)
	}
	return string(data), nil
}
