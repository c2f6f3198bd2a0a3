package driven

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	port "github.com/alorle/iptv-player/internal/port/driven"
)

// PlaylistSourceRouter dispatches a location to the HTTP or the file source.
type PlaylistSourceRouter struct {
	http port.PlaylistSource
	file port.PlaylistSource
}

// NewPlaylistSourceRouter creates a router over the two sources.
func NewPlaylistSourceRouter(httpSource, fileSource port.PlaylistSource) *PlaylistSourceRouter {
	return &PlaylistSourceRouter{http: httpSource, file: fileSource}
}

// Fetch picks the source from the location's scheme.
func (r *PlaylistSourceRouter) Fetch(ctx context.Context, location string) (string, error) {
	location = strings.TrimSpace(location)

	switch scheme := sourceScheme(location); scheme {
	case "http", "https":
		return r.http.Fetch(ctx, location)
	case "file", "":
		return r.file.Fetch(ctx, location)
	default:
		return "", fmt.Errorf("%w: %s", port.ErrUnsupportedSourceScheme, scheme)
	}
}

// sourceScheme returns the lower-cased scheme, or "" for plain paths.
// Single-letter schemes are Windows drive letters.
func sourceScheme(location string) string {
	u, err := url.Parse(location)
	if err != nil || len(u.Scheme) <= 1 {
		return ""
	}
	return strings.ToLower(u.Scheme)
}
