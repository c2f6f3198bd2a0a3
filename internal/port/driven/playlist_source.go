package driven

import (
	"context"
	"errors"
)

// ErrUnsupportedSourceScheme is returned for playlist locations that are
// neither HTTP(S) URLs nor local files.
var ErrUnsupportedSourceScheme = errors.New("unsupported playlist source scheme")

// PlaylistSource defines the interface for reading playlist text from a
// location (URL or file path).
// This is a driven port implemented by concrete adapters (HTTP client, file reader).
type PlaylistSource interface {
	// Fetch returns the raw playlist content found at location.
	Fetch(ctx context.Context, location string) (string, error)
}
