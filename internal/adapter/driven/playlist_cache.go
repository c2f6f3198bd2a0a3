package driven

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrCacheMiss is returned when no copy of a playlist has been cached.
var ErrCacheMiss = errors.New("playlist not cached")

// CachedPlaylist is the last good copy of a remote playlist.
type CachedPlaylist struct {
	Location  string    `json:"location"`
	Content   string    `json:"content"`
	FetchedAt time.Time `json:"fetched_at"`
}

// PlaylistFileCache keeps one JSON file per playlist location.
type PlaylistFileCache struct {
	dir string
	now func() time.Time
}

// NewPlaylistFileCache creates the cache directory if needed.
func NewPlaylistFileCache(dir string) (*PlaylistFileCache, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &PlaylistFileCache{dir: dir, now: time.Now}, nil
}

// Get returns the cached copy for location.
func (c *PlaylistFileCache) Get(location string) (CachedPlaylist, error) {
	data, err := os.ReadFile(c.path(location))
	if errors.Is(err, os.ErrNotExist) {
		return CachedPlaylist{}, ErrCacheMiss
	}
	if err != nil {
		return CachedPlaylist{}, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry CachedPlaylist
	if err := json.Unmarshal(data, &entry); err != nil {
		return CachedPlaylist{}, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return entry, nil
}

// Put stores content as the latest copy for location. The file is written
// to a temporary name first so readers never see a partial entry.
func (c *PlaylistFileCache) Put(location, content string) error {
	data, err := json.Marshal(CachedPlaylist{
		Location:  location,
		Content:   content,
		FetchedAt: c.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	target := c.path(location)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// path hashes the location into a safe file name.
func (c *PlaylistFileCache) path(location string) string {
	hash := sha256.Sum256([]byte(location))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".json")
}
