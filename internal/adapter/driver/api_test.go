package driver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.etcd.io/bbolt"

	"github.com/alorle/iptv-player/internal/adapter/driven"
	"github.com/alorle/iptv-player/internal/application"
	"github.com/alorle/iptv-player/internal/overlay"
)

const testPlaylist = `#EXTM3U
#EXTINF:-1 tvg-logo="http://logo/1.png" group-title="News",News One
http://example.com/news
#EXTINF:-1 group-title="Sports",Sports Two
http://example.com/sports
#EXTINF:-1,Movies Three
https://example.com/movies
`

type testAPI struct {
	handler http.Handler
	hub     *driven.PlayerHub
	dir     string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestAPI wires the full HTTP surface over a temporary bbolt file, the
// file playlist source and a running player hub.
func newTestAPI(t *testing.T) testAPI {
	t.Helper()

	dir := t.TempDir()
	db, err := bbolt.Open(filepath.Join(dir, "test.db"), 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	channels, err := driven.NewChannelBoltDBRepository(db)
	if err != nil {
		t.Fatalf("failed to create channel repository: %v", err)
	}
	prefs, err := driven.NewPreferencesBoltDBRepository(db)
	if err != nil {
		t.Fatalf("failed to create preferences repository: %v", err)
	}

	logger := discardLogger()
	hub := driven.NewPlayerHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	source := driven.NewPlaylistSourceRouter(nil, driven.NewPlaylistFileSource())
	playbackService := application.NewPlaybackService(channels, prefs, hub, logger)
	remote := application.NewRemoteService(playbackService, channels, hub, overlay.Timeouts{
		ChannelInfo: time.Hour,
		ChannelList: time.Hour,
		NumberPad:   time.Hour,
		Settings:    time.Hour,
	}, logger)
	t.Cleanup(remote.Close)

	handler, err := NewRouter(Services{
		Channels: application.NewChannelService(channels),
		Playlist: application.NewPlaylistService(source, channels, prefs, time.Second, logger),
		Playback: playbackService,
		Remote:   remote,
		Settings: application.NewSettingsService(channels, prefs, playbackService),
		Health:   application.NewHealthService(channels, hub, nil),
		Hub:      hub,
	}, logger)
	if err != nil {
		t.Fatalf("failed to build router: %v", err)
	}

	return testAPI{handler: handler, hub: hub, dir: dir}
}

func (a testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// loadPlaylist writes content to a file and loads it through the API.
func (a testAPI) loadPlaylist(t *testing.T, content string) *httptest.ResponseRecorder {
	t.Helper()

	path := filepath.Join(a.dir, "list.m3u")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write playlist: %v", err)
	}
	body, _ := json.Marshal(loadPlaylistRequest{Source: path})
	return a.do(t, http.MethodPost, "/api/playlist", string(body))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}
