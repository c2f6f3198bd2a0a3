package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/alorle/iptv-player/internal/channel"
	"github.com/alorle/iptv-player/internal/navigation"
	"github.com/alorle/iptv-player/internal/preferences"
)

// mockChannelRepository is a mock implementation of driven.ChannelRepository for testing.
type mockChannelRepository struct {
	findAllFunc      func(ctx context.Context) ([]channel.Channel, error)
	findByNumberFunc func(ctx context.Context, number int) (channel.Channel, error)
	countFunc        func(ctx context.Context) (int, error)
	replaceFunc      func(ctx context.Context, channels []channel.Channel) error
	saveFunc         func(ctx context.Context, ch channel.Channel) error
	updateFunc       func(ctx context.Context, ch channel.Channel) error
	deleteFunc       func(ctx context.Context, number int) error
	deleteAllFunc    func(ctx context.Context) error
	pingFunc         func(ctx context.Context) error
}

func (m *mockChannelRepository) FindAll(ctx context.Context) ([]channel.Channel, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return []channel.Channel{}, nil
}

func (m *mockChannelRepository) FindByNumber(ctx context.Context, number int) (channel.Channel, error) {
	if m.findByNumberFunc != nil {
		return m.findByNumberFunc(ctx, number)
	}
	return channel.Channel{}, channel.ErrChannelNotFound
}

func (m *mockChannelRepository) Count(ctx context.Context) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockChannelRepository) ReplacePlaylistChannels(ctx context.Context, channels []channel.Channel) error {
	if m.replaceFunc != nil {
		return m.replaceFunc(ctx, channels)
	}
	return nil
}

func (m *mockChannelRepository) Save(ctx context.Context, ch channel.Channel) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, ch)
	}
	return nil
}

func (m *mockChannelRepository) Update(ctx context.Context, ch channel.Channel) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, ch)
	}
	return nil
}

func (m *mockChannelRepository) Delete(ctx context.Context, number int) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, number)
	}
	return nil
}

func (m *mockChannelRepository) DeleteAll(ctx context.Context) error {
	if m.deleteAllFunc != nil {
		return m.deleteAllFunc(ctx)
	}
	return nil
}

func (m *mockChannelRepository) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

// staticChannelRepository serves a fixed channel list.
func staticChannelRepository(channels []channel.Channel) *mockChannelRepository {
	return &mockChannelRepository{
		findAllFunc: func(ctx context.Context) ([]channel.Channel, error) {
			return channels, nil
		},
		findByNumberFunc: func(ctx context.Context, number int) (channel.Channel, error) {
			if ch, ok := navigation.ByNumber(channels, number); ok {
				return ch, nil
			}
			return channel.Channel{}, channel.ErrChannelNotFound
		},
		countFunc: func(ctx context.Context) (int, error) {
			return len(channels), nil
		},
	}
}

// mockPreferencesRepository is a mock implementation of driven.PreferencesRepository for testing.
type mockPreferencesRepository struct {
	getFunc            func(ctx context.Context) (preferences.Preferences, error)
	setLastChannelFunc func(ctx context.Context, number int) error
	setSourceFunc      func(ctx context.Context, source string) error
	setAutoPlayFunc    func(ctx context.Context, enabled bool) error
	clearFunc          func(ctx context.Context) error
}

func (m *mockPreferencesRepository) Get(ctx context.Context) (preferences.Preferences, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx)
	}
	return preferences.Default(), nil
}

func (m *mockPreferencesRepository) SetLastChannelNumber(ctx context.Context, number int) error {
	if m.setLastChannelFunc != nil {
		return m.setLastChannelFunc(ctx, number)
	}
	return nil
}

func (m *mockPreferencesRepository) SetPlaylistSource(ctx context.Context, source string) error {
	if m.setSourceFunc != nil {
		return m.setSourceFunc(ctx, source)
	}
	return nil
}

func (m *mockPreferencesRepository) SetAutoPlayOnLaunch(ctx context.Context, enabled bool) error {
	if m.setAutoPlayFunc != nil {
		return m.setAutoPlayFunc(ctx, enabled)
	}
	return nil
}

func (m *mockPreferencesRepository) Clear(ctx context.Context) error {
	if m.clearFunc != nil {
		return m.clearFunc(ctx)
	}
	return nil
}

// mockPlaylistSource is a mock implementation of driven.PlaylistSource for testing.
type mockPlaylistSource struct {
	fetchFunc func(ctx context.Context, location string) (string, error)
}

func (m *mockPlaylistSource) Fetch(ctx context.Context, location string) (string, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, location)
	}
	return "", nil
}

// mockPlaybackEngine records the commands it receives.
type mockPlaybackEngine struct {
	playFunc  func(ctx context.Context, ch channel.Channel) error
	retryFunc func(ctx context.Context, ch channel.Channel) error

	mu      sync.Mutex
	played  []int
	retried []int
	stops   int
}

func (m *mockPlaybackEngine) Play(ctx context.Context, ch channel.Channel) error {
	m.mu.Lock()
	m.played = append(m.played, ch.Number())
	m.mu.Unlock()
	if m.playFunc != nil {
		return m.playFunc(ctx, ch)
	}
	return nil
}

func (m *mockPlaybackEngine) Stop(ctx context.Context) error {
	m.mu.Lock()
	m.stops++
	m.mu.Unlock()
	return nil
}

func (m *mockPlaybackEngine) Retry(ctx context.Context, ch channel.Channel) error {
	m.mu.Lock()
	m.retried = append(m.retried, ch.Number())
	m.mu.Unlock()
	if m.retryFunc != nil {
		return m.retryFunc(ctx, ch)
	}
	return nil
}

func (m *mockPlaybackEngine) playedNumbers() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.played...)
}

// mockNotifier records notifications.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockNotifier) Notify(ctx context.Context, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockNotifier) received() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testChannels builds playlist channels with the given numbers, named
// "Channel N" and streaming from http://example.com/N.
func testChannels(t *testing.T, numbers ...int) []channel.Channel {
	t.Helper()

	out := make([]channel.Channel, 0, len(numbers))
	for _, n := range numbers {
		ch, err := channel.New(n, fmt.Sprintf("Channel %d", n), fmt.Sprintf("http://example.com/%d", n), "", "")
		if err != nil {
			t.Fatalf("failed to build channel %d: %v", n, err)
		}
		out = append(out, ch)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
