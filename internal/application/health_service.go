package application

import (
	"context"

	"github.com/alorle/iptv-player/internal/circuitbreaker"
	"github.com/alorle/iptv-player/internal/metrics"
	"github.com/alorle/iptv-player/internal/port/driven"
)

// Health statuses.
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)

// PlayerClientCounter reports how many render clients are connected.
type PlayerClientCounter interface {
	ClientCount() int
}

// BreakerStater exposes the state of the playlist fetcher's circuit breakers.
type BreakerStater interface {
	State() circuitbreaker.State
}

// HealthReport is the result of one health check. Only an unreachable store
// degrades the service; an open fetcher breaker is reported but the player
// keeps working from the stored channels.
type HealthReport struct {
	Status        string
	StoreErr      error
	FetcherState  string
	PlayerClients int
}

// HealthService checks the channel store and reports on the collaborators
// the player depends on.
type HealthService struct {
	store   driven.ChannelRepository
	player  PlayerClientCounter
	fetcher BreakerStater
}

// NewHealthService creates a HealthService. player and fetcher may be nil.
func NewHealthService(store driven.ChannelRepository, player PlayerClientCounter, fetcher BreakerStater) *HealthService {
	return &HealthService{store: store, player: player, fetcher: fetcher}
}

// Check pings the store and collects the collaborator states.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	report := HealthReport{Status: HealthOK}

	if err := s.store.Ping(ctx); err != nil {
		report.Status = HealthDegraded
		report.StoreErr = err
		metrics.RecordHealthCheckFailure()
	}
	if s.fetcher != nil {
		report.FetcherState = s.fetcher.State().String()
	}
	if s.player != nil {
		report.PlayerClients = s.player.ClientCount()
	}
	return report
}
