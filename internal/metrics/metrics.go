// Package metrics exposes the player's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlaylistLoads counts playlist loads by result (success, parse_error, fetch_error, empty).
	PlaylistLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_player_playlist_loads_total",
		Help: "Total number of playlist loads by result",
	}, []string{"result"})

	// ChannelsParsed holds the channel count of the last successful load
	ChannelsParsed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iptv_player_channels_parsed",
		Help: "Number of channels in the last successfully parsed playlist",
	})

	// SkippedLines counts playlist entries dropped while parsing
	SkippedLines = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptv_player_playlist_skipped_lines_total",
		Help: "Total number of playlist entries skipped while parsing",
	})

	// PlaylistStaleServes counts fetches answered from the playlist cache
	PlaylistStaleServes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptv_player_playlist_stale_serves_total",
		Help: "Total number of playlist fetches served from the stale cache",
	})

	// ChannelSwitches counts channel changes by direction (next, previous, number, initial)
	ChannelSwitches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_player_channel_switches_total",
		Help: "Total number of channel switches by direction",
	}, []string{"direction"})

	// OutOfRangeEntries counts confirmed number entries that matched no channel range
	OutOfRangeEntries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptv_player_out_of_range_entries_total",
		Help: "Total number of typed channel numbers outside the channel range",
	})

	// PlayerClients tracks connected render clients
	PlayerClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iptv_player_clients_connected",
		Help: "Number of connected player render clients",
	})

	// PlaybackStates counts player state transitions by target state
	PlaybackStates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_player_playback_state_transitions_total",
		Help: "Total number of playback state transitions by target state",
	}, []string{"state"})

	// CircuitBreakerState tracks the current state of circuit breakers
	// 0=closed, 1=open, 2=half-open
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "iptv_player_circuit_breaker_state",
		Help: "Current state of circuit breaker (0=closed, 1=open, 2=half-open)",
	}, []string{"breaker"})

	// HealthCheckFailures tracks health check failures
	HealthCheckFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptv_player_health_check_failures_total",
		Help: "Total number of health check failures",
	})
)

// RecordPlaylistLoad records one load attempt and, on success, its size.
func RecordPlaylistLoad(result string, channels, skipped int) {
	PlaylistLoads.WithLabelValues(result).Inc()
	if result == "success" {
		ChannelsParsed.Set(float64(channels))
		SkippedLines.Add(float64(skipped))
	}
}

// RecordStaleServe increments the stale cache counter
func RecordStaleServe() {
	PlaylistStaleServes.Inc()
}

// RecordChannelSwitch increments the switch counter for a direction
func RecordChannelSwitch(direction string) {
	ChannelSwitches.WithLabelValues(direction).Inc()
}

// RecordOutOfRangeEntry increments the out-of-range entry counter
func RecordOutOfRangeEntry() {
	OutOfRangeEntries.Inc()
}

// SetPlayerClients sets the number of connected render clients
func SetPlayerClients(count int) {
	PlayerClients.Set(float64(count))
}

// RecordPlaybackState increments the transition counter for a state
func RecordPlaybackState(state string) {
	PlaybackStates.WithLabelValues(state).Inc()
}

// SetCircuitBreakerState updates the circuit breaker state metric
// state should be one of: "CLOSED" (0), "OPEN" (1), "HALF-OPEN" (2)
func SetCircuitBreakerState(breaker, state string) {
	var value float64
	switch state {
	case "CLOSED":
		value = 0
	case "OPEN":
		value = 1
	case "HALF-OPEN":
		value = 2
	}
	CircuitBreakerState.WithLabelValues(breaker).Set(value)
}

// RecordHealthCheckFailure increments the health check failure counter
func RecordHealthCheckFailure() {
	HealthCheckFailures.Inc()
}
