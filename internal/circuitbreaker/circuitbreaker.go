// Package circuitbreaker stops calling a failing upstream for a while and
// probes it again before resuming normal traffic.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// State represents the current state of the circuit breaker
type State int

const (
	// StateClosed means calls pass through
	StateClosed State = iota
	// StateOpen means calls are rejected without running
	StateOpen
	// StateHalfOpen means a limited number of probe calls are let through
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

var (
	// ErrCircuitOpen is returned when the circuit breaker is in OPEN state
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrHalfOpenLimitReached is returned when too many probes are in flight
	ErrHalfOpenLimitReached = errors.New("circuit breaker half-open request limit reached")
)

// Config contains the configuration for a circuit breaker. Zero values take
// the defaults: 5 failures, 30s open timeout, 1 half-open probe.
type Config struct {
	Name             string
	FailureThreshold int
	Timeout          time.Duration
	HalfOpenRequests int
	Logger           *slog.Logger
	// OnStateChange is called with the lock held; it must not call back
	// into the breaker.
	OnStateChange func(name string, from, to State)
}

// Breaker guards calls to one upstream. It is safe for concurrent use.
type Breaker struct {
	cfg Config
	now func() time.Time

	mu                sync.Mutex
	state             State
	failures          int
	halfOpenInFlight  int
	halfOpenSuccesses int
	openedAt          time.Time
}

// New creates a closed circuit breaker.
func New(cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HalfOpenRequests <= 0 {
		cfg.HalfOpenRequests = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Breaker{cfg: cfg, now: time.Now, state: StateClosed}
}

// Execute runs fn if the circuit allows it and records the outcome.
func (b *Breaker) Execute(fn func() error) error {
	probe, err := b.admit()
	if err != nil {
		return err
	}

	err = fn()
	b.record(probe, err)
	return err
}

// State returns the current state, moving OPEN to HALF-OPEN when the open
// timeout has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybeHalfOpen()
	return b.state
}

// Reset closes the circuit.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.transitionTo(StateClosed)
}

// admit decides whether a call may run and whether it counts as a probe.
func (b *Breaker) admit() (probe bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybeHalfOpen()

	switch b.state {
	case StateOpen:
		return false, ErrCircuitOpen
	case StateHalfOpen:
		if b.halfOpenInFlight >= b.cfg.HalfOpenRequests {
			return false, ErrHalfOpenLimitReached
		}
		b.halfOpenInFlight++
		return true, nil
	default:
		return false, nil
	}
}

func (b *Breaker) record(probe bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if probe {
		// A reset or a failed sibling probe may already have moved us on.
		if b.state != StateHalfOpen {
			return
		}
		if err != nil {
			b.transitionTo(StateOpen)
			return
		}
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.cfg.HalfOpenRequests {
			b.transitionTo(StateClosed)
		}
		return
	}

	if b.state != StateClosed {
		return
	}
	if err == nil {
		b.failures = 0
		return
	}
	b.failures++
	if b.failures >= b.cfg.FailureThreshold {
		b.transitionTo(StateOpen)
	}
}

// Must be called with the lock held.
func (b *Breaker) maybeHalfOpen() {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cfg.Timeout {
		b.transitionTo(StateHalfOpen)
	}
}

// Must be called with the lock held.
func (b *Breaker) transitionTo(next State) {
	if b.state == next {
		return
	}

	prev := b.state
	b.state = next
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0

	switch next {
	case StateClosed:
		b.failures = 0
		b.openedAt = time.Time{}
	case StateOpen:
		b.openedAt = b.now()
	}

	b.cfg.Logger.Info("circuit breaker state changed",
		"breaker", b.cfg.Name,
		"from", prev.String(),
		"to", next.String(),
	)
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.cfg.Name, prev, next)
	}
}
