package circuitbreaker

import "sync"

// Group keeps one breaker per key, created on first use from a shared
// configuration, so a failing upstream does not block its siblings.
// Breakers are named "<Name>:<key>". It is safe for concurrent use.
type Group struct {
	cfg Config

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewGroup creates an empty group.
func NewGroup(cfg Config) *Group {
	return &Group{cfg: cfg, breakers: make(map[string]*Breaker)}
}

// Get returns the breaker for key, creating a closed one if needed.
func (g *Group) Get(key string) *Breaker {
	g.mu.Lock()
	defer g.mu.Unlock()

	if b, ok := g.breakers[key]; ok {
		return b
	}
	cfg := g.cfg
	cfg.Name = g.cfg.Name + ":" + key
	b := New(cfg)
	g.breakers[key] = b
	return b
}

// State returns the worst state in the group: OPEN, then HALF-OPEN, then
// CLOSED. An empty group is CLOSED.
func (g *Group) State() State {
	g.mu.Lock()
	breakers := make([]*Breaker, 0, len(g.breakers))
	for _, b := range g.breakers {
		breakers = append(breakers, b)
	}
	g.mu.Unlock()

	worst := StateClosed
	for _, b := range breakers {
		switch b.State() {
		case StateOpen:
			return StateOpen
		case StateHalfOpen:
			worst = StateHalfOpen
		}
	}
	return worst
}
