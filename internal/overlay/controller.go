// Package overlay tracks which on-screen overlays are visible and hides
// them again after a period without interaction.
package overlay

import (
	"sync"
	"time"
)

// Kind identifies an overlay.
type Kind string

const (
	ChannelInfo Kind = "channel_info"
	ChannelList Kind = "channel_list"
	NumberPad   Kind = "number_pad"
	Settings    Kind = "settings"
	Error       Kind = "error"
)

// dismissOrder is the order in which a back press closes overlays.
var dismissOrder = []Kind{NumberPad, ChannelList, Settings, Error, ChannelInfo}

// Timeouts are the idle periods after which each overlay hides itself.
// A zero duration keeps the overlay until it is hidden explicitly.
type Timeouts struct {
	ChannelInfo time.Duration
	ChannelList time.Duration
	NumberPad   time.Duration
	Settings    time.Duration
	Error       time.Duration
}

// DefaultTimeouts returns 3s for channel info, 10s for the list and the
// number pad, 30s for settings and no timeout for errors.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		ChannelInfo: 3 * time.Second,
		ChannelList: 10 * time.Second,
		NumberPad:   10 * time.Second,
		Settings:    30 * time.Second,
	}
}

func (t Timeouts) of(k Kind) time.Duration {
	switch k {
	case ChannelInfo:
		return t.ChannelInfo
	case ChannelList:
		return t.ChannelList
	case NumberPad:
		return t.NumberPad
	case Settings:
		return t.Settings
	case Error:
		return t.Error
	}
	return 0
}

type entry struct {
	timer *time.Timer
	gen   uint64
}

// Controller is safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	timeouts Timeouts
	visible  map[Kind]*entry
	gen      uint64
	onExpire func(Kind)
}

// NewController creates a controller with nothing visible. onExpire, when
// not nil, runs on the timer goroutine each time an overlay hides because
// its timeout elapsed; it is not called for explicit hides.
func NewController(timeouts Timeouts, onExpire func(Kind)) *Controller {
	return &Controller{
		timeouts: timeouts,
		visible:  make(map[Kind]*entry),
		onExpire: onExpire,
	}
}

// Show makes k visible and (re)starts its idle timer.
func (c *Controller) Show(k Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.showLocked(k)
}

func (c *Controller) showLocked(k Kind) {
	c.stopLocked(k)
	c.gen++
	e := &entry{gen: c.gen}
	if d := c.timeouts.of(k); d > 0 {
		gen := e.gen
		e.timer = time.AfterFunc(d, func() { c.expire(k, gen) })
	}
	c.visible[k] = e
}

// Touch restarts the idle timer of a visible overlay. It reports whether k
// was visible.
func (c *Controller) Touch(k Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.visible[k]; !ok {
		return false
	}
	c.showLocked(k)
	return true
}

// Hide closes k, reporting whether it was visible.
func (c *Controller) Hide(k Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stopLocked(k)
}

// Visible reports whether k is shown.
func (c *Controller) Visible(k Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.visible[k]
	return ok
}

// VisibleKinds returns the shown overlays in dismiss order.
func (c *Controller) VisibleKinds() []Kind {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Kind, 0, len(c.visible))
	for _, k := range dismissOrder {
		if _, ok := c.visible[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// DismissActive hides the top-most overlay: the number pad first, then the
// channel list, settings, the error and finally the channel info.
func (c *Controller) DismissActive() (Kind, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range dismissOrder {
		if c.stopLocked(k) {
			return k, true
		}
	}
	return "", false
}

// Close stops every pending timer and hides everything.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.visible {
		c.stopLocked(k)
	}
}

func (c *Controller) stopLocked(k Kind) bool {
	e, ok := c.visible[k]
	if !ok {
		return false
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(c.visible, k)
	return true
}

func (c *Controller) expire(k Kind, gen uint64) {
	c.mu.Lock()
	e, ok := c.visible[k]
	// A newer Show replaced the entry whose timer fired.
	if !ok || e.gen != gen {
		c.mu.Unlock()
		return
	}
	delete(c.visible, k)
	c.mu.Unlock()

	if c.onExpire != nil {
		c.onExpire(k)
	}
}
