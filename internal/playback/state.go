// Package playback models what the player is doing with the current channel.
package playback

import (
	"errors"
	"fmt"

	"github.com/alorle/iptv-player/internal/channel"
)

// Status names a player state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusBuffering Status = "buffering"
	StatusPlaying   Status = "playing"
	StatusError     Status = "error"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusIdle, StatusLoading, StatusBuffering, StatusPlaying, StatusError:
		return true
	}
	return false
}

var ErrInvalidTransition = errors.New("invalid playback state transition")

// transitions lists the statuses reachable from each status. Stopping to
// Idle and starting a new channel with Loading are allowed from anywhere.
var transitions = map[Status][]Status{
	StatusIdle:      {StatusLoading},
	StatusLoading:   {StatusLoading, StatusBuffering, StatusPlaying, StatusError},
	StatusBuffering: {StatusLoading, StatusBuffering, StatusPlaying, StatusError},
	StatusPlaying:   {StatusLoading, StatusBuffering, StatusPlaying, StatusError},
	StatusError:     {StatusLoading, StatusError},
}

// State is an immutable snapshot of the player. Every status except Idle
// refers to a channel; Error may lack one when playback failed before a
// channel was resolved.
type State struct {
	status     Status
	channel    channel.Channel
	hasChannel bool
	progress   int
	message    string
}

// Idle is the state before anything has been played.
func Idle() State {
	return State{status: StatusIdle}
}

// Loading is the state right after a channel was handed to the player.
func Loading(ch channel.Channel) State {
	return State{status: StatusLoading, channel: ch, hasChannel: true}
}

// Buffering carries a progress percentage clamped to 0..100.
func Buffering(ch channel.Channel, progress int) State {
	progress = max(0, min(progress, 100))
	return State{status: StatusBuffering, channel: ch, hasChannel: true, progress: progress}
}

// Playing is the state of a channel being rendered.
func Playing(ch channel.Channel) State {
	return State{status: StatusPlaying, channel: ch, hasChannel: true}
}

// Failed is the Error state. ch may be nil.
func Failed(ch *channel.Channel, message string) State {
	s := State{status: StatusError, message: message}
	if ch != nil {
		s.channel = *ch
		s.hasChannel = true
	}
	return s
}

func (s State) Status() Status  { return s.status }
func (s State) Progress() int   { return s.progress }
func (s State) Message() string { return s.message }

// Channel returns the channel the state refers to, if any.
func (s State) Channel() (channel.Channel, bool) {
	return s.channel, s.hasChannel
}

func (s State) IsPlaying() bool { return s.status == StatusPlaying }
func (s State) IsLoading() bool { return s.status == StatusLoading || s.status == StatusBuffering }
func (s State) HasError() bool  { return s.status == StatusError }

// CanTransitionTo reports whether the player may move from s to next.
func (s State) CanTransitionTo(next Status) bool {
	if next == StatusIdle {
		return true
	}
	for _, allowed := range transitions[s.status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition returns next when the move from s is allowed.
func (s State) Transition(next State) (State, error) {
	if !s.CanTransitionTo(next.status) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.status, next.status)
	}
	return next, nil
}

// FromReport rebuilds a state reported by a render client for ch.
func FromReport(ch channel.Channel, status Status, progress int, message string) (State, error) {
	switch status {
	case StatusIdle:
		return Idle(), nil
	case StatusLoading:
		return Loading(ch), nil
	case StatusBuffering:
		return Buffering(ch, progress), nil
	case StatusPlaying:
		return Playing(ch), nil
	case StatusError:
		return Failed(&ch, message), nil
	}
	return State{}, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, status)
}
