// Package navigation moves through an ordered channel list: next/previous
// with wrap-around, lookup by number, the start-up channel and direct
// number entry from a remote's digit keys.
package navigation

import "github.com/alorle/iptv-player/internal/channel"

// Next returns the channel after current, wrapping from the last to the
// first. A nil or unknown current yields the first channel. The boolean is
// false only when channels is empty.
func Next(channels []channel.Channel, current *channel.Channel) (channel.Channel, bool) {
	if len(channels) == 0 {
		return channel.Channel{}, false
	}

	i := indexOf(channels, current)
	if i < 0 {
		return channels[0], true
	}
	return channels[(i+1)%len(channels)], true
}

// Previous returns the channel before current, wrapping from the first to
// the last. A nil or unknown current yields the last channel.
func Previous(channels []channel.Channel, current *channel.Channel) (channel.Channel, bool) {
	if len(channels) == 0 {
		return channel.Channel{}, false
	}

	i := indexOf(channels, current)
	if i < 0 {
		return channels[len(channels)-1], true
	}
	return channels[(i-1+len(channels))%len(channels)], true
}

// ByNumber returns the channel carrying number.
func ByNumber(channels []channel.Channel, number int) (channel.Channel, bool) {
	for _, ch := range channels {
		if ch.Number() == number {
			return ch, true
		}
	}
	return channel.Channel{}, false
}

// Initial picks the channel to start with: the one matching the last saved
// number, otherwise the first in list order.
func Initial(channels []channel.Channel, lastSavedNumber int) (channel.Channel, bool) {
	if ch, ok := ByNumber(channels, lastSavedNumber); ok {
		return ch, true
	}
	if len(channels) == 0 {
		return channel.Channel{}, false
	}
	return channels[0], true
}

// indexOf locates current by channel number, -1 when absent.
func indexOf(channels []channel.Channel, current *channel.Channel) int {
	if current == nil {
		return -1
	}
	for i, ch := range channels {
		if ch.Number() == current.Number() {
			return i
		}
	}
	return -1
}
