package navigation

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alorle/iptv-player/internal/channel"
)

// MaxDigits is the longest channel number that can be typed.
const MaxDigits = 3

// ErrNoDigits is returned by Confirm when nothing has been typed.
var ErrNoDigits = errors.New("no digits entered")

// OutOfRangeError reports a typed number outside 1..max.
type OutOfRangeError struct {
	Number int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("Channel %d does not exist", e.Number)
}

// DigitEntry buffers the digits of a channel number typed on a remote.
// The zero value is an empty buffer. It is not safe for concurrent use.
type DigitEntry struct {
	digits string
}

// Append adds one decimal digit. Non-digits are rejected, a leading zero is
// ignored and digits past the third are dropped. It reports whether the
// input was accepted, which callers use to reset their idle timer.
func (e *DigitEntry) Append(digit string) bool {
	if len(digit) != 1 || digit[0] < '0' || digit[0] > '9' {
		return false
	}
	if digit == "0" && e.digits == "" {
		return false
	}
	if len(e.digits) >= MaxDigits {
		return false
	}
	e.digits += digit
	return true
}

// Backspace removes the last digit, reporting whether there was one.
func (e *DigitEntry) Backspace() bool {
	if e.digits == "" {
		return false
	}
	e.digits = e.digits[:len(e.digits)-1]
	return true
}

// Clear empties the buffer.
func (e *DigitEntry) Clear() {
	e.digits = ""
}

// Input returns the digits typed so far.
func (e *DigitEntry) Input() string {
	return e.digits
}

// Empty reports whether no digit has been typed.
func (e *DigitEntry) Empty() bool {
	return e.digits == ""
}

// Confirm resolves the typed number against channels.
//
// A number outside 1..maxNumber yields an *OutOfRangeError and clears the
// buffer. A number in range that no channel carries yields
// channel.ErrChannelNotFound and keeps the buffer so it can be corrected.
func (e *DigitEntry) Confirm(channels []channel.Channel, maxNumber int) (channel.Channel, error) {
	if e.digits == "" {
		return channel.Channel{}, ErrNoDigits
	}

	// At most three digits without a leading zero, so Atoi cannot fail.
	number, _ := strconv.Atoi(e.digits)
	if number < 1 || number > maxNumber {
		e.Clear()
		return channel.Channel{}, &OutOfRangeError{Number: number}
	}

	ch, ok := ByNumber(channels, number)
	if !ok {
		return channel.Channel{}, channel.ErrChannelNotFound
	}

	e.Clear()
	return ch, nil
}
