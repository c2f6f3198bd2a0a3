// Package playlist turns Extended M3U text into an ordered channel list and
// writes channel lists back out in the same format.
package playlist

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/alorle/iptv-player/internal/channel"
)

const (
	headerTag    = "#EXTM3U"
	extinfPrefix = "#EXTINF:"
	fallbackName = "Channel"
)

// Structural parse failures. They are wrapped in a *ParseError.
var (
	ErrEmptyFile     = errors.New("Empty file")
	ErrMissingHeader = errors.New("Invalid M3U8 file: missing #EXTM3U header")
	ErrNoChannels    = errors.New("No valid channels found in playlist")
)

var (
	errBlankName = errors.New("blank channel name after last comma")
	errLineFault = errors.New("unexpected fault")
)

// streamPrefixes lists the line prefixes accepted as channel stream URLs.
// Playback applies a stricter allow-list later on.
var streamPrefixes = []string{"http://", "https://", "rtsp://", "rtmp://"}

// ParseError reports why a playlist could not be parsed as a whole.
// Line is the 1-based line of the input the failure points at, or 0.
type ParseError struct {
	Err  error
	Line int
}

func (e *ParseError) Error() string {
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Skip describes an entry that was dropped while parsing.
type Skip struct {
	Line   int
	Reason string
}

// Result is a successfully parsed playlist.
type Result struct {
	Channels     []channel.Channel
	SkippedLines int
	Skips        []Skip
}

// Parse parses Extended M3U content.
//
// Channels are numbered 1..N in the order they are accepted; numbers found
// in the playlist are ignored. Individual broken entries are skipped and
// counted; only an empty input, a missing header or a playlist without any
// channel fail the whole parse, always with a *ParseError.
func Parse(content string) (Result, error) {
	lines := splitLines(strings.TrimPrefix(content, "\uFEFF"))
	if len(lines) == 0 {
		return Result{}, &ParseError{Err: ErrEmptyFile}
	}

	if !strings.HasPrefix(lines[0].text, headerTag) {
		return Result{}, &ParseError{Err: ErrMissingHeader, Line: lines[0].number}
	}

	var st state
	for _, l := range lines {
		if err := st.consume(l); err != nil {
			st.skip(l.number, err)
		}
	}

	if len(st.channels) == 0 {
		return Result{}, &ParseError{Err: ErrNoChannels}
	}

	return Result{
		Channels:     st.channels,
		SkippedLines: len(st.skips),
		Skips:        st.skips,
	}, nil
}

type line struct {
	number int
	text   string
}

// splitLines returns the trimmed, non-blank lines of content together with
// their 1-based position. \n, \r\n and bare \r all end a line.
// HasHeader reports whether the first non-blank line of content carries the
// #EXTM3U header, ignoring a UTF-8 BOM. It is the check Parse starts with.
func HasHeader(content string) bool {
	content = strings.TrimLeftFunc(strings.TrimPrefix(content, "\uFEFF"), unicode.IsSpace)
	return strings.HasPrefix(content, headerTag)
}

func splitLines(content string) []line {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var out []line
	for i, raw := range strings.Split(content, "\n") {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		out = append(out, line{number: i + 1, text: text})
	}
	return out
}

// state is the accumulator of the line walk: the pending #EXTINF line (the
// only look-behind needed), the channels emitted so far and the skips.
type state struct {
	pending  string
	channels []channel.Channel
	skips    []Skip
}

func (s *state) skip(lineNumber int, err error) {
	s.pending = ""
	s.skips = append(s.skips, Skip{Line: lineNumber, Reason: err.Error()})
}

func (s *state) consume(l line) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errLineFault, r)
		}
	}()

	text := l.text
	switch {
	case strings.HasPrefix(text, headerTag):
		return nil
	case strings.HasPrefix(text, extinfPrefix):
		// An unconsumed previous #EXTINF is dropped without a trace.
		s.pending = text
		return nil
	case strings.HasPrefix(text, "#"):
		return nil
	case isStreamURL(text):
		extinf := s.pending
		s.pending = ""
		return s.emit(extinf, text)
	default:
		return nil
	}
}

func (s *state) emit(extinf, streamURL string) error {
	number := len(s.channels) + 1

	var (
		ch  channel.Channel
		err error
	)
	if extinf == "" {
		ch, err = channel.New(number, nameFromURL(streamURL), streamURL, "", "")
	} else {
		name := DisplayName(extinf)
		if name == "" {
			return errBlankName
		}
		ch, err = channel.New(number, name, streamURL, GroupTitle(extinf), TvgLogo(extinf))
	}
	if err != nil {
		return err
	}

	s.channels = append(s.channels, ch)
	return nil
}

func isStreamURL(text string) bool {
	for _, prefix := range streamPrefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

// nameFromURL derives a display name for a bare URL entry: the last path
// segment without query string and extension.
func nameFromURL(streamURL string) string {
	name := streamURL
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "?"); i >= 0 {
		name = name[:i]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[:i]
	}
	if strings.TrimSpace(name) == "" {
		return fallbackName
	}
	return name
}
