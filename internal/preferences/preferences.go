package preferences

import "errors"

// Defaults applied when nothing has been stored yet.
const (
	DefaultLastChannelNumber = 1
	DefaultAutoPlayOnLaunch  = true
)

var ErrInvalidLastChannel = errors.New("last channel number must be >= 1")

// Preferences are the persisted user settings of the player.
type Preferences struct {
	lastChannelNumber int
	playlistSource    string
	autoPlayOnLaunch  bool
}

// Default returns the preferences of a fresh installation.
func Default() Preferences {
	return Preferences{
		lastChannelNumber: DefaultLastChannelNumber,
		autoPlayOnLaunch:  DefaultAutoPlayOnLaunch,
	}
}

// New validates and builds preferences. An empty playlistSource means no
// playlist has been loaded yet.
func New(lastChannelNumber int, playlistSource string, autoPlayOnLaunch bool) (Preferences, error) {
	if lastChannelNumber < 1 {
		return Preferences{}, ErrInvalidLastChannel
	}
	return Preferences{
		lastChannelNumber: lastChannelNumber,
		playlistSource:    playlistSource,
		autoPlayOnLaunch:  autoPlayOnLaunch,
	}, nil
}

func (p Preferences) LastChannelNumber() int { return p.lastChannelNumber }
func (p Preferences) PlaylistSource() string { return p.playlistSource }
func (p Preferences) AutoPlayOnLaunch() bool { return p.autoPlayOnLaunch }

// HasPlaylist reports whether a playlist source has been remembered.
func (p Preferences) HasPlaylist() bool { return p.playlistSource != "" }
