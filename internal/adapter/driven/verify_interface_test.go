package driven

import (
	port "github.com/alorle/iptv-player/internal/port/driven"
)

var (
	_ port.ChannelRepository     = (*ChannelBoltDBRepository)(nil)
	_ port.ChannelRepository     = (*ChannelPostgresRepository)(nil)
	_ port.ChannelRepository     = (*ChannelMemoryRepository)(nil)
	_ port.PreferencesRepository = (*PreferencesBoltDBRepository)(nil)
	_ port.PreferencesRepository = (*PreferencesPostgresRepository)(nil)
	_ port.PreferencesRepository = (*PreferencesMemoryRepository)(nil)
	_ port.PlaylistSource        = (*PlaylistHTTPSource)(nil)
	_ port.PlaylistSource        = (*PlaylistFileSource)(nil)
	_ port.PlaylistSource        = (*PlaylistSourceRouter)(nil)
	_ port.PlaybackEngine        = (*PlayerHub)(nil)
	_ port.Notifier              = (*PlayerHub)(nil)
)
