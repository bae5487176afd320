package domain

// TrackSource represents the origin platform of a track.
type TrackSource string

const (
	TrackSourceYouTube    TrackSource = "youtube"
	TrackSourceSpotify    TrackSource = "spotify"
	TrackSourceSoundCloud TrackSource = "soundcloud"
	TrackSourceTwitch     TrackSource = "twitch"
	TrackSourceHTTP       TrackSource = "http"
	TrackSourceOther      TrackSource = "other"
)

// ParseTrackSource converts a source name string to a TrackSource.
func ParseTrackSource(name string) TrackSource {
	switch name {
	case "youtube":
		return TrackSourceYouTube
	case "spotify":
		return TrackSourceSpotify
	case "soundcloud":
		return TrackSourceSoundCloud
	case "twitch":
		return TrackSourceTwitch
	case "http", "local":
		return TrackSourceHTTP
	default:
		return TrackSourceOther
	}
}

// DisplayName returns the platform name shown in embeds.
func (s TrackSource) DisplayName() string {
	switch s {
	case TrackSourceYouTube:
		return "YouTube"
	case TrackSourceSpotify:
		return "Spotify"
	case TrackSourceSoundCloud:
		return "SoundCloud"
	case TrackSourceTwitch:
		return "Twitch"
	case TrackSourceHTTP:
		return "File"
	default:
		return "Other"
	}
}

// IconURL returns the platform favicon used as the embed author icon.
func (s TrackSource) IconURL() string {
	switch s {
	case TrackSourceYouTube:
		return "https://www.youtube.com/favicon.ico"
	case TrackSourceSpotify:
		return "https://open.spotify.com/favicon.ico"
	case TrackSourceSoundCloud:
		return "https://soundcloud.com/favicon.ico"
	case TrackSourceTwitch:
		return "https://www.twitch.tv/favicon.ico"
	default:
		return ""
	}
}

// Color returns the platform brand color, or 0 when the embed color should be used.
func (s TrackSource) Color() int {
	switch s {
	case TrackSourceYouTube:
		return 0xFF0000
	case TrackSourceSpotify:
		return 0x1DB954
	case TrackSourceSoundCloud:
		return 0xFF5500
	case TrackSourceTwitch:
		return 0x9146FF
	default:
		return 0
	}
}
