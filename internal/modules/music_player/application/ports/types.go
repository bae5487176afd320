package ports

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// LoadResult is the audio node's answer to a load request, normalised so that
// callers never look at the node's own result shapes.
type LoadResult struct {
	Type         LoadType
	Tracks       []*TrackInfo // one entry for single tracks, every entry for playlists and searches
	PlaylistName string       // set for LoadTypePlaylist
	Error        string       // set for LoadTypeError
}

// IsEmpty reports whether the result holds no playable tracks.
func (r *LoadResult) IsEmpty() bool {
	return r == nil || r.Type == LoadTypeEmpty || r.Type == LoadTypeError || len(r.Tracks) == 0
}

// LoadType represents the type of load result.
type LoadType string

const (
	LoadTypeTrack    LoadType = "track"
	LoadTypePlaylist LoadType = "playlist"
	LoadTypeSearch   LoadType = "search"
	LoadTypeEmpty    LoadType = "empty"
	LoadTypeError    LoadType = "error"
)

// TrackInfo contains information about a loaded track.
type TrackInfo struct {
	Identifier string // Unique identifier from Lavalink
	Encoded    string
	Title      string
	Artist     string
	Duration   time.Duration
	URI        string
	ArtworkURL string
	SourceName string // e.g., "youtube", "spotify", "soundcloud"
	IsStream   bool
	IsSeekable bool
}

// Metadata converts the loaded track into the domain representation.
func (t *TrackInfo) Metadata() domain.TrackMetadata {
	return domain.TrackMetadata{
		ID:         domain.TrackID(t.Identifier),
		Encoded:    t.Encoded,
		Title:      t.Title,
		Artist:     t.Artist,
		Duration:   t.Duration,
		URI:        t.URI,
		ArtworkURL: t.ArtworkURL,
		SourceName: t.SourceName,
		IsStream:   t.IsStream,
		IsSeekable: t.IsSeekable,
	}
}

// NowPlayingInfo contains information for the "Now Playing" notification.
type NowPlayingInfo struct {
	Identifier         string // Unique identifier (e.g., YouTube video ID)
	Title              string
	Artist             string
	Duration           string
	URI                string
	ArtworkURL         string
	SourceName         string // e.g., "youtube", "spotify", "soundcloud"
	IsStream           bool
	Looping            bool
	UpcomingCount      int
	RequesterID        snowflake.ID
	RequesterName      string
	RequesterAvatarURL string
	EnqueuedAt         time.Time
}

// NewNowPlayingInfo builds the notification payload for a track.
func NewNowPlayingInfo(track *domain.Track, loopMode domain.LoopMode, upcomingCount int) *NowPlayingInfo {
	return &NowPlayingInfo{
		Identifier:         string(track.ID),
		Title:              track.Title,
		Artist:             track.Artist,
		Duration:           track.FormattedDuration(),
		URI:                track.URI,
		ArtworkURL:         track.ArtworkURL,
		SourceName:         track.SourceName,
		IsStream:           track.IsStream,
		Looping:            loopMode == domain.LoopModeTrack,
		UpcomingCount:      upcomingCount,
		RequesterID:        track.RequesterID,
		RequesterName:      track.RequesterName,
		RequesterAvatarURL: track.RequesterAvatarURL,
		EnqueuedAt:         track.EnqueuedAt,
	}
}
