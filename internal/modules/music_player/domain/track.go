package domain

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// TrackID is the audio node's identifier for a track.
// Two queue entries of the same song share a TrackID.
type TrackID string

// Track represents a playable audio track.
type Track struct {
	ID                 TrackID
	Encoded            string // Lavalink encoded track data
	Title              string
	Artist             string
	Duration           time.Duration
	URI                string
	ArtworkURL         string
	SourceName         string // e.g., "youtube", "spotify", "soundcloud", "http"
	IsStream           bool
	IsSeekable         bool
	RequesterID        snowflake.ID // Discord user who added the track
	RequesterName      string       // Display name of the requester
	RequesterAvatarURL string       // Avatar URL of the requester
	EnqueuedAt         time.Time

	// LocalFile is the name of a downloaded copy served by the local audio
	// server, empty for tracks streamed straight from their source.
	LocalFile string
}

// TrackMetadata is the part of a Track resolved by the audio node.
type TrackMetadata struct {
	ID         TrackID
	Encoded    string
	Title      string
	Artist     string
	Duration   time.Duration
	URI        string
	ArtworkURL string
	SourceName string
	IsStream   bool
	IsSeekable bool
}

// Requester identifies the Discord user who enqueued a track.
type Requester struct {
	ID        snowflake.ID
	Name      string
	AvatarURL string
}

// NewTrack creates a Track from resolved metadata and the user who requested it.
func NewTrack(meta TrackMetadata, requester Requester) *Track {
	return &Track{
		ID:                 meta.ID,
		Encoded:            meta.Encoded,
		Title:              meta.Title,
		Artist:             meta.Artist,
		Duration:           meta.Duration,
		URI:                meta.URI,
		ArtworkURL:         meta.ArtworkURL,
		SourceName:         meta.SourceName,
		IsStream:           meta.IsStream,
		IsSeekable:         meta.IsSeekable,
		RequesterID:        requester.ID,
		RequesterName:      requester.Name,
		RequesterAvatarURL: requester.AvatarURL,
		EnqueuedAt:         time.Now().UTC(),
	}
}

// Source returns the parsed TrackSource for this track.
func (t *Track) Source() TrackSource {
	return ParseTrackSource(t.SourceName)
}

// CanSeek reports whether the audio node accepts seek requests for this track.
func (t *Track) CanSeek() bool {
	return t.IsSeekable && !t.IsStream
}

// FormattedDuration returns the duration as mm:ss or hh:mm:ss, or LIVE for streams.
func (t *Track) FormattedDuration() string {
	if t.IsStream {
		return "LIVE"
	}
	return FormatDuration(t.Duration)
}
