package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// Event is implemented by every event published on the event bus.
type Event interface {
	Guild() snowflake.ID
}

// TrackEndReason represents why a track ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track finished normally.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the track failed to load or threw while playing.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStuck means the audio node stopped receiving frames for the track.
	TrackEndStuck TrackEndReason = "stuck"
	// TrackEndStopped means the track was stopped by the user.
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means the track was replaced by another.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the track was cleaned up.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue returns true if this end reason should advance the queue.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished || r == TrackEndLoadFailed || r == TrackEndStuck
}

// IsFailure returns true if the track could not be played to the end.
func (r TrackEndReason) IsFailure() bool {
	return r == TrackEndLoadFailed || r == TrackEndStuck
}

// TrackEnqueuedEvent is published when tracks are added to the queue.
type TrackEnqueuedEvent struct {
	GuildID snowflake.ID
	Count   int
	WasIdle bool // true if no track was playing when the tracks were enqueued
}

func (e TrackEnqueuedEvent) Guild() snowflake.ID { return e.GuildID }

// CurrentTrackChangedEvent is published after playback of a new current
// track was started, including a looped track starting over.
type CurrentTrackChangedEvent struct {
	GuildID snowflake.ID
}

// NewCurrentTrackChangedEvent creates a CurrentTrackChangedEvent.
func NewCurrentTrackChangedEvent(guildID snowflake.ID) CurrentTrackChangedEvent {
	return CurrentTrackChangedEvent{GuildID: guildID}
}

func (e CurrentTrackChangedEvent) Guild() snowflake.ID { return e.GuildID }

// TrackEndedEvent is published when the audio node reports the end of a track.
type TrackEndedEvent struct {
	GuildID snowflake.ID
	TrackID TrackID
	Title   string
	Reason  TrackEndReason
	Message string // node-provided cause for failures
}

func (e TrackEndedEvent) Guild() snowflake.ID { return e.GuildID }

// QueueFinishedEvent is published when the last track ended and nothing is left to play.
type QueueFinishedEvent struct {
	GuildID snowflake.ID
}

func (e QueueFinishedEvent) Guild() snowflake.ID { return e.GuildID }

// PlaybackStoppedEvent is published when playback stops on request, or the
// bot leaves voice. It carries the "Now Playing" message since the player
// state may already be gone when the event is handled.
type PlaybackStoppedEvent struct {
	GuildID    snowflake.ID
	NowPlaying *NowPlayingMessage
}

func (e PlaybackStoppedEvent) Guild() snowflake.ID { return e.GuildID }
