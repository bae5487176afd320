package domain

import (
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// PlayerState is everything the bot tracks for one guild's player.
//
// Interaction handlers and audio node events touch the same state from
// different goroutines. Callers hold Lock for the whole read-modify-write of
// an operation; the accessors themselves do not lock.
type PlayerState struct {
	mu sync.Mutex

	guildID        snowflake.ID
	voiceChannelID snowflake.ID
	// notificationChannelID is where Now Playing and queue messages go.
	notificationChannelID snowflake.ID

	nowPlayingMessage *NowPlayingMessage
	// loadingMessage is the /play reply waiting to become Now Playing.
	loadingMessage *NowPlayingMessage

	Queue Queue

	// playing is true while the audio node holds a track, paused or not.
	playing  bool
	paused   bool
	loopMode LoopMode
	snapshot *PlaybackSnapshot
}

// NewPlayerState creates an idle player with an empty queue.
func NewPlayerState(guildID, voiceChannelID, notificationChannelID snowflake.ID) *PlayerState {
	return &PlayerState{
		guildID:               guildID,
		voiceChannelID:        voiceChannelID,
		notificationChannelID: notificationChannelID,
		Queue:                 NewQueue(),
	}
}

// Lock acquires exclusive access to the player state.
func (p *PlayerState) Lock() {
	p.mu.Lock()
}

// Unlock releases the lock acquired by Lock.
func (p *PlayerState) Unlock() {
	p.mu.Unlock()
}

// GuildID returns the guild this player belongs to.
func (p *PlayerState) GuildID() snowflake.ID {
	return p.guildID
}

// VoiceChannelID returns the voice channel the bot is connected to.
func (p *PlayerState) VoiceChannelID() snowflake.ID {
	return p.voiceChannelID
}

// SetVoiceChannelID updates the voice channel the bot is connected to.
func (p *PlayerState) SetVoiceChannelID(channelID snowflake.ID) {
	p.voiceChannelID = channelID
}

// NotificationChannelID returns the text channel notifications are sent to.
func (p *PlayerState) NotificationChannelID() snowflake.ID {
	return p.notificationChannelID
}

// SetNotificationChannelID updates the text channel notifications are sent to.
func (p *PlayerState) SetNotificationChannelID(channelID snowflake.ID) {
	p.notificationChannelID = channelID
}

// IsPlaybackActive reports whether the audio node holds a track for the guild.
func (p *PlayerState) IsPlaybackActive() bool {
	return p.playing
}

// SetPlaybackActive records whether the node holds a track. Going inactive
// also clears the paused flag.
func (p *PlayerState) SetPlaybackActive(active bool) {
	p.playing = active
	if !active {
		p.paused = false
	}
}

// IsIdle reports whether nothing is playing.
func (p *PlayerState) IsIdle() bool {
	return !p.playing
}

// IsPaused returns true if playback is paused.
func (p *PlayerState) IsPaused() bool {
	return p.paused
}

// SetPaused records the paused flag and freezes or restarts the snapshot clock.
func (p *PlayerState) SetPaused(paused bool, now time.Time) {
	p.paused = paused
	if p.snapshot == nil {
		return
	}
	if paused {
		p.snapshot.Pause(now)
	} else {
		p.snapshot.Resume(now)
	}
}

// CurrentTrack returns the track at position 1, or nil.
func (p *PlayerState) CurrentTrack() *Track {
	return p.Queue.Current()
}

// LoopMode returns the current loop mode.
func (p *PlayerState) LoopMode() LoopMode {
	return p.loopMode
}

// SetLoopMode sets the loop mode.
func (p *PlayerState) SetLoopMode(mode LoopMode) {
	p.loopMode = mode
}

// Snapshot returns the playback snapshot, or nil when none is recorded.
func (p *PlayerState) Snapshot() *PlaybackSnapshot {
	return p.snapshot
}

// SetSnapshot replaces the playback snapshot.
func (p *PlayerState) SetSnapshot(snapshot *PlaybackSnapshot) {
	p.snapshot = snapshot
}

// ClearSnapshot drops the playback snapshot. Called whenever the current
// track changes for any reason other than a seek.
func (p *PlayerState) ClearSnapshot() {
	p.snapshot = nil
}

// NowPlayingMessage returns a copy of the Now Playing message reference.
func (p *PlayerState) NowPlayingMessage() *NowPlayingMessage {
	return copyMessage(p.nowPlayingMessage)
}

// SetNowPlayingMessage stores the Now Playing message reference.
func (p *PlayerState) SetNowPlayingMessage(msg *NowPlayingMessage) {
	p.nowPlayingMessage = msg
}

// ClearNowPlayingMessage clears the Now Playing message reference.
func (p *PlayerState) ClearNowPlayingMessage() {
	p.nowPlayingMessage = nil
}

// LoadingMessage returns a copy of the pending loading reply, if any.
func (p *PlayerState) LoadingMessage() *NowPlayingMessage {
	return copyMessage(p.loadingMessage)
}

// SetLoadingMessage stores the reply that should turn into "Now Playing".
func (p *PlayerState) SetLoadingMessage(msg *NowPlayingMessage) {
	p.loadingMessage = msg
}

// ClearLoadingMessage clears the pending loading message info.
func (p *PlayerState) ClearLoadingMessage() {
	p.loadingMessage = nil
}

func copyMessage(msg *NowPlayingMessage) *NowPlayingMessage {
	if msg == nil {
		return nil
	}
	c := *msg
	return &c
}
