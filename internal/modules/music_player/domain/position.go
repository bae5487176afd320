package domain

import "time"

// Clock returns the current wall-clock time.
type Clock func() time.Time

// SystemClock is the Clock backed by time.Now.
func SystemClock() time.Time {
	return time.Now()
}

// PlaybackSnapshot records where an explicit seek left the playhead of a track.
// Elapsed time since CapturedAt stops accumulating while the snapshot is
// paused, so the estimate stays put for as long as the player is paused.
type PlaybackSnapshot struct {
	TrackID      TrackID
	SeekPosition time.Duration
	CapturedAt   time.Time

	// pausedAt is non-zero while playback is paused.
	pausedAt time.Time
}

// IsPaused reports whether elapsed-time accumulation is frozen.
func (s *PlaybackSnapshot) IsPaused() bool {
	return !s.pausedAt.IsZero()
}

// Pause freezes elapsed-time accumulation at now. Pausing twice keeps the
// first pause instant.
func (s *PlaybackSnapshot) Pause(now time.Time) {
	if s.IsPaused() {
		return
	}
	s.pausedAt = now
}

// Resume restarts elapsed-time accumulation. The paused interval is folded
// into CapturedAt so it never counts as playback.
func (s *PlaybackSnapshot) Resume(now time.Time) {
	if !s.IsPaused() {
		return
	}
	if paused := now.Sub(s.pausedAt); paused > 0 {
		s.CapturedAt = s.CapturedAt.Add(paused)
	}
	s.pausedAt = time.Time{}
}

// Elapsed returns the playback time accumulated since the snapshot was taken.
func (s *PlaybackSnapshot) Elapsed(now time.Time) time.Duration {
	end := now
	if s.IsPaused() {
		end = s.pausedAt
	}

	elapsed := end.Sub(s.CapturedAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// PositionEstimator derives the current playback offset of the active track
// between position updates from the audio node.
type PositionEstimator struct {
	now Clock
}

// NewPositionEstimator creates a PositionEstimator reading time from clock.
// A nil clock uses the system clock.
func NewPositionEstimator(clock Clock) *PositionEstimator {
	if clock == nil {
		clock = SystemClock
	}
	return &PositionEstimator{now: clock}
}

// Estimate returns the best-effort position of currentTrackID.
//
// A snapshot for the same track wins over lastKnown, which is whatever the
// audio node last reported. The snapshot-based estimate is clamped to
// duration; a non-positive duration means the length is unknown and no
// upper clamp is applied. The result is never negative.
func (e *PositionEstimator) Estimate(
	currentTrackID TrackID,
	duration time.Duration,
	lastKnown time.Duration,
	snapshot *PlaybackSnapshot,
) time.Duration {
	if snapshot == nil || snapshot.TrackID != currentTrackID {
		return max(lastKnown, 0)
	}

	position := max(snapshot.SeekPosition+snapshot.Elapsed(e.now()), 0)
	if duration > 0 {
		position = min(position, duration)
	}
	return position
}

// RecordSeek builds the snapshot for a seek the audio node has confirmed.
// When paused is true the new snapshot starts frozen.
func (e *PositionEstimator) RecordSeek(
	trackID TrackID,
	position time.Duration,
	paused bool,
) *PlaybackSnapshot {
	now := e.now()
	snapshot := &PlaybackSnapshot{
		TrackID:      trackID,
		SeekPosition: max(position, 0),
		CapturedAt:   now,
	}
	if paused {
		snapshot.Pause(now)
	}
	return snapshot
}
