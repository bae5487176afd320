package domain

import "math/rand/v2"

// Queue holds the track that is playing now and the ordered tracks after it.
// The current slot is empty only when nothing is queued at all.
type Queue struct {
	current  *Track
	upcoming []*Track
}

// NewQueue creates a new empty Queue.
func NewQueue() Queue {
	return Queue{
		upcoming: make([]*Track, 0),
	}
}

// IsEmpty returns true if there is neither a current nor an upcoming track.
func (q *Queue) IsEmpty() bool {
	return q.current == nil && len(q.upcoming) == 0
}

// Len returns the number of tracks including the current one.
func (q *Queue) Len() int {
	n := len(q.upcoming)
	if q.current != nil {
		n++
	}
	return n
}

// Current returns the track at position 1, or nil.
func (q *Queue) Current() *Track {
	return q.current
}

// HasCurrent reports whether a track occupies position 1.
func (q *Queue) HasCurrent() bool {
	return q.current != nil
}

// UpcomingCount returns the number of tracks after the current one.
func (q *Queue) UpcomingCount() int {
	return len(q.upcoming)
}

// Upcoming returns a copy of the tracks after the current one.
func (q *Queue) Upcoming() []*Track {
	result := make([]*Track, len(q.upcoming))
	copy(result, q.upcoming)
	return result
}

// UpcomingAt returns the upcoming track at index, or nil if out of bounds.
func (q *Queue) UpcomingAt(index int) *Track {
	if index < 0 || index >= len(q.upcoming) {
		return nil
	}
	return q.upcoming[index]
}

// List returns the current track followed by the upcoming tracks.
func (q *Queue) List() []*Track {
	result := make([]*Track, 0, q.Len())
	if q.current != nil {
		result = append(result, q.current)
	}
	return append(result, q.upcoming...)
}

// Insert places tracks into the upcoming list starting at index, which is
// clamped to [0, UpcomingCount]. If there is no current track the first
// track fills that slot instead. Returns true if the queue was empty.
func (q *Queue) Insert(index int, tracks ...*Track) bool {
	if len(tracks) == 0 {
		return q.IsEmpty()
	}

	wasEmpty := q.IsEmpty()
	if q.current == nil {
		q.current = tracks[0]
		tracks = tracks[1:]
	}

	index = min(max(index, 0), len(q.upcoming))
	q.upcoming = append(q.upcoming[:index], append(append([]*Track{}, tracks...), q.upcoming[index:]...)...)

	return wasEmpty
}

// Append adds tracks after the last upcoming track.
func (q *Queue) Append(tracks ...*Track) bool {
	return q.Insert(len(q.upcoming), tracks...)
}

// RemoveAt removes and returns the upcoming track at index, or nil if out of bounds.
func (q *Queue) RemoveAt(index int) *Track {
	if index < 0 || index >= len(q.upcoming) {
		return nil
	}

	track := q.upcoming[index]
	q.upcoming = append(q.upcoming[:index], q.upcoming[index+1:]...)
	return track
}

// Move relocates the upcoming track at from so that it ends up at index to.
// Returns false if either index is out of bounds.
func (q *Queue) Move(from, to int) bool {
	n := len(q.upcoming)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	if from == to {
		return true
	}

	track := q.upcoming[from]
	q.upcoming = append(q.upcoming[:from], q.upcoming[from+1:]...)
	q.upcoming = append(q.upcoming[:to], append([]*Track{track}, q.upcoming[to:]...)...)
	return true
}

// Shuffle randomizes the order of the upcoming tracks. The current track stays put.
func (q *Queue) Shuffle() {
	rand.Shuffle(len(q.upcoming), func(i, j int) {
		q.upcoming[i], q.upcoming[j] = q.upcoming[j], q.upcoming[i]
	})
}

// Advance finishes the current track according to mode and returns the new
// current track, or nil when the queue ran out.
//   - LoopModeTrack: the current track stays.
//   - LoopModeQueue: the finished track is re-appended to the end.
//   - LoopModeNone: the finished track is dropped.
func (q *Queue) Advance(mode LoopMode) *Track {
	if q.current == nil {
		return nil
	}

	switch mode {
	case LoopModeTrack:
		return q.current
	case LoopModeQueue:
		q.upcoming = append(q.upcoming, q.current)
	}

	q.current = nil
	if len(q.upcoming) > 0 {
		q.current = q.upcoming[0]
		q.upcoming = q.upcoming[1:]
	}
	return q.current
}

// Skip drops the current track and the next count-1 upcoming tracks, then
// promotes the following track. Loop mode is ignored. Returns the dropped tracks.
func (q *Queue) Skip(count int) []*Track {
	if q.current == nil || count <= 0 {
		return nil
	}

	dropped := []*Track{q.current}
	drop := min(count-1, len(q.upcoming))
	dropped = append(dropped, q.upcoming[:drop]...)
	q.upcoming = q.upcoming[drop:]

	q.current = nil
	if len(q.upcoming) > 0 {
		q.current = q.upcoming[0]
		q.upcoming = q.upcoming[1:]
	}
	return dropped
}

// DropCurrent removes the current track without looping it and promotes the
// next one. Used when a track failed to play.
func (q *Queue) DropCurrent() *Track {
	return q.Advance(LoopModeNone)
}

// ClearUpcoming removes every upcoming track and returns them.
func (q *Queue) ClearUpcoming() []*Track {
	removed := q.upcoming
	q.upcoming = make([]*Track, 0)
	return removed
}

// Clear removes every track, the current one included, and returns them.
func (q *Queue) Clear() []*Track {
	removed := q.List()
	q.current = nil
	q.upcoming = make([]*Track, 0)
	return removed
}

// Contains reports whether track is still referenced by the queue.
func (q *Queue) Contains(track *Track) bool {
	if track == nil {
		return false
	}
	if q.current == track {
		return true
	}
	for _, t := range q.upcoming {
		if t == track {
			return true
		}
	}
	return false
}
