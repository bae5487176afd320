package domain

// Queue positions are what users see: position 1 is the track playing now and
// positions 2..N are the upcoming tracks in order. Indices are 0-based offsets
// into the upcoming list, so index = position - 2.

// firstUpcomingPosition is the queue position of the first upcoming track.
const firstUpcomingPosition = 2

// ToIndex converts the queue position of an existing upcoming track into an
// index into the upcoming list. Valid positions are
// [2, (hasCurrent ? 1 : 0) + upcomingCount].
func ToIndex(position, upcomingCount int, hasCurrent bool) (int, error) {
	maxPosition := upcomingCount
	if hasCurrent {
		maxPosition++
	}

	if position < firstUpcomingPosition || position > maxPosition {
		return 0, ErrOutOfRange
	}

	return position - firstUpcomingPosition, nil
}

// ToInsertIndex converts a requested queue position for a new track into an
// insertion index into the upcoming list. A nil position appends. When the
// queue is empty the new track becomes current, so the result is always 0.
func ToInsertIndex(requested *int, upcomingCount int, queueIsEmpty bool) (int, error) {
	if queueIsEmpty {
		return 0, nil
	}

	if requested == nil {
		return upcomingCount, nil
	}

	position := *requested
	if position < firstUpcomingPosition {
		return 0, ErrInvalidPosition
	}

	if position > upcomingCount+1 {
		return upcomingCount, nil
	}

	return min(max(position-firstUpcomingPosition, 0), upcomingCount), nil
}

// ToDisplayPosition converts an insertion index back into the queue position
// shown in confirmations. A track inserted into an empty queue plays at once
// and so occupies position 1.
func ToDisplayPosition(index int, queueWasEmpty bool) int {
	if queueWasEmpty {
		return index + 1
	}
	return index + firstUpcomingPosition
}
