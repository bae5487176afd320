package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int {
	return &n
}

func TestToIndex(t *testing.T) {
	tests := []struct {
		name          string
		position      int
		upcomingCount int
		hasCurrent    bool
		want          int
		wantErr       error
	}{
		{name: "first upcoming track", position: 2, upcomingCount: 3, hasCurrent: true, want: 0},
		{name: "last upcoming track", position: 4, upcomingCount: 3, hasCurrent: true, want: 2},
		{name: "position 1 is the current track", position: 1, upcomingCount: 3, hasCurrent: true, wantErr: ErrOutOfRange},
		{name: "zero position", position: 0, upcomingCount: 3, hasCurrent: true, wantErr: ErrOutOfRange},
		{name: "past the end", position: 5, upcomingCount: 3, hasCurrent: true, wantErr: ErrOutOfRange},
		{name: "empty upcoming list", position: 2, upcomingCount: 0, hasCurrent: true, wantErr: ErrOutOfRange},
		{name: "without current the range shrinks", position: 4, upcomingCount: 3, hasCurrent: false, wantErr: ErrOutOfRange},
		{name: "without current lower positions still map", position: 3, upcomingCount: 3, hasCurrent: false, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToIndex(tt.position, tt.upcomingCount, tt.hasCurrent)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToIndex_IsLeftInverseOfToDisplayPosition(t *testing.T) {
	const upcomingCount = 6

	for position := 2; position <= upcomingCount+1; position++ {
		index, err := ToIndex(position, upcomingCount, true)
		require.NoError(t, err)
		assert.Equal(t, position-2, index)

		back, err := ToIndex(ToDisplayPosition(index, false), upcomingCount, true)
		require.NoError(t, err)
		assert.Equal(t, index, back)
	}
}

func TestToInsertIndex(t *testing.T) {
	tests := []struct {
		name          string
		requested     *int
		upcomingCount int
		queueIsEmpty  bool
		want          int
		wantErr       error
	}{
		{name: "append when no position given", requested: nil, upcomingCount: 5, want: 5},
		{name: "empty queue always inserts at zero", requested: intPtr(2), upcomingCount: 0, queueIsEmpty: true, want: 0},
		{name: "empty queue ignores position 1", requested: intPtr(1), queueIsEmpty: true, want: 0},
		{name: "position 1 is reserved", requested: intPtr(1), upcomingCount: 5, wantErr: ErrInvalidPosition},
		{name: "negative position is rejected", requested: intPtr(-3), upcomingCount: 5, wantErr: ErrInvalidPosition},
		{name: "position 2 inserts next", requested: intPtr(2), upcomingCount: 5, want: 0},
		{name: "position within range", requested: intPtr(4), upcomingCount: 5, want: 2},
		{name: "position right after last", requested: intPtr(6), upcomingCount: 5, want: 4},
		{name: "position past the end appends", requested: intPtr(7), upcomingCount: 5, want: 5},
		{name: "far past the end appends", requested: intPtr(100), upcomingCount: 5, want: 5},
		{name: "no upcoming tracks with position 2", requested: intPtr(2), upcomingCount: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInsertIndex(tt.requested, tt.upcomingCount, tt.queueIsEmpty)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToDisplayPosition(t *testing.T) {
	assert.Equal(t, 1, ToDisplayPosition(0, true))
	assert.Equal(t, 2, ToDisplayPosition(0, false))
	assert.Equal(t, 7, ToDisplayPosition(5, false))
}

func TestQueuePositions_RemoveScenario(t *testing.T) {
	q := NewQueue()
	a, b, c := &Track{ID: "A"}, &Track{ID: "B"}, &Track{ID: "C"}
	q.Append(a, b, c)

	index, err := ToIndex(3, q.UpcomingCount(), q.HasCurrent())
	require.NoError(t, err)
	require.Equal(t, 1, index)

	removed := q.RemoveAt(index)

	assert.Same(t, c, removed)
	assert.Same(t, a, q.Current())
	assert.Equal(t, []*Track{b}, q.Upcoming())
}
