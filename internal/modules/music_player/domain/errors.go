package domain

import "errors"

var (
	// ErrOutOfRange is returned when a queue position falls outside the positions
	// that currently hold an upcoming track.
	ErrOutOfRange = errors.New("queue position out of range")

	// ErrInvalidPosition is returned when a track is inserted at position 1 of a
	// non-empty queue. Position 1 always belongs to the track that is playing.
	ErrInvalidPosition = errors.New("position 1 is reserved for the current track")

	// ErrPlayerStateNotFound is returned by repositories for guilds without a player.
	ErrPlayerStateNotFound = errors.New("player state not found")
)
