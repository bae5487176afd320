package domain

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// PlayerStateRepository defines the interface for storing and retrieving player states.
// States are shared by pointer; mutate them only while holding PlayerState.Lock.
type PlayerStateRepository interface {
	// Get returns the guild's PlayerState, or an error wrapping
	// ErrPlayerStateNotFound when the bot is not connected there.
	Get(ctx context.Context, guildID snowflake.ID) (*PlayerState, error)

	// Save stores the PlayerState.
	Save(ctx context.Context, state *PlayerState) error

	// Delete removes the PlayerState for the given guild.
	Delete(ctx context.Context, guildID snowflake.ID) error
}
