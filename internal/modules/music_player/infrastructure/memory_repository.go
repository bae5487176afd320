package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// MemoryRepository keeps one PlayerState per connected guild for the life of
// the process. States are handed out by pointer and never copied.
type MemoryRepository struct {
	mu     sync.RWMutex
	states map[snowflake.ID]*domain.PlayerState
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		states: make(map[snowflake.ID]*domain.PlayerState),
	}
}

// Get implements domain.PlayerStateRepository.
func (r *MemoryRepository) Get(
	_ context.Context,
	guildID snowflake.ID,
) (*domain.PlayerState, error) {
	r.mu.RLock()
	state, ok := r.states[guildID]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("guild %s: %w", guildID, domain.ErrPlayerStateNotFound)
	}
	return state, nil
}

// Save implements domain.PlayerStateRepository. A second Save for the same
// guild replaces the earlier state.
func (r *MemoryRepository) Save(_ context.Context, state *domain.PlayerState) error {
	if state == nil {
		return errors.New("cannot save nil player state")
	}

	r.mu.Lock()
	r.states[state.GuildID()] = state
	r.mu.Unlock()
	return nil
}

// Delete implements domain.PlayerStateRepository. Unknown guilds are ignored.
func (r *MemoryRepository) Delete(_ context.Context, guildID snowflake.ID) error {
	r.mu.Lock()
	delete(r.states, guildID)
	r.mu.Unlock()
	return nil
}

// Stats counts connected guilds and those of them with a track playing.
// It takes each state's lock in turn, so callers must not hold one.
func (r *MemoryRepository) Stats() (connected, playing int) {
	r.mu.RLock()
	states := make([]*domain.PlayerState, 0, len(r.states))
	for _, state := range r.states {
		states = append(states, state)
	}
	r.mu.RUnlock()

	for _, state := range states {
		state.Lock()
		if state.IsPlaybackActive() {
			playing++
		}
		state.Unlock()
	}
	return len(states), playing
}

var _ domain.PlayerStateRepository = (*MemoryRepository)(nil)
