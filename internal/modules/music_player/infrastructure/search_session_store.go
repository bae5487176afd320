package infrastructure

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
)

const (
	// DefaultSearchSessionTTL is how long /search results wait for a pick.
	DefaultSearchSessionTTL = 30 * time.Second

	searchSessionCapacity = 1024
)

// SearchSessionStore keeps pending /search selections in an expiring LRU,
// one per user.
type SearchSessionStore struct {
	sessions *expirable.LRU[snowflake.ID, *ports.SearchSession]
}

// NewSearchSessionStore creates a store whose sessions expire after ttl.
func NewSearchSessionStore(ttl time.Duration) *SearchSessionStore {
	if ttl <= 0 {
		ttl = DefaultSearchSessionTTL
	}
	return &SearchSessionStore{
		sessions: expirable.NewLRU[snowflake.ID, *ports.SearchSession](searchSessionCapacity, nil, ttl),
	}
}

// Get returns the user's pending search, if it has not expired.
func (s *SearchSessionStore) Get(userID snowflake.ID) (*ports.SearchSession, bool) {
	return s.sessions.Get(userID)
}

// Put stores a session, replacing the user's previous one.
func (s *SearchSessionStore) Put(session *ports.SearchSession) {
	s.sessions.Add(session.UserID, session)
}

// Delete drops the user's session and reports whether one was pending.
func (s *SearchSessionStore) Delete(userID snowflake.ID) bool {
	return s.sessions.Remove(userID)
}

// Ensure SearchSessionStore implements ports.SearchSessionStore.
var _ ports.SearchSessionStore = (*SearchSessionStore)(nil)
