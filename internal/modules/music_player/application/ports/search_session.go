package ports

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// SearchSession holds the results of a /search waiting for the user's pick.
type SearchSession struct {
	GuildID   snowflake.ID
	UserID    snowflake.ID
	Tracks    []*domain.Track
	CreatedAt time.Time
}

// SearchSessionStore keeps at most one pending search per user.
// Sessions expire on their own after the store's TTL.
type SearchSessionStore interface {
	Get(userID snowflake.ID) (*SearchSession, bool)
	Put(session *SearchSession)
	Delete(userID snowflake.ID) bool
}
