package ports

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// AudioPlayer defines the interface for audio playback operations.
type AudioPlayer interface {
	// Play starts playback of the given track, replacing whatever is playing
	// and clearing a paused player.
	Play(ctx context.Context, guildID snowflake.ID, track *domain.Track) error

	// Stop stops the current playback.
	Stop(ctx context.Context, guildID snowflake.ID) error

	// Pause pauses the current playback.
	Pause(ctx context.Context, guildID snowflake.ID) error

	// Resume resumes the paused playback.
	Resume(ctx context.Context, guildID snowflake.ID) error

	// Seek moves the playhead of the current track.
	Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error

	// Position returns the last position reported by the audio node,
	// or a negative duration when it is unknown.
	Position(guildID snowflake.ID) time.Duration
}
