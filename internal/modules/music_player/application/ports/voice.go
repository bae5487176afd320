package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// VoiceConnection moves the bot in and out of voice channels.
type VoiceConnection interface {
	// JoinChannel returns once the audio node has the voice session for the
	// channel, or ctx ends.
	JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error

	LeaveChannel(ctx context.Context, guildID snowflake.ID) error
}

// VoiceStateProvider reads where users currently are.
type VoiceStateProvider interface {
	// GetUserVoiceChannel returns 0 when the user is not in a voice channel.
	GetUserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error)
}
