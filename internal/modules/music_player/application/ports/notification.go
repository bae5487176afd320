package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// NotificationSender posts playback updates to a guild's notification
// channel. Message IDs returned here are stored on the player state so later
// updates can edit or remove them.
type NotificationSender interface {
	SendNowPlaying(channelID snowflake.ID, info *NowPlayingInfo) (messageID snowflake.ID, err error)
	// EditNowPlaying turns messageID, a loading reply or an older Now
	// Playing message, into the Now Playing embed for info.
	EditNowPlaying(channelID, messageID snowflake.ID, info *NowPlayingInfo) error

	// HasNewerMessages reports whether messageID is no longer the last
	// message in the channel.
	HasNewerMessages(channelID, messageID snowflake.ID) (bool, error)
	DeleteMessage(channelID, messageID snowflake.ID) error

	SendQueueFinished(channelID snowflake.ID) error
	SendError(channelID snowflake.ID, message string) error
}
