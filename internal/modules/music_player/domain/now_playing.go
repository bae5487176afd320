package domain

import "github.com/disgoorg/snowflake/v2"

// NowPlayingMessage stores the channel and message ID for a "Now Playing" message.
// Both values are needed for deletion since the message may be in a different channel
// than the current notification channel if the user switched channels while playing.
type NowPlayingMessage struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
}

func NewNowPlayingMessage(channelID snowflake.ID, messageID snowflake.ID) NowPlayingMessage {
	return NowPlayingMessage{
		ChannelID: channelID,
		MessageID: messageID,
	}
}

// NowPlayingAction is what to do with the channel when a new track starts.
type NowPlayingAction int

const (
	// NowPlayingSend posts a fresh message; there is nothing to reuse.
	NowPlayingSend NowPlayingAction = iota
	// NowPlayingEdit rewrites the existing message in place.
	NowPlayingEdit
	// NowPlayingReplace deletes the existing message and posts a fresh one.
	NowPlayingReplace
)

// DecideNowPlayingAction picks between editing and replacing an existing
// message. A message is only edited while it is still the newest one in its
// channel; otherwise it would be buried above the conversation.
func DecideNowPlayingAction(existing *NowPlayingMessage, hasNewerMessages bool) NowPlayingAction {
	switch {
	case existing == nil:
		return NowPlayingSend
	case hasNewerMessages:
		return NowPlayingReplace
	default:
		return NowPlayingEdit
	}
}
