package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// UserInfo is how a requester is shown on Now Playing embeds.
type UserInfo struct {
	DisplayName string // guild nickname, falling back to the global name
	AvatarURL   string
}

// UserInfoProvider looks up requesters. Results may be cached for a while,
// so a fresh nickname can take some minutes to show up.
type UserInfoProvider interface {
	GetUserInfo(guildID, userID snowflake.ID) (*UserInfo, error)
}
