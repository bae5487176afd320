package infrastructure

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
)

const (
	userInfoCacheSize = 256
	userInfoCacheTTL  = 10 * time.Minute
)

// Ensure DiscordUserInfoProvider implements ports.UserInfoProvider.
var (
	_ ports.UserInfoProvider = (*DiscordUserInfoProvider)(nil)
)

type memberKey struct {
	guildID snowflake.ID
	userID  snowflake.ID
}

// DiscordUserInfoProvider implements ports.UserInfoProvider using a Discord session.
// Lookups go to the gateway state first, then to the REST API, and results are
// cached for a few minutes since every enqueued track asks for its requester.
type DiscordUserInfoProvider struct {
	fetch func(guildID, userID string) (*discordgo.Member, error)
	cache *expirable.LRU[memberKey, *ports.UserInfo]
}

// NewDiscordUserInfoProvider creates a new DiscordUserInfoProvider.
func NewDiscordUserInfoProvider(session *discordgo.Session) *DiscordUserInfoProvider {
	return newDiscordUserInfoProvider(func(guildID, userID string) (*discordgo.Member, error) {
		if member, err := session.State.Member(guildID, userID); err == nil && member.User != nil {
			return member, nil
		}
		return session.GuildMember(guildID, userID)
	})
}

func newDiscordUserInfoProvider(
	fetch func(guildID, userID string) (*discordgo.Member, error),
) *DiscordUserInfoProvider {
	return &DiscordUserInfoProvider{
		fetch: fetch,
		cache: expirable.NewLRU[memberKey, *ports.UserInfo](userInfoCacheSize, nil, userInfoCacheTTL),
	}
}

// GetUserInfo fetches display info for a user in a guild.
func (p *DiscordUserInfoProvider) GetUserInfo(
	guildID, userID snowflake.ID,
) (*ports.UserInfo, error) {
	key := memberKey{guildID: guildID, userID: userID}
	if info, ok := p.cache.Get(key); ok {
		return info, nil
	}

	member, err := p.fetch(guildID.String(), userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch guild member: %w", err)
	}
	if member.User == nil {
		return nil, fmt.Errorf("guild member %s has no user", userID)
	}

	info := &ports.UserInfo{
		DisplayName: displayName(member),
		AvatarURL:   member.AvatarURL(""),
	}
	p.cache.Add(key, info)

	return info, nil
}

// displayName returns the effective display name for a guild member.
// Priority: guild nickname > global display name > username.
func displayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}
