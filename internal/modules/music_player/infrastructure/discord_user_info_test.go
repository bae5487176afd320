package infrastructure

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		member *discordgo.Member
		want   string
	}{
		{
			name:   "nickname wins",
			member: &discordgo.Member{Nick: "nick", User: &discordgo.User{GlobalName: "global", Username: "user"}},
			want:   "nick",
		},
		{
			name:   "global name before username",
			member: &discordgo.Member{User: &discordgo.User{GlobalName: "global", Username: "user"}},
			want:   "global",
		},
		{
			name:   "username last",
			member: &discordgo.Member{User: &discordgo.User{Username: "user"}},
			want:   "user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, displayName(tt.member))
		})
	}
}

func TestDiscordUserInfoProvider_CachesLookups(t *testing.T) {
	calls := 0
	provider := newDiscordUserInfoProvider(func(guildID, userID string) (*discordgo.Member, error) {
		calls++
		assert.Equal(t, "1", guildID)
		assert.Equal(t, "2", userID)
		return &discordgo.Member{GuildID: guildID, User: &discordgo.User{ID: userID, Username: "listener"}}, nil
	})

	for range 3 {
		info, err := provider.GetUserInfo(snowflake.ID(1), snowflake.ID(2))
		require.NoError(t, err)
		assert.Equal(t, "listener", info.DisplayName)
		assert.NotEmpty(t, info.AvatarURL)
	}

	assert.Equal(t, 1, calls)
}

func TestDiscordUserInfoProvider_Errors(t *testing.T) {
	provider := newDiscordUserInfoProvider(func(string, string) (*discordgo.Member, error) {
		return nil, errors.New("unknown member")
	})

	_, err := provider.GetUserInfo(snowflake.ID(1), snowflake.ID(2))
	assert.Error(t, err)

	provider = newDiscordUserInfoProvider(func(string, string) (*discordgo.Member, error) {
		return &discordgo.Member{}, nil
	})

	_, err = provider.GetUserInfo(snowflake.ID(1), snowflake.ID(2))
	assert.Error(t, err)
}
