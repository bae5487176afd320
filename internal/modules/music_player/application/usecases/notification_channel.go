package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// NotificationChannelService moves Now Playing and queue notices to the
// channel the last music command came from.
type NotificationChannelService struct {
	repo domain.PlayerStateRepository
}

// NewNotificationChannelService creates a new NotificationChannelService.
func NewNotificationChannelService(repo domain.PlayerStateRepository) *NotificationChannelService {
	return &NotificationChannelService{repo: repo}
}

// SetNotificationChannelInput contains the input for the Set use case.
type SetNotificationChannelInput struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
}

// Set points the guild's notifications at ChannelID and reports whether that
// changed anything. Guilds without a player return ErrNotConnected.
func (n *NotificationChannelService) Set(
	ctx context.Context,
	input SetNotificationChannelInput,
) (bool, error) {
	if input.ChannelID == 0 {
		return false, nil
	}

	state, err := n.repo.Get(ctx, input.GuildID)
	if err != nil {
		return false, ErrNotConnected
	}

	state.Lock()
	changed := state.NotificationChannelID() != input.ChannelID
	if changed {
		state.SetNotificationChannelID(input.ChannelID)
	}
	state.Unlock()

	if !changed {
		return false, nil
	}
	return true, n.repo.Save(ctx, state)
}
