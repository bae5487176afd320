package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID               snowflake.ID
	UserID                snowflake.ID
	NotificationChannelID snowflake.ID
	VoiceChannelID        snowflake.ID // Optional: specific channel to join (0 means use user's channel)
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	VoiceChannelID   snowflake.ID
	AlreadyConnected bool
}

// LeaveInput contains the input for the Leave use case.
type LeaveInput struct {
	GuildID snowflake.ID
}

// BotVoiceStateChangeInput contains the input for handling bot voice state changes.
type BotVoiceStateChangeInput struct {
	GuildID      snowflake.ID
	NewChannelID *snowflake.ID // nil means disconnected
}

// VoiceChannelService handles voice channel operations.
type VoiceChannelService struct {
	repo            domain.PlayerStateRepository
	voiceConnection ports.VoiceConnection
	voiceState      ports.VoiceStateProvider
	publisher       ports.EventPublisher
	localAudio      ports.LocalAudioStore
}

// NewVoiceChannelService creates a new VoiceChannelService.
func NewVoiceChannelService(
	repo domain.PlayerStateRepository,
	voiceConnection ports.VoiceConnection,
	voiceState ports.VoiceStateProvider,
	publisher ports.EventPublisher,
	localAudio ports.LocalAudioStore,
) *VoiceChannelService {
	return &VoiceChannelService{
		repo:            repo,
		voiceConnection: voiceConnection,
		voiceState:      voiceState,
		publisher:       publisher,
		localAudio:      localAudio,
	}
}

// Join joins the bot to a voice channel.
// A bot that is busy playing in another channel is not pulled away from it.
func (v *VoiceChannelService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	voiceChannelID := input.VoiceChannelID
	if voiceChannelID == 0 {
		userChannel, err := v.voiceState.GetUserVoiceChannel(input.GuildID, input.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up voice state: %w", err)
		}
		if userChannel == 0 {
			return nil, ErrUserNotInVoice
		}
		voiceChannelID = userChannel
	}

	existingState, err := v.repo.Get(ctx, input.GuildID)
	if err != nil {
		existingState = nil
	} else {
		existingState.Lock()
		defer existingState.Unlock()

		if existingState.VoiceChannelID() == voiceChannelID {
			existingState.SetNotificationChannelID(input.NotificationChannelID)
			return &JoinOutput{VoiceChannelID: voiceChannelID, AlreadyConnected: true}, nil
		}
		if !existingState.IsIdle() {
			return nil, ErrNotSameVoiceChannel
		}
	}

	if err := v.voiceConnection.JoinChannel(ctx, input.GuildID, voiceChannelID); err != nil {
		return nil, err
	}

	if existingState != nil {
		// Moving channels keeps the queue
		existingState.SetVoiceChannelID(voiceChannelID)
		existingState.SetNotificationChannelID(input.NotificationChannelID)
		return &JoinOutput{VoiceChannelID: voiceChannelID}, nil
	}

	state := domain.NewPlayerState(input.GuildID, voiceChannelID, input.NotificationChannelID)
	if err := v.repo.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save player state: %w", err)
	}

	return &JoinOutput{VoiceChannelID: voiceChannelID}, nil
}

// Leave leaves the voice channel and deletes the player state.
func (v *VoiceChannelService) Leave(ctx context.Context, input LeaveInput) error {
	state, err := v.repo.Get(ctx, input.GuildID)
	if err != nil {
		return ErrNotConnected
	}

	state.Lock()
	defer state.Unlock()

	if err := v.voiceConnection.LeaveChannel(ctx, input.GuildID); err != nil {
		return err
	}

	v.teardown(ctx, state)
	return nil
}

// LeaveIfIdle leaves the voice channel unless something started playing in
// the meantime. It reports whether the bot left.
func (v *VoiceChannelService) LeaveIfIdle(ctx context.Context, guildID snowflake.ID) (bool, error) {
	state, err := v.repo.Get(ctx, guildID)
	if err != nil {
		return false, ErrNotConnected
	}

	state.Lock()
	defer state.Unlock()

	if !state.IsIdle() || !state.Queue.IsEmpty() {
		return false, nil
	}

	if err := v.voiceConnection.LeaveChannel(ctx, guildID); err != nil {
		return false, err
	}

	v.teardown(ctx, state)
	return true, nil
}

// HandleBotVoiceStateChange handles external voice state changes (bot moved or disconnected).
// This should be called when the bot's voice state changes due to external factors
// (e.g., being moved by a user or disconnected by Discord).
func (v *VoiceChannelService) HandleBotVoiceStateChange(
	ctx context.Context,
	input BotVoiceStateChangeInput,
) {
	state, err := v.repo.Get(ctx, input.GuildID)
	if err != nil {
		return
	}

	state.Lock()
	defer state.Unlock()

	if input.NewChannelID == nil {
		v.teardown(ctx, state)
		return
	}

	if *input.NewChannelID != state.VoiceChannelID() {
		state.SetVoiceChannelID(*input.NewChannelID)
	}
}

// teardown drops everything the guild's player owned. Callers hold the state lock.
func (v *VoiceChannelService) teardown(ctx context.Context, state *domain.PlayerState) {
	guildID := state.GuildID()

	releaseLocalFiles(v.localAudio, state.Queue.Clear())
	state.SetPlaybackActive(false)
	state.ClearSnapshot()

	if err := v.repo.Delete(ctx, guildID); err != nil {
		slog.Warn("failed to delete player state", "guild", guildID, "error", err)
	}

	// The state is gone by the time the event is handled, so the message travels with it
	publish(v.publisher, domain.PlaybackStoppedEvent{
		GuildID:    guildID,
		NowPlaying: state.NowPlayingMessage(),
	})
	state.ClearNowPlayingMessage()
	state.ClearLoadingMessage()
}

// ensureSameVoiceChannel rejects users who are not listening in the bot's channel.
// A zero userID skips the check.
func ensureSameVoiceChannel(
	voiceState ports.VoiceStateProvider,
	state *domain.PlayerState,
	userID snowflake.ID,
) error {
	if voiceState == nil || userID == 0 {
		return nil
	}

	channelID, err := voiceState.GetUserVoiceChannel(state.GuildID(), userID)
	if err != nil {
		return fmt.Errorf("failed to look up voice state: %w", err)
	}
	if channelID != state.VoiceChannelID() {
		return ErrNotSameVoiceChannel
	}
	return nil
}

// publish sends an event, logging instead of failing the use case when the bus rejects it.
func publish(publisher ports.EventPublisher, event domain.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(event); err != nil {
		slog.Warn("failed to publish event", "event", event, "error", err)
	}
}

// releaseLocalFiles deletes downloaded copies of tracks that left the queue.
func releaseLocalFiles(store ports.LocalAudioStore, tracks []*domain.Track) {
	if store == nil {
		return
	}
	var errs []error
	for _, track := range tracks {
		if track == nil || track.LocalFile == "" {
			continue
		}
		if err := store.Remove(track.LocalFile); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		slog.Warn("failed to remove local audio files", "error", err)
	}
}
