package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type voiceChannelFixture struct {
	repo       *mockRepository
	connection *mockVoiceConnection
	voice      *mockVoiceStateProvider
	publisher  *mockEventPublisher
	store      *mockLocalAudioStore
	service    *VoiceChannelService
}

func newVoiceChannelFixture() *voiceChannelFixture {
	f := &voiceChannelFixture{
		repo:       newMockRepository(),
		connection: &mockVoiceConnection{},
		voice:      newMockVoiceStateProvider(),
		publisher:  &mockEventPublisher{},
		store:      &mockLocalAudioStore{},
	}
	f.service = NewVoiceChannelService(f.repo, f.connection, f.voice, f.publisher, f.store)
	return f
}

func TestVoiceChannelService_Join(t *testing.T) {
	guildID := snowflake.ID(1)
	userID := snowflake.ID(2)
	notificationChannelID := snowflake.ID(3)
	voiceChannelID := snowflake.ID(4)
	otherChannelID := snowflake.ID(5)

	tests := []struct {
		name                 string
		input                JoinInput
		setup                func(*voiceChannelFixture)
		wantErr              error
		wantVoiceChannelID   snowflake.ID
		wantAlreadyConnected bool
	}{
		{
			name: "join user's channel",
			input: JoinInput{
				GuildID:               guildID,
				UserID:                userID,
				NotificationChannelID: notificationChannelID,
			},
			setup: func(f *voiceChannelFixture) {
				f.voice.channels[userID] = voiceChannelID
			},
			wantVoiceChannelID: voiceChannelID,
		},
		{
			name: "join specific channel",
			input: JoinInput{
				GuildID:               guildID,
				UserID:                userID,
				NotificationChannelID: notificationChannelID,
				VoiceChannelID:        voiceChannelID,
			},
			wantVoiceChannelID: voiceChannelID,
		},
		{
			name: "user not in voice",
			input: JoinInput{
				GuildID:               guildID,
				UserID:                userID,
				NotificationChannelID: notificationChannelID,
			},
			wantErr: ErrUserNotInVoice,
		},
		{
			name: "already connected to same channel",
			input: JoinInput{
				GuildID:               guildID,
				UserID:                userID,
				NotificationChannelID: snowflake.ID(99),
				VoiceChannelID:        voiceChannelID,
			},
			setup: func(f *voiceChannelFixture) {
				f.repo.createConnectedState(guildID, voiceChannelID, notificationChannelID)
			},
			wantVoiceChannelID:   voiceChannelID,
			wantAlreadyConnected: true,
		},
		{
			name: "busy in another channel",
			input: JoinInput{
				GuildID:               guildID,
				UserID:                userID,
				NotificationChannelID: notificationChannelID,
				VoiceChannelID:        otherChannelID,
			},
			setup: func(f *voiceChannelFixture) {
				f.repo.createPlayingState(guildID, voiceChannelID, mockTrack("a"))
			},
			wantErr: ErrNotSameVoiceChannel,
		},
		{
			name: "idle in another channel moves",
			input: JoinInput{
				GuildID:               guildID,
				UserID:                userID,
				NotificationChannelID: notificationChannelID,
				VoiceChannelID:        otherChannelID,
			},
			setup: func(f *voiceChannelFixture) {
				f.repo.createConnectedState(guildID, voiceChannelID, notificationChannelID)
			},
			wantVoiceChannelID: otherChannelID,
		},
		{
			name: "voice connection error",
			input: JoinInput{
				GuildID:               guildID,
				UserID:                userID,
				NotificationChannelID: notificationChannelID,
				VoiceChannelID:        voiceChannelID,
			},
			setup: func(f *voiceChannelFixture) {
				f.connection.joinErr = errors.New("connection failed")
			},
			wantErr: errors.New("connection failed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newVoiceChannelFixture()
			if tt.setup != nil {
				tt.setup(f)
			}

			out, err := f.service.Join(context.Background(), tt.input)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr.Error(), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVoiceChannelID, out.VoiceChannelID)
			assert.Equal(t, tt.wantAlreadyConnected, out.AlreadyConnected)

			state, err := f.repo.Get(context.Background(), guildID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantVoiceChannelID, state.VoiceChannelID())
			assert.Equal(t, tt.input.NotificationChannelID, state.NotificationChannelID())
		})
	}
}

func TestVoiceChannelService_Join_MoveKeepsQueue(t *testing.T) {
	f := newVoiceChannelFixture()
	state := f.repo.createConnectedState(1, 4, 3)
	state.Queue.Append(mockTracks("a", "b")...)

	_, err := f.service.Join(context.Background(), JoinInput{
		GuildID:               1,
		NotificationChannelID: 3,
		VoiceChannelID:        5,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, state.Queue.Len())
	assert.Equal(t, []snowflake.ID{5}, f.connection.joined)
}

func TestVoiceChannelService_Leave(t *testing.T) {
	t.Run("tears down state and publishes stop", func(t *testing.T) {
		f := newVoiceChannelFixture()
		state := f.repo.createPlayingState(1, 4, mockTracks("a", "b")...)
		state.Queue.Current().LocalFile = "local-a"
		msg := domain.NewNowPlayingMessage(3, 42)
		state.SetNowPlayingMessage(&msg)

		err := f.service.Leave(context.Background(), LeaveInput{GuildID: 1})

		require.NoError(t, err)
		assert.Equal(t, 1, f.connection.left)
		assert.Equal(t, []snowflake.ID{1}, f.repo.deleted)
		assert.Equal(t, []string{"local-a"}, f.store.removed)

		stopped := eventsOf[domain.PlaybackStoppedEvent](f.publisher)
		require.Len(t, stopped, 1)
		require.NotNil(t, stopped[0].NowPlaying)
		assert.Equal(t, snowflake.ID(42), stopped[0].NowPlaying.MessageID)
	})

	t.Run("not connected", func(t *testing.T) {
		f := newVoiceChannelFixture()

		err := f.service.Leave(context.Background(), LeaveInput{GuildID: 1})

		assert.ErrorIs(t, err, ErrNotConnected)
	})

	t.Run("leave error keeps state", func(t *testing.T) {
		f := newVoiceChannelFixture()
		f.repo.createConnectedState(1, 4, 3)
		f.connection.leaveErr = errors.New("gateway down")

		err := f.service.Leave(context.Background(), LeaveInput{GuildID: 1})

		require.Error(t, err)
		_, getErr := f.repo.Get(context.Background(), 1)
		assert.NoError(t, getErr)
	})
}

func TestVoiceChannelService_HandleBotVoiceStateChange(t *testing.T) {
	t.Run("disconnect deletes state", func(t *testing.T) {
		f := newVoiceChannelFixture()
		f.repo.createPlayingState(1, 4, mockTrack("a"))

		f.service.HandleBotVoiceStateChange(context.Background(), BotVoiceStateChangeInput{GuildID: 1})

		_, err := f.repo.Get(context.Background(), 1)
		assert.Error(t, err)
		assert.Len(t, eventsOf[domain.PlaybackStoppedEvent](f.publisher), 1)
	})

	t.Run("move updates channel", func(t *testing.T) {
		f := newVoiceChannelFixture()
		state := f.repo.createPlayingState(1, 4, mockTrack("a"))
		newChannel := snowflake.ID(8)

		f.service.HandleBotVoiceStateChange(context.Background(), BotVoiceStateChangeInput{
			GuildID:      1,
			NewChannelID: &newChannel,
		})

		assert.Equal(t, newChannel, state.VoiceChannelID())
		assert.Equal(t, 1, state.Queue.Len())
	})

	t.Run("unknown guild is ignored", func(t *testing.T) {
		f := newVoiceChannelFixture()

		f.service.HandleBotVoiceStateChange(context.Background(), BotVoiceStateChangeInput{GuildID: 1})

		assert.Empty(t, f.publisher.events)
	})
}
