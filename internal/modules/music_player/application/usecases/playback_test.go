package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type playbackFixture struct {
	repo      *mockRepository
	player    *mockAudioPlayer
	voice     *mockVoiceStateProvider
	publisher *mockEventPublisher
	store     *mockLocalAudioStore
	clock     *testClock
	service   *PlaybackService
}

func newPlaybackFixture() *playbackFixture {
	f := &playbackFixture{
		repo:      newMockRepository(),
		player:    newMockAudioPlayer(),
		voice:     newMockVoiceStateProvider(),
		publisher: &mockEventPublisher{},
		store:     &mockLocalAudioStore{},
		clock:     newTestClock(),
	}
	f.voice.channels[testUserID] = testVoiceChannelID
	f.service = NewPlaybackService(f.repo, f.player, f.voice, f.publisher, f.store, f.clock.Now)
	return f
}

func (f *playbackFixture) playing(ids ...string) *domain.PlayerState {
	return f.repo.createPlayingState(testGuildID, testVoiceChannelID, mockTracks(ids...)...)
}

func TestPlaybackService_Pause(t *testing.T) {
	t.Run("pauses and freezes the snapshot", func(t *testing.T) {
		f := newPlaybackFixture()
		state := f.playing("a")
		state.SetSnapshot(&domain.PlaybackSnapshot{TrackID: "a", SeekPosition: time.Minute, CapturedAt: f.clock.Now()})
		f.clock.Advance(5 * time.Second)

		err := f.service.Pause(context.Background(), PauseInput{GuildID: testGuildID, UserID: testUserID})

		require.NoError(t, err)
		assert.True(t, state.IsPaused())
		assert.True(t, state.Snapshot().IsPaused())
		assert.Equal(t, 1, f.player.paused)
	})

	t.Run("already paused", func(t *testing.T) {
		f := newPlaybackFixture()
		state := f.playing("a")
		state.SetPaused(true, f.clock.Now())

		err := f.service.Pause(context.Background(), PauseInput{GuildID: testGuildID, UserID: testUserID})

		assert.ErrorIs(t, err, ErrAlreadyPaused)
	})

	t.Run("nothing playing", func(t *testing.T) {
		f := newPlaybackFixture()
		f.playing()

		err := f.service.Pause(context.Background(), PauseInput{GuildID: testGuildID, UserID: testUserID})

		assert.ErrorIs(t, err, ErrNotPlaying)
	})

	t.Run("audio node error leaves state untouched", func(t *testing.T) {
		f := newPlaybackFixture()
		state := f.playing("a")
		f.player.pauseErr = errors.New("node down")

		err := f.service.Pause(context.Background(), PauseInput{GuildID: testGuildID, UserID: testUserID})

		require.Error(t, err)
		assert.False(t, state.IsPaused())
	})

	t.Run("different voice channel", func(t *testing.T) {
		f := newPlaybackFixture()
		f.playing("a")
		f.voice.channels[testUserID] = snowflake.ID(77)

		err := f.service.Pause(context.Background(), PauseInput{GuildID: testGuildID, UserID: testUserID})

		assert.ErrorIs(t, err, ErrNotSameVoiceChannel)
	})
}

func TestPlaybackService_PauseResume_EstimateExcludesPausedTime(t *testing.T) {
	f := newPlaybackFixture()
	f.playing("a")

	_, err := f.service.Seek(context.Background(), SeekInput{GuildID: testGuildID, UserID: testUserID, Position: 10 * time.Second})
	require.NoError(t, err)

	f.clock.Advance(5 * time.Second)
	require.NoError(t, f.service.Pause(context.Background(), PauseInput{GuildID: testGuildID, UserID: testUserID}))
	f.clock.Advance(time.Minute)

	out, err := f.service.NowPlaying(context.Background(), NowPlayingInput{GuildID: testGuildID})
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, out.Position)
	assert.True(t, out.Paused)

	require.NoError(t, f.service.Resume(context.Background(), ResumeInput{GuildID: testGuildID, UserID: testUserID}))
	f.clock.Advance(3 * time.Second)

	out, err = f.service.NowPlaying(context.Background(), NowPlayingInput{GuildID: testGuildID})
	require.NoError(t, err)
	assert.Equal(t, 18*time.Second, out.Position)
	assert.False(t, out.Paused)
}

func TestPlaybackService_Resume_NotPaused(t *testing.T) {
	f := newPlaybackFixture()
	f.playing("a")

	err := f.service.Resume(context.Background(), ResumeInput{GuildID: testGuildID, UserID: testUserID})

	assert.ErrorIs(t, err, ErrNotPaused)
	assert.Zero(t, f.player.resumed)
}

func TestPlaybackService_Skip(t *testing.T) {
	tests := []struct {
		name        string
		queue       []string
		loopMode    domain.LoopMode
		amount      int
		wantNext    domain.TrackID
		wantOrder   []domain.TrackID
		wantStopped bool
	}{
		{name: "skip one", queue: []string{"a", "b", "c"}, amount: 1, wantNext: "b", wantOrder: []domain.TrackID{"b", "c"}},
		{name: "zero means one", queue: []string{"a", "b", "c"}, amount: 0, wantNext: "b", wantOrder: []domain.TrackID{"b", "c"}},
		{name: "skip several", queue: []string{"a", "b", "c", "d"}, amount: 3, wantNext: "d", wantOrder: []domain.TrackID{"d"}},
		{name: "skip ignores track repeat", queue: []string{"a", "b"}, loopMode: domain.LoopModeTrack, amount: 1, wantNext: "b", wantOrder: []domain.TrackID{"b"}},
		{name: "queue loop re-appends skipped", queue: []string{"a", "b", "c"}, loopMode: domain.LoopModeQueue, amount: 2, wantNext: "c", wantOrder: []domain.TrackID{"c", "a", "b"}},
		{name: "skip everything stops", queue: []string{"a", "b"}, amount: 2, wantStopped: true},
		{name: "skip past the end stops", queue: []string{"a"}, amount: 5, wantStopped: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPlaybackFixture()
			state := f.playing(tt.queue...)
			state.SetLoopMode(tt.loopMode)
			state.SetSnapshot(&domain.PlaybackSnapshot{TrackID: "a"})

			out, err := f.service.Skip(context.Background(), SkipInput{
				GuildID: testGuildID,
				UserID:  testUserID,
				Amount:  tt.amount,
			})

			require.NoError(t, err)
			assert.Equal(t, domain.TrackID("a"), out.SkippedTrack.ID)
			assert.Nil(t, state.Snapshot())

			if tt.wantStopped {
				assert.Nil(t, out.NextTrack)
				assert.True(t, state.Queue.IsEmpty())
				assert.True(t, state.IsIdle())
				assert.Equal(t, 1, f.player.stopped)
				assert.Len(t, eventsOf[domain.PlaybackStoppedEvent](f.publisher), 1)
				return
			}

			require.NotNil(t, out.NextTrack)
			assert.Equal(t, tt.wantNext, out.NextTrack.ID)
			assert.Equal(t, tt.wantOrder, trackIDs(state.Queue.List()))
			assert.Equal(t, []domain.TrackID{tt.wantNext}, f.player.played)
			assert.Len(t, eventsOf[domain.CurrentTrackChangedEvent](f.publisher), 1)
		})
	}
}

func TestPlaybackService_Skip_ReleasesLocalFiles(t *testing.T) {
	f := newPlaybackFixture()
	state := f.playing("a", "b")
	state.CurrentTrack().LocalFile = "a.ogg"

	_, err := f.service.Skip(context.Background(), SkipInput{GuildID: testGuildID, UserID: testUserID})

	require.NoError(t, err)
	assert.Equal(t, []string{"a.ogg"}, f.store.removed)
}

func TestPlaybackService_Skip_EverythingClearsSnapshot(t *testing.T) {
	f := newPlaybackFixture()
	state := f.playing("a", "b")
	_, err := f.service.Seek(context.Background(), SeekInput{GuildID: testGuildID, UserID: testUserID, Position: time.Minute})
	require.NoError(t, err)
	require.NotNil(t, state.Snapshot())

	out, err := f.service.Skip(context.Background(), SkipInput{GuildID: testGuildID, UserID: testUserID, Amount: 2})

	require.NoError(t, err)
	assert.Nil(t, out.NextTrack)
	assert.Nil(t, state.Snapshot())
	assert.Equal(t, 1, f.player.stopped)
}

func TestPlaybackService_Skip_RefusedTrackIsReportedAsFailed(t *testing.T) {
	f := newPlaybackFixture()
	state := f.playing("a", "b", "c")
	f.player.playErr = errors.New("node refused")

	_, err := f.service.Skip(context.Background(), SkipInput{GuildID: testGuildID, UserID: testUserID})
	require.Error(t, err)

	// The failed end moves the queue past b, so the player is not left idle
	// with tracks waiting.
	assert.False(t, state.IsIdle())
	assert.Equal(t, domain.TrackID("b"), state.CurrentTrack().ID)
	ended := eventsOf[domain.TrackEndedEvent](f.publisher)
	require.Len(t, ended, 1)
	assert.Equal(t, domain.TrackID("b"), ended[0].TrackID)
	assert.Equal(t, domain.TrackEndLoadFailed, ended[0].Reason)
	assert.Equal(t, "node refused", ended[0].Message)
	assert.Empty(t, eventsOf[domain.CurrentTrackChangedEvent](f.publisher))
}

func TestPlaybackService_Forward_PastEndRefusedTrackIsReportedAsFailed(t *testing.T) {
	f := newPlaybackFixture()
	f.playing("a", "b")
	f.player.playErr = errors.New("node refused")

	_, err := f.service.Forward(context.Background(), ForwardInput{GuildID: testGuildID, UserID: testUserID, Amount: time.Hour})
	require.Error(t, err)

	ended := eventsOf[domain.TrackEndedEvent](f.publisher)
	require.Len(t, ended, 1)
	assert.Equal(t, domain.TrackID("b"), ended[0].TrackID)
}

func TestPlaybackService_Skip_NothingPlaying(t *testing.T) {
	f := newPlaybackFixture()
	f.playing()

	_, err := f.service.Skip(context.Background(), SkipInput{GuildID: testGuildID, UserID: testUserID})

	assert.ErrorIs(t, err, ErrNotPlaying)
}

func TestPlaybackService_Seek(t *testing.T) {
	t.Run("records snapshot after the node accepted", func(t *testing.T) {
		f := newPlaybackFixture()
		state := f.playing("a")

		out, err := f.service.Seek(context.Background(), SeekInput{
			GuildID:  testGuildID,
			UserID:   testUserID,
			Position: 90 * time.Second,
		})

		require.NoError(t, err)
		assert.Equal(t, 90*time.Second, out.Position)
		assert.Equal(t, []time.Duration{90 * time.Second}, f.player.seeks)
		require.NotNil(t, state.Snapshot())
		assert.Equal(t, domain.TrackID("a"), state.Snapshot().TrackID)
		assert.Equal(t, f.clock.Now(), state.Snapshot().CapturedAt)
	})

	t.Run("rejected seek keeps the old snapshot", func(t *testing.T) {
		f := newPlaybackFixture()
		state := f.playing("a")
		f.player.seekErr = errors.New("node down")

		_, err := f.service.Seek(context.Background(), SeekInput{
			GuildID:  testGuildID,
			UserID:   testUserID,
			Position: 90 * time.Second,
		})

		require.Error(t, err)
		assert.Nil(t, state.Snapshot())
	})

	t.Run("past the end", func(t *testing.T) {
		f := newPlaybackFixture()
		f.playing("a")

		_, err := f.service.Seek(context.Background(), SeekInput{
			GuildID:  testGuildID,
			UserID:   testUserID,
			Position: 3 * time.Minute,
		})

		assert.ErrorIs(t, err, ErrSeekOutOfRange)
		assert.Empty(t, f.player.seeks)
	})

	t.Run("stream cannot seek", func(t *testing.T) {
		f := newPlaybackFixture()
		state := f.playing("a")
		state.CurrentTrack().IsStream = true

		_, err := f.service.Seek(context.Background(), SeekInput{
			GuildID:  testGuildID,
			UserID:   testUserID,
			Position: time.Second,
		})

		assert.ErrorIs(t, err, ErrNotSeekable)
	})
}

func TestPlaybackService_Forward(t *testing.T) {
	t.Run("uses the node position without a snapshot", func(t *testing.T) {
		f := newPlaybackFixture()
		f.playing("a")
		f.player.position = 20 * time.Second

		out, err := f.service.Forward(context.Background(), ForwardInput{
			GuildID: testGuildID,
			UserID:  testUserID,
			Amount:  10 * time.Second,
		})

		require.NoError(t, err)
		assert.False(t, out.Skipped)
		assert.Equal(t, 30*time.Second, out.Position)
	})

	t.Run("prefers the snapshot estimate", func(t *testing.T) {
		f := newPlaybackFixture()
		state := f.playing("a")
		f.player.position = 0
		state.SetSnapshot(&domain.PlaybackSnapshot{TrackID: "a", SeekPosition: time.Minute, CapturedAt: f.clock.Now()})
		f.clock.Advance(5 * time.Second)

		out, err := f.service.Forward(context.Background(), ForwardInput{
			GuildID: testGuildID,
			UserID:  testUserID,
			Amount:  10 * time.Second,
		})

		require.NoError(t, err)
		assert.Equal(t, 75*time.Second, out.Position)
	})

	t.Run("past the end skips", func(t *testing.T) {
		f := newPlaybackFixture()
		state := f.playing("a", "b")
		f.player.position = 170 * time.Second

		out, err := f.service.Forward(context.Background(), ForwardInput{
			GuildID: testGuildID,
			UserID:  testUserID,
			Amount:  30 * time.Second,
		})

		require.NoError(t, err)
		assert.True(t, out.Skipped)
		require.NotNil(t, out.NextTrack)
		assert.Equal(t, domain.TrackID("b"), out.NextTrack.ID)
		assert.Equal(t, domain.TrackID("b"), state.CurrentTrack().ID)
		assert.Empty(t, f.player.seeks)
	})
}

func TestPlaybackService_Rewind_StopsAtStart(t *testing.T) {
	f := newPlaybackFixture()
	f.playing("a")
	f.player.position = 5 * time.Second

	out, err := f.service.Rewind(context.Background(), RewindInput{
		GuildID: testGuildID,
		UserID:  testUserID,
		Amount:  30 * time.Second,
	})

	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), out.Position)
	assert.Equal(t, []time.Duration{0}, f.player.seeks)
}

func TestPlaybackService_NowPlaying(t *testing.T) {
	t.Run("reports the node position", func(t *testing.T) {
		f := newPlaybackFixture()
		f.playing("a", "b")
		f.player.position = 42 * time.Second

		out, err := f.service.NowPlaying(context.Background(), NowPlayingInput{GuildID: testGuildID})

		require.NoError(t, err)
		assert.Equal(t, domain.TrackID("a"), out.Track.ID)
		assert.Equal(t, 42*time.Second, out.Position)
		assert.Equal(t, 1, out.UpcomingCount)
	})

	t.Run("unknown position is zero", func(t *testing.T) {
		f := newPlaybackFixture()
		f.playing("a")

		out, err := f.service.NowPlaying(context.Background(), NowPlayingInput{GuildID: testGuildID})

		require.NoError(t, err)
		assert.Equal(t, time.Duration(0), out.Position)
	})

	t.Run("nothing playing", func(t *testing.T) {
		f := newPlaybackFixture()
		f.playing()

		_, err := f.service.NowPlaying(context.Background(), NowPlayingInput{GuildID: testGuildID})

		assert.ErrorIs(t, err, ErrNotPlaying)
	})
}

func TestPlaybackService_Stop(t *testing.T) {
	f := newPlaybackFixture()
	state := f.playing("a", "b", "c")
	state.Queue.Upcoming()[1].LocalFile = "c.wav"
	msg := domain.NewNowPlayingMessage(3, 11)
	state.SetNowPlayingMessage(&msg)
	state.SetSnapshot(&domain.PlaybackSnapshot{TrackID: "a", SeekPosition: time.Minute, CapturedAt: f.clock.Now()})

	out, err := f.service.Stop(context.Background(), StopInput{GuildID: testGuildID, UserID: testUserID})

	require.NoError(t, err)
	assert.Equal(t, 3, out.ClearedCount)
	assert.True(t, state.Queue.IsEmpty())
	assert.True(t, state.IsIdle())
	assert.Nil(t, state.Snapshot())
	assert.Nil(t, state.NowPlayingMessage())
	assert.Equal(t, []string{"c.wav"}, f.store.removed)

	stopped := eventsOf[domain.PlaybackStoppedEvent](f.publisher)
	require.Len(t, stopped, 1)
	assert.Equal(t, &msg, stopped[0].NowPlaying)
}

func TestPlaybackService_LockUnlock(t *testing.T) {
	f := newPlaybackFixture()
	state := f.playing("a")
	input := LockInput{GuildID: testGuildID, UserID: testUserID}

	_, err := f.service.Unlock(context.Background(), input)
	assert.ErrorIs(t, err, ErrNotLocked)

	out, err := f.service.Lock(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, domain.TrackID("a"), out.Track.ID)
	assert.Equal(t, domain.LoopModeTrack, state.LoopMode())

	_, err = f.service.Lock(context.Background(), input)
	assert.ErrorIs(t, err, ErrAlreadyLocked)

	_, err = f.service.Unlock(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, domain.LoopModeNone, state.LoopMode())
}
