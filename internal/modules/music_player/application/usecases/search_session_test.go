package usecases

import (
	"context"
	"testing"

	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchFixture struct {
	queue    *queueFixture
	sessions *mockSearchSessionStore
	resolver *mockTrackResolver
	clock    *testClock
	service  *SearchSessionService
}

func newSearchFixture() *searchFixture {
	f := &searchFixture{
		queue:    newQueueFixture(),
		sessions: newMockSearchSessionStore(),
		resolver: &mockTrackResolver{
			loadResult: &ports.LoadResult{
				Type:   ports.LoadTypeSearch,
				Tracks: []*ports.TrackInfo{trackInfo("a"), trackInfo("b"), trackInfo("c")},
			},
		},
		clock: newTestClock(),
	}
	loader := NewTrackLoaderService(f.resolver, nil)
	f.service = NewSearchSessionService(f.sessions, loader, f.queue.service, f.clock.Now)
	return f
}

func TestSearchSessionService_Start(t *testing.T) {
	f := newSearchFixture()

	out, err := f.service.Start(context.Background(), StartSearchInput{
		GuildID: testGuildID,
		UserID:  testUserID,
		Query:   "song",
	})

	require.NoError(t, err)
	assert.Equal(t, []domain.TrackID{"a", "b", "c"}, trackIDs(out.Tracks))

	session, ok := f.sessions.Get(testUserID)
	require.True(t, ok)
	assert.Equal(t, testGuildID, session.GuildID)
	assert.Equal(t, f.clock.Now(), session.CreatedAt)
}

func TestSearchSessionService_Start_OnePendingSearchPerUser(t *testing.T) {
	f := newSearchFixture()
	input := StartSearchInput{GuildID: testGuildID, UserID: testUserID, Query: "song"}

	_, err := f.service.Start(context.Background(), input)
	require.NoError(t, err)

	_, err = f.service.Start(context.Background(), input)
	assert.ErrorIs(t, err, ErrSearchActive)
}

func TestSearchSessionService_Select(t *testing.T) {
	f := newSearchFixture()
	state := f.queue.repo.createConnectedState(testGuildID, testVoiceChannelID, 3)
	_, err := f.service.Start(context.Background(), StartSearchInput{GuildID: testGuildID, UserID: testUserID, Query: "song"})
	require.NoError(t, err)

	out, err := f.service.Select(context.Background(), SelectSearchInput{
		GuildID: testGuildID,
		UserID:  testUserID,
		Index:   1,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.TrackID("b"), out.Track.ID)
	assert.Equal(t, 1, out.Position)
	assert.True(t, out.StartsPlayback)
	assert.Equal(t, domain.TrackID("b"), state.CurrentTrack().ID)

	_, ok := f.sessions.Get(testUserID)
	assert.False(t, ok, "session ends after a pick")
}

func TestSearchSessionService_Select_Errors(t *testing.T) {
	t.Run("no pending search", func(t *testing.T) {
		f := newSearchFixture()

		_, err := f.service.Select(context.Background(), SelectSearchInput{GuildID: testGuildID, UserID: testUserID})

		assert.ErrorIs(t, err, ErrSearchExpired)
	})

	t.Run("index out of range keeps the session", func(t *testing.T) {
		f := newSearchFixture()
		f.queue.repo.createConnectedState(testGuildID, testVoiceChannelID, 3)
		_, err := f.service.Start(context.Background(), StartSearchInput{GuildID: testGuildID, UserID: testUserID, Query: "song"})
		require.NoError(t, err)

		_, err = f.service.Select(context.Background(), SelectSearchInput{GuildID: testGuildID, UserID: testUserID, Index: 3})

		assert.ErrorIs(t, err, ErrInvalidSelection)
		_, ok := f.sessions.Get(testUserID)
		assert.True(t, ok)
	})

	t.Run("bot left voice", func(t *testing.T) {
		f := newSearchFixture()
		_, err := f.service.Start(context.Background(), StartSearchInput{GuildID: testGuildID, UserID: testUserID, Query: "song"})
		require.NoError(t, err)

		_, err = f.service.Select(context.Background(), SelectSearchInput{GuildID: testGuildID, UserID: testUserID})

		assert.ErrorIs(t, err, ErrNotConnected)
	})
}

func TestSearchSessionService_Cancel(t *testing.T) {
	f := newSearchFixture()
	_, err := f.service.Start(context.Background(), StartSearchInput{GuildID: testGuildID, UserID: testUserID, Query: "song"})
	require.NoError(t, err)

	assert.NoError(t, f.service.Cancel(testUserID))
	assert.ErrorIs(t, f.service.Cancel(testUserID), ErrSearchExpired)
}
