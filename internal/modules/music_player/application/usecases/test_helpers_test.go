package usecases

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

var errStateNotFound = errors.New("player state not found")

func mockTrack(id string) *domain.Track {
	return &domain.Track{
		ID:          domain.TrackID(id),
		Encoded:     "encoded-" + id,
		Title:       "Track " + id,
		Artist:      "Artist",
		Duration:    3 * time.Minute,
		IsSeekable:  true,
		RequesterID: snowflake.ID(123),
	}
}

func mockTracks(ids ...string) []*domain.Track {
	tracks := make([]*domain.Track, len(ids))
	for i, id := range ids {
		tracks[i] = mockTrack(id)
	}
	return tracks
}

func trackIDs(tracks []*domain.Track) []domain.TrackID {
	ids := make([]domain.TrackID, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids
}

func intPtr(n int) *int {
	return &n
}

type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type mockRepository struct {
	mu      sync.Mutex
	states  map[snowflake.ID]*domain.PlayerState
	deleted []snowflake.ID
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		states: make(map[snowflake.ID]*domain.PlayerState),
	}
}

func (m *mockRepository) Get(_ context.Context, guildID snowflake.ID) (*domain.PlayerState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[guildID]
	if !ok {
		return nil, errStateNotFound
	}
	return state, nil
}

func (m *mockRepository) Save(_ context.Context, state *domain.PlayerState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.states[state.GuildID()] = state
	return nil
}

func (m *mockRepository) Delete(_ context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleted = append(m.deleted, guildID)
	delete(m.states, guildID)
	return nil
}

// createConnectedState creates a PlayerState with the given IDs and saves it to the mock repository.
// Returns the state for further modification (e.g., adding tracks).
func (m *mockRepository) createConnectedState(
	guildID, voiceChannelID, notificationChannelID snowflake.ID,
) *domain.PlayerState {
	state := domain.NewPlayerState(guildID, voiceChannelID, notificationChannelID)
	_ = m.Save(context.Background(), state)
	return state
}

// createPlayingState creates a connected state that is playing the first of the given tracks.
func (m *mockRepository) createPlayingState(
	guildID, voiceChannelID snowflake.ID,
	tracks ...*domain.Track,
) *domain.PlayerState {
	state := m.createConnectedState(guildID, voiceChannelID, snowflake.ID(3))
	state.Queue.Append(tracks...)
	state.SetPlaybackActive(len(tracks) > 0)
	return state
}

type mockAudioPlayer struct {
	playErr   error
	stopErr   error
	pauseErr  error
	resumeErr error
	seekErr   error

	position time.Duration

	played  []domain.TrackID
	seeks   []time.Duration
	stopped int
	paused  int
	resumed int
}

func newMockAudioPlayer() *mockAudioPlayer {
	return &mockAudioPlayer{position: -1}
}

func (m *mockAudioPlayer) Play(_ context.Context, _ snowflake.ID, track *domain.Track) error {
	if m.playErr != nil {
		return m.playErr
	}
	m.played = append(m.played, track.ID)
	return nil
}

func (m *mockAudioPlayer) Stop(_ context.Context, _ snowflake.ID) error {
	if m.stopErr != nil {
		return m.stopErr
	}
	m.stopped++
	return nil
}

func (m *mockAudioPlayer) Pause(_ context.Context, _ snowflake.ID) error {
	if m.pauseErr != nil {
		return m.pauseErr
	}
	m.paused++
	return nil
}

func (m *mockAudioPlayer) Resume(_ context.Context, _ snowflake.ID) error {
	if m.resumeErr != nil {
		return m.resumeErr
	}
	m.resumed++
	return nil
}

func (m *mockAudioPlayer) Seek(_ context.Context, _ snowflake.ID, position time.Duration) error {
	if m.seekErr != nil {
		return m.seekErr
	}
	m.seeks = append(m.seeks, position)
	return nil
}

func (m *mockAudioPlayer) Position(_ snowflake.ID) time.Duration {
	return m.position
}

type mockVoiceConnection struct {
	joinErr  error
	leaveErr error
	joined   []snowflake.ID
	left     int
}

func (m *mockVoiceConnection) JoinChannel(_ context.Context, _, channelID snowflake.ID) error {
	if m.joinErr != nil {
		return m.joinErr
	}
	m.joined = append(m.joined, channelID)
	return nil
}

func (m *mockVoiceConnection) LeaveChannel(_ context.Context, _ snowflake.ID) error {
	if m.leaveErr != nil {
		return m.leaveErr
	}
	m.left++
	return nil
}

type mockTrackResolver struct {
	loadErr    error
	loadResult *ports.LoadResult
	results    map[string]*ports.LoadResult // per query, checked before loadResult
	queries    []string
}

func (m *mockTrackResolver) LoadTracks(_ context.Context, query string) (*ports.LoadResult, error) {
	m.queries = append(m.queries, query)
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if result, ok := m.results[query]; ok {
		return result, nil
	}
	if m.loadResult == nil {
		return &ports.LoadResult{Type: ports.LoadTypeEmpty}, nil
	}
	return m.loadResult, nil
}

type mockVoiceStateProvider struct {
	channels map[snowflake.ID]snowflake.ID // userID -> channelID
	err      error
}

func newMockVoiceStateProvider() *mockVoiceStateProvider {
	return &mockVoiceStateProvider{channels: make(map[snowflake.ID]snowflake.ID)}
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(
	_, userID snowflake.ID,
) (snowflake.ID, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.channels[userID], nil
}

type mockEventPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (m *mockEventPublisher) Publish(event domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, event)
	return nil
}

// eventsOf returns the published events of type T in order.
func eventsOf[T domain.Event](m *mockEventPublisher) []T {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []T
	for _, e := range m.events {
		if typed, ok := e.(T); ok {
			result = append(result, typed)
		}
	}
	return result
}

type mockUserInfoProvider struct {
	users map[snowflake.ID]*ports.UserInfo
	err   error
}

func (m *mockUserInfoProvider) GetUserInfo(_, userID snowflake.ID) (*ports.UserInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	info, ok := m.users[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	return info, nil
}

type mockLocalAudioStore struct {
	enabled     bool
	downloadErr error
	removeErr   error
	downloaded  []string
	removed     []string
}

func (m *mockLocalAudioStore) Enabled() bool {
	return m.enabled
}

func (m *mockLocalAudioStore) Download(_ context.Context, _, fileName string) (string, error) {
	if m.downloadErr != nil {
		return "", m.downloadErr
	}
	stored := "stored-" + fileName
	m.downloaded = append(m.downloaded, stored)
	return stored, nil
}

func (m *mockLocalAudioStore) URL(storedName string) string {
	return "http://files.example.com/" + storedName
}

func (m *mockLocalAudioStore) Remove(storedName string) error {
	m.removed = append(m.removed, storedName)
	return m.removeErr
}

type mockSearchSessionStore struct {
	sessions map[snowflake.ID]*ports.SearchSession
}

func newMockSearchSessionStore() *mockSearchSessionStore {
	return &mockSearchSessionStore{sessions: make(map[snowflake.ID]*ports.SearchSession)}
}

func (m *mockSearchSessionStore) Get(userID snowflake.ID) (*ports.SearchSession, bool) {
	session, ok := m.sessions[userID]
	return session, ok
}

func (m *mockSearchSessionStore) Put(session *ports.SearchSession) {
	m.sessions[session.UserID] = session
}

func (m *mockSearchSessionStore) Delete(userID snowflake.ID) bool {
	_, ok := m.sessions[userID]
	delete(m.sessions, userID)
	return ok
}

type mockNodeStatusProvider struct {
	status *ports.NodeStatus
	err    error
}

func (m *mockNodeStatusProvider) NodeStatus(_ context.Context) (*ports.NodeStatus, error) {
	return m.status, m.err
}

func trackInfo(id string) *ports.TrackInfo {
	return &ports.TrackInfo{
		Identifier: id,
		Encoded:    "encoded-" + id,
		Title:      "Track " + id,
		Artist:     "Artist",
		Duration:   3 * time.Minute,
		SourceName: "youtube",
		IsSeekable: true,
	}
}
