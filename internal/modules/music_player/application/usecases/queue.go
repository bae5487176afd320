package usecases

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

const DefaultPageSize = 10

// QueueAddInput contains the input for the QueueAdd use case.
type QueueAddInput struct {
	GuildID  snowflake.ID
	Tracks   []*domain.Track
	Position *int // 1-indexed queue position; nil appends

	// LoadingMessage is the reply that becomes "Now Playing" when the tracks
	// start playback right away. Ignored otherwise.
	LoadingMessage *domain.NowPlayingMessage
}

// QueueAddOutput contains the result of the QueueAdd use case.
type QueueAddOutput struct {
	Position       int // 1-indexed position of the first added track
	Count          int
	StartsPlayback bool
}

// QueueListInput contains the input for the QueueList use case.
type QueueListInput struct {
	GuildID  snowflake.ID
	Page     int // 1-indexed page number
	PageSize int // Items per page (optional, defaults to 10)
}

// QueueListOutput contains the result of the QueueList use case.
type QueueListOutput struct {
	CurrentTrack  *domain.Track
	Tracks        []*domain.Track // upcoming tracks on the requested page
	PageStart     int             // index of Tracks[0] among upcoming tracks
	TotalTracks   int             // upcoming tracks across all pages
	TotalDuration time.Duration   // current and upcoming tracks, streams excluded
	CurrentPage   int
	TotalPages    int
	LoopMode      domain.LoopMode
	Paused        bool
}

// QueueRemoveInput contains the input for the QueueRemove use case.
type QueueRemoveInput struct {
	GuildID  snowflake.ID
	UserID   snowflake.ID
	Position int // 1-indexed queue position
}

// QueueRemoveOutput contains the result of the QueueRemove use case.
type QueueRemoveOutput struct {
	RemovedTrack *domain.Track
}

// QueueMoveInput contains the input for the QueueMove use case.
type QueueMoveInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
	From    int // 1-indexed queue position
	To      int // 1-indexed queue position
}

// QueueMoveOutput contains the result of the QueueMove use case.
type QueueMoveOutput struct {
	Track *domain.Track
}

// QueueShuffleInput contains the input for the QueueShuffle use case.
type QueueShuffleInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// QueueShuffleOutput contains the result of the QueueShuffle use case.
type QueueShuffleOutput struct {
	ShuffledCount int
}

// QueueClearInput contains the input for the QueueClear use case.
type QueueClearInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// QueueClearOutput contains the result of the QueueClear use case.
type QueueClearOutput struct {
	ClearedCount int
}

// QueueLoopInput contains the input for the QueueLoop use case.
type QueueLoopInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// QueueLoopOutput contains the result of the QueueLoop use case.
type QueueLoopOutput struct {
	Enabled bool
}

// QueueService handles queue operations.
type QueueService struct {
	repo       domain.PlayerStateRepository
	publisher  ports.EventPublisher
	voiceState ports.VoiceStateProvider
	localAudio ports.LocalAudioStore
}

// NewQueueService creates a new QueueService.
func NewQueueService(
	repo domain.PlayerStateRepository,
	publisher ports.EventPublisher,
	voiceState ports.VoiceStateProvider,
	localAudio ports.LocalAudioStore,
) *QueueService {
	return &QueueService{
		repo:       repo,
		publisher:  publisher,
		voiceState: voiceState,
		localAudio: localAudio,
	}
}

// Add inserts tracks into the queue and publishes an event that starts
// playback when the player is idle.
// Playlist tracks keep their order starting at the requested position.
func (q *QueueService) Add(ctx context.Context, input QueueAddInput) (*QueueAddOutput, error) {
	if len(input.Tracks) == 0 {
		return nil, ErrNoResults
	}

	state, err := q.repo.Get(ctx, input.GuildID)
	if err != nil {
		return nil, ErrNotConnected
	}

	state.Lock()
	defer state.Unlock()

	queueIsEmpty := state.Queue.IsEmpty()
	index, err := domain.ToInsertIndex(input.Position, state.Queue.UpcomingCount(), queueIsEmpty)
	if err != nil {
		return nil, err
	}

	// An idle player with tracks left over (the node refused the last one)
	// starts again as well.
	startsPlayback := state.IsIdle() && !state.IsPaused()
	state.Queue.Insert(index, input.Tracks...)

	if startsPlayback && input.LoadingMessage != nil {
		msg := *input.LoadingMessage
		state.SetLoadingMessage(&msg)
	}

	publish(q.publisher, domain.TrackEnqueuedEvent{
		GuildID: input.GuildID,
		Count:   len(input.Tracks),
		WasIdle: startsPlayback,
	})

	return &QueueAddOutput{
		Position:       domain.ToDisplayPosition(index, queueIsEmpty),
		Count:          len(input.Tracks),
		StartsPlayback: startsPlayback,
	}, nil
}

// List returns the current queue with pagination.
func (q *QueueService) List(ctx context.Context, input QueueListInput) (*QueueListOutput, error) {
	state, err := q.repo.Get(ctx, input.GuildID)
	if err != nil {
		return nil, ErrNotConnected
	}

	state.Lock()
	defer state.Unlock()

	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	upcoming := state.Queue.Upcoming()
	totalTracks := len(upcoming)
	totalPages := max((totalTracks+pageSize-1)/pageSize, 1)

	// Clamp page to valid range
	page := min(max(input.Page, 1), totalPages)

	start := (page - 1) * pageSize
	end := min(start+pageSize, totalTracks)

	var pageTracks []*domain.Track
	if start < totalTracks {
		pageTracks = upcoming[start:end]
	}

	var totalDuration time.Duration
	for _, track := range state.Queue.List() {
		if !track.IsStream {
			totalDuration += track.Duration
		}
	}

	return &QueueListOutput{
		CurrentTrack:  state.Queue.Current(),
		Tracks:        pageTracks,
		PageStart:     start,
		TotalTracks:   totalTracks,
		TotalDuration: totalDuration,
		CurrentPage:   page,
		TotalPages:    totalPages,
		LoopMode:      state.LoopMode(),
		Paused:        state.IsPaused(),
	}, nil
}

// Remove removes the upcoming track at the given position.
// Position 1 is the current track and has to be skipped instead.
func (q *QueueService) Remove(ctx context.Context, input QueueRemoveInput) (*QueueRemoveOutput, error) {
	state, err := q.lockedState(ctx, input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer state.Unlock()

	if input.Position == 1 && state.Queue.HasCurrent() {
		return nil, ErrIsCurrentTrack
	}

	index, err := domain.ToIndex(input.Position, state.Queue.UpcomingCount(), state.Queue.HasCurrent())
	if err != nil {
		return nil, err
	}

	track := state.Queue.RemoveAt(index)
	if track == nil {
		return nil, ErrOutOfRange
	}
	releaseLocalFiles(q.localAudio, []*domain.Track{track})

	return &QueueRemoveOutput{RemovedTrack: track}, nil
}

// Move moves an upcoming track from one position to another.
func (q *QueueService) Move(ctx context.Context, input QueueMoveInput) (*QueueMoveOutput, error) {
	state, err := q.lockedState(ctx, input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer state.Unlock()

	if (input.From == 1 || input.To == 1) && state.Queue.HasCurrent() {
		return nil, ErrIsCurrentTrack
	}

	upcomingCount := state.Queue.UpcomingCount()
	hasCurrent := state.Queue.HasCurrent()

	from, err := domain.ToIndex(input.From, upcomingCount, hasCurrent)
	if err != nil {
		return nil, err
	}
	to, err := domain.ToIndex(input.To, upcomingCount, hasCurrent)
	if err != nil {
		return nil, err
	}
	if from == to {
		return nil, ErrSamePosition
	}

	track := state.Queue.UpcomingAt(from)
	if !state.Queue.Move(from, to) {
		return nil, ErrOutOfRange
	}

	return &QueueMoveOutput{Track: track}, nil
}

// Shuffle randomizes the order of the upcoming tracks.
func (q *QueueService) Shuffle(ctx context.Context, input QueueShuffleInput) (*QueueShuffleOutput, error) {
	state, err := q.lockedState(ctx, input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer state.Unlock()

	count := state.Queue.UpcomingCount()
	if count < 2 {
		return nil, ErrNotEnoughTracks
	}

	state.Queue.Shuffle()

	return &QueueShuffleOutput{ShuffledCount: count}, nil
}

// Clear removes every upcoming track and keeps the current one playing.
func (q *QueueService) Clear(ctx context.Context, input QueueClearInput) (*QueueClearOutput, error) {
	state, err := q.lockedState(ctx, input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer state.Unlock()

	if state.Queue.UpcomingCount() == 0 {
		return nil, ErrQueueEmpty
	}

	removed := state.Queue.ClearUpcoming()
	releaseLocalFiles(q.localAudio, removed)

	return &QueueClearOutput{ClearedCount: len(removed)}, nil
}

// ToggleLoop switches queue looping on or off.
// Turning it on replaces a track repeat set with /lock.
func (q *QueueService) ToggleLoop(ctx context.Context, input QueueLoopInput) (*QueueLoopOutput, error) {
	state, err := q.lockedState(ctx, input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer state.Unlock()

	mode := state.LoopMode().ToggleQueue()
	state.SetLoopMode(mode)
	return &QueueLoopOutput{Enabled: mode == domain.LoopModeQueue}, nil
}

// lockedState fetches and locks the guild's state after checking the user
// listens in the bot's channel. The caller must Unlock on success.
func (q *QueueService) lockedState(
	ctx context.Context,
	guildID, userID snowflake.ID,
) (*domain.PlayerState, error) {
	state, err := q.repo.Get(ctx, guildID)
	if err != nil {
		return nil, ErrNotConnected
	}

	state.Lock()
	if err := ensureSameVoiceChannel(q.voiceState, state, userID); err != nil {
		state.Unlock()
		return nil, err
	}
	return state, nil
}
