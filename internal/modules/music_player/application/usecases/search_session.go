package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// StartSearchInput contains the input for the StartSearch use case.
type StartSearchInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
	Query   string
	Source  string
}

// StartSearchOutput contains the result of the StartSearch use case.
type StartSearchOutput struct {
	Tracks []*domain.Track
}

// SelectSearchInput contains the input for the SelectSearch use case.
type SelectSearchInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
	Index   int // 0-indexed result

	// LoadingMessage is the search prompt, reused as "Now Playing" when the
	// pick starts playback.
	LoadingMessage *domain.NowPlayingMessage
}

// SelectSearchOutput contains the result of the SelectSearch use case.
type SelectSearchOutput struct {
	Track          *domain.Track
	Position       int
	StartsPlayback bool
}

// SearchSessionService runs the pick-one-of-five flow of /search.
type SearchSessionService struct {
	sessions ports.SearchSessionStore
	loader   *TrackLoaderService
	queue    *QueueService
	now      domain.Clock
}

// NewSearchSessionService creates a new SearchSessionService.
func NewSearchSessionService(
	sessions ports.SearchSessionStore,
	loader *TrackLoaderService,
	queue *QueueService,
	clock domain.Clock,
) *SearchSessionService {
	if clock == nil {
		clock = domain.SystemClock
	}
	return &SearchSessionService{
		sessions: sessions,
		loader:   loader,
		queue:    queue,
		now:      clock,
	}
}

// Start searches and keeps the results until the user picks one.
// A user can only have one pending search at a time.
func (s *SearchSessionService) Start(
	ctx context.Context,
	input StartSearchInput,
) (*StartSearchOutput, error) {
	if _, ok := s.sessions.Get(input.UserID); ok {
		return nil, ErrSearchActive
	}

	tracks, err := s.loader.Search(ctx, LoadTracksInput{
		GuildID:     input.GuildID,
		RequesterID: input.UserID,
		Query:       input.Query,
		Source:      input.Source,
	})
	if err != nil {
		return nil, err
	}

	s.sessions.Put(&ports.SearchSession{
		GuildID:   input.GuildID,
		UserID:    input.UserID,
		Tracks:    tracks,
		CreatedAt: s.now(),
	})

	return &StartSearchOutput{Tracks: tracks}, nil
}

// Select enqueues the picked result and ends the session.
func (s *SearchSessionService) Select(
	ctx context.Context,
	input SelectSearchInput,
) (*SelectSearchOutput, error) {
	session, ok := s.sessions.Get(input.UserID)
	if !ok || session.GuildID != input.GuildID {
		return nil, ErrSearchExpired
	}
	if input.Index < 0 || input.Index >= len(session.Tracks) {
		return nil, ErrInvalidSelection
	}

	track := session.Tracks[input.Index]
	out, err := s.queue.Add(ctx, QueueAddInput{
		GuildID:        input.GuildID,
		Tracks:         []*domain.Track{track},
		LoadingMessage: input.LoadingMessage,
	})
	if err != nil {
		return nil, err
	}

	s.sessions.Delete(input.UserID)

	return &SelectSearchOutput{
		Track:          track,
		Position:       out.Position,
		StartsPlayback: out.StartsPlayback,
	}, nil
}

// Cancel drops the user's pending search.
func (s *SearchSessionService) Cancel(userID snowflake.ID) error {
	if !s.sessions.Delete(userID) {
		return ErrSearchExpired
	}
	return nil
}
