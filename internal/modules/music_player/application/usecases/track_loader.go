package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// SearchResultLimit is how many results /search offers to pick from.
const SearchResultLimit = 5

// LoadTracksInput contains the input for the LoadTracks use case.
type LoadTracksInput struct {
	GuildID     snowflake.ID
	RequesterID snowflake.ID
	Query       string
	Source      string // search source option, ignored for URLs
}

// LoadTracksOutput contains the result of the LoadTracks use case.
type LoadTracksOutput struct {
	Tracks       []*domain.Track
	IsPlaylist   bool
	PlaylistName string
}

// SearchTracksInput contains the input for the SearchTracks use case.
type SearchTracksInput struct {
	Query  string
	Source string
	Limit  int
}

// SearchTracksOutput contains the result of the SearchTracks use case.
type SearchTracksOutput struct {
	Tracks []*ports.TrackInfo
}

// TrackLoaderService handles track loading operations.
type TrackLoaderService struct {
	trackResolver    ports.TrackResolver
	userInfoProvider ports.UserInfoProvider
}

// NewTrackLoaderService creates a new TrackLoaderService.
func NewTrackLoaderService(
	trackResolver ports.TrackResolver,
	userInfoProvider ports.UserInfoProvider,
) *TrackLoaderService {
	return &TrackLoaderService{
		trackResolver:    trackResolver,
		userInfoProvider: userInfoProvider,
	}
}

// LoadTracks resolves a URL or search term into playable tracks.
// A playlist URL yields every track of the playlist; a search yields its top result.
func (s *TrackLoaderService) LoadTracks(
	ctx context.Context,
	input LoadTracksInput,
) (*LoadTracksOutput, error) {
	query := domain.NewSearchQuery(input.Query, domain.ParseSearchSource(input.Source))
	if !query.IsValid() {
		return nil, ErrNoResults
	}

	result, err := s.trackResolver.LoadTracks(ctx, query.LavalinkQuery())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	if result.Type == ports.LoadTypeError {
		return nil, fmt.Errorf("%w: %s", ErrLoadFailed, result.Error)
	}
	if result.IsEmpty() {
		return nil, ErrNoResults
	}

	infos := result.Tracks
	if result.Type != ports.LoadTypePlaylist {
		infos = infos[:1]
	}

	requester := s.requester(input.GuildID, input.RequesterID)
	tracks := make([]*domain.Track, len(infos))
	for i, info := range infos {
		tracks[i] = domain.NewTrack(info.Metadata(), requester)
	}

	return &LoadTracksOutput{
		Tracks:       tracks,
		IsPlaylist:   result.Type == ports.LoadTypePlaylist,
		PlaylistName: result.PlaylistName,
	}, nil
}

// SearchTracks searches for tracks matching the query.
// Empty queries and empty results are not errors.
func (s *TrackLoaderService) SearchTracks(
	ctx context.Context,
	input SearchTracksInput,
) (*SearchTracksOutput, error) {
	if input.Query == "" {
		return &SearchTracksOutput{Tracks: nil}, nil
	}

	query := domain.NewSearchQuery(input.Query, domain.ParseSearchSource(input.Source))
	result, err := s.trackResolver.LoadTracks(ctx, query.LavalinkQuery())
	if err != nil {
		return nil, err
	}

	if result.IsEmpty() {
		return &SearchTracksOutput{Tracks: nil}, nil
	}

	limit := input.Limit
	if limit <= 0 || limit > len(result.Tracks) {
		limit = len(result.Tracks)
	}

	return &SearchTracksOutput{
		Tracks: result.Tracks[:limit],
	}, nil
}

// Search returns the top results for a search term as tracks ready to enqueue.
func (s *TrackLoaderService) Search(
	ctx context.Context,
	input LoadTracksInput,
) ([]*domain.Track, error) {
	out, err := s.SearchTracks(ctx, SearchTracksInput{
		Query:  input.Query,
		Source: input.Source,
		Limit:  SearchResultLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	if len(out.Tracks) == 0 {
		return nil, ErrNoResults
	}

	requester := s.requester(input.GuildID, input.RequesterID)
	tracks := make([]*domain.Track, len(out.Tracks))
	for i, info := range out.Tracks {
		tracks[i] = domain.NewTrack(info.Metadata(), requester)
	}
	return tracks, nil
}

// requester looks up display info for the user. Lookup failures leave the
// name empty rather than failing the load.
func (s *TrackLoaderService) requester(guildID, userID snowflake.ID) domain.Requester {
	requester := domain.Requester{ID: userID}
	if s.userInfoProvider == nil || userID == 0 {
		return requester
	}

	info, err := s.userInfoProvider.GetUserInfo(guildID, userID)
	if err != nil {
		slog.Warn("failed to get requester info", "guild", guildID, "user", userID, "error", err)
		return requester
	}

	requester.Name = info.DisplayName
	requester.AvatarURL = info.AvatarURL
	return requester
}
