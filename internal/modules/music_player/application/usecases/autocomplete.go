package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// DefaultAutocompleteLimit leaves room for the "add whole playlist" choice
// within Discord's 25 choices.
const DefaultAutocompleteLimit = 24

// GetQueueTracksInput contains the input for the GetQueueTracks use case.
type GetQueueTracksInput struct {
	GuildID snowflake.ID
}

// GetQueueTracksOutput contains the output for the GetQueueTracks use case.
type GetQueueTracksOutput struct {
	Current  *domain.Track   // position 1, nil when nothing plays
	Upcoming []*domain.Track // positions 2 onwards
}

// LoadTracksForAutocompleteInput contains the input for playlist-aware autocomplete.
type LoadTracksForAutocompleteInput struct {
	Query  string
	Source string
	Limit  int // Max individual tracks to return (default 24, leaving room for playlist option)
}

// LoadTracksForAutocompleteOutput contains the result for playlist-aware autocomplete.
type LoadTracksForAutocompleteOutput struct {
	IsPlaylist   bool
	PlaylistName string
	PlaylistURL  string             // Original URL for "add all" option
	TrackCount   int                // Total tracks in playlist
	Tracks       []*ports.TrackInfo // Individual tracks (limited)
}

// AutocompleteService handles autocomplete-related operations.
type AutocompleteService struct {
	repo     domain.PlayerStateRepository
	resolver ports.TrackResolver
}

// NewAutocompleteService creates a new AutocompleteService.
// The resolver is usually the caching one, as every keystroke triggers a lookup.
func NewAutocompleteService(
	repo domain.PlayerStateRepository,
	resolver ports.TrackResolver,
) *AutocompleteService {
	return &AutocompleteService{
		repo:     repo,
		resolver: resolver,
	}
}

// GetQueueTracks returns the current queue for position suggestions.
// The upcoming slice is a copy, safe to read after the state lock is released.
func (s *AutocompleteService) GetQueueTracks(
	ctx context.Context,
	input GetQueueTracksInput,
) *GetQueueTracksOutput {
	state, err := s.repo.Get(ctx, input.GuildID)
	if err != nil {
		return &GetQueueTracksOutput{}
	}

	state.Lock()
	defer state.Unlock()

	return &GetQueueTracksOutput{
		Current:  state.Queue.Current(),
		Upcoming: state.Queue.Upcoming(),
	}
}

// LoadTracksForAutocomplete loads tracks for autocomplete, with special handling for playlists.
// For playlists, returns playlist metadata and a limited list of individual tracks.
// For non-playlists, returns the tracks normally.
func (s *AutocompleteService) LoadTracksForAutocomplete(
	ctx context.Context,
	input LoadTracksForAutocompleteInput,
) (*LoadTracksForAutocompleteOutput, error) {
	if s.resolver == nil || input.Query == "" {
		return &LoadTracksForAutocompleteOutput{}, nil
	}

	query := domain.NewSearchQuery(input.Query, domain.ParseSearchSource(input.Source))
	result, err := s.resolver.LoadTracks(ctx, query.LavalinkQuery())
	if err != nil {
		return nil, err
	}

	if result.IsEmpty() {
		return &LoadTracksForAutocompleteOutput{}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultAutocompleteLimit
	}

	tracks := result.Tracks
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}

	out := &LoadTracksForAutocompleteOutput{
		IsPlaylist: result.Type == ports.LoadTypePlaylist,
		TrackCount: len(result.Tracks),
		Tracks:     tracks,
	}
	if out.IsPlaylist {
		out.PlaylistName = result.PlaylistName
		out.PlaylistURL = query.Query
	}

	return out, nil
}
