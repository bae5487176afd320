package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// unknownTitle is what the audio node reports for files without title tags.
const unknownTitle = "Unknown title"

// LoadFileInput contains the input for the LoadFile use case.
type LoadFileInput struct {
	GuildID     snowflake.ID
	RequesterID snowflake.ID
	FileName    string
	URL         string
	Size        int64
}

// LoadFileOutput contains the result of the LoadFile use case.
type LoadFileOutput struct {
	Track *domain.Track
	Local bool // true when the file is served from the local audio store
}

// FilePlaybackService turns uploaded attachments into tracks.
type FilePlaybackService struct {
	resolver ports.TrackResolver
	store    ports.LocalAudioStore
	loader   *TrackLoaderService
	maxSize  int64
}

// NewFilePlaybackService creates a new FilePlaybackService.
// A maxSize of zero or less disables the size check.
func NewFilePlaybackService(
	resolver ports.TrackResolver,
	store ports.LocalAudioStore,
	loader *TrackLoaderService,
	maxSize int64,
) *FilePlaybackService {
	return &FilePlaybackService{
		resolver: resolver,
		store:    store,
		loader:   loader,
		maxSize:  maxSize,
	}
}

// MaxSize returns the upload limit in bytes.
func (f *FilePlaybackService) MaxSize() int64 {
	return f.maxSize
}

// LoadFile resolves an attachment through the audio node. When the node
// cannot fetch the attachment itself, the file is downloaded to the local
// audio store and loaded from there instead.
func (f *FilePlaybackService) LoadFile(ctx context.Context, input LoadFileInput) (*LoadFileOutput, error) {
	ext := strings.ToLower(filepath.Ext(input.FileName))
	if !slices.Contains(ports.SupportedAudioExtensions, ext) {
		return nil, ErrUnsupportedFile
	}
	if f.maxSize > 0 && input.Size > f.maxSize {
		return nil, ErrFileTooLarge
	}

	info, err := f.load(ctx, input.URL)
	if err == nil {
		return &LoadFileOutput{Track: f.newTrack(input, info, "")}, nil
	}

	slog.Info("audio node could not load attachment, falling back to local copy",
		"guild", input.GuildID,
		"file", input.FileName,
		"error", err,
	)

	if f.store == nil || !f.store.Enabled() {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	stored, err := f.store.Download(ctx, input.URL, input.FileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	info, err = f.load(ctx, f.store.URL(stored))
	if err != nil {
		if rmErr := f.store.Remove(stored); rmErr != nil {
			slog.Warn("failed to remove local audio file", "file", stored, "error", rmErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	return &LoadFileOutput{Track: f.newTrack(input, info, stored), Local: true}, nil
}

// Discard releases the local copy of a track that never made it into the queue.
func (f *FilePlaybackService) Discard(track *domain.Track) {
	releaseLocalFiles(f.store, []*domain.Track{track})
}

func (f *FilePlaybackService) load(ctx context.Context, url string) (*ports.TrackInfo, error) {
	result, err := f.resolver.LoadTracks(ctx, url)
	if err != nil {
		return nil, err
	}
	if result.Type == ports.LoadTypeError {
		return nil, fmt.Errorf("audio node error: %s", result.Error)
	}
	if result.IsEmpty() {
		return nil, ErrNoResults
	}
	return result.Tracks[0], nil
}

func (f *FilePlaybackService) newTrack(
	input LoadFileInput,
	info *ports.TrackInfo,
	localFile string,
) *domain.Track {
	meta := info.Metadata()
	if meta.Title == "" || meta.Title == unknownTitle {
		meta.Title = input.FileName
	}
	if meta.URI == "" || localFile != "" {
		meta.URI = input.URL
	}

	var requester domain.Requester
	if f.loader != nil {
		requester = f.loader.requester(input.GuildID, input.RequesterID)
	} else {
		requester = domain.Requester{ID: input.RequesterID}
	}

	track := domain.NewTrack(meta, requester)
	track.LocalFile = localFile
	return track
}
