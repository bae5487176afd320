package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// PauseInput contains the input for the Pause use case.
type PauseInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// ResumeInput contains the input for the Resume use case.
type ResumeInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// SkipInput contains the input for the Skip use case.
type SkipInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
	Amount  int // number of tracks to skip, the current one included (defaults to 1)
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	SkippedTrack *domain.Track
	SkippedCount int
	NextTrack    *domain.Track // nil if the queue ran out
}

// SeekInput contains the input for the Seek use case.
type SeekInput struct {
	GuildID  snowflake.ID
	UserID   snowflake.ID
	Position time.Duration
}

// ForwardInput contains the input for the Forward use case.
type ForwardInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
	Amount  time.Duration
}

// RewindInput contains the input for the Rewind use case.
type RewindInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
	Amount  time.Duration
}

// SeekOutput contains the result of the Seek, Forward and Rewind use cases.
type SeekOutput struct {
	Track    *domain.Track
	Position time.Duration

	// Skipped is set when a forward ran past the end and the next track was started instead.
	Skipped   bool
	NextTrack *domain.Track
}

// NowPlayingInput contains the input for the NowPlaying use case.
type NowPlayingInput struct {
	GuildID snowflake.ID
}

// NowPlayingOutput contains the result of the NowPlaying use case.
type NowPlayingOutput struct {
	Track         *domain.Track
	Position      time.Duration
	Paused        bool
	LoopMode      domain.LoopMode
	UpcomingCount int
}

// StopInput contains the input for the Stop use case.
type StopInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// StopOutput contains the result of the Stop use case.
type StopOutput struct {
	ClearedCount int
}

// LockInput contains the input for the Lock and Unlock use cases.
type LockInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// LockOutput contains the result of the Lock and Unlock use cases.
type LockOutput struct {
	Track *domain.Track
}

// PlaybackService handles playback operations.
type PlaybackService struct {
	repo        domain.PlayerStateRepository
	audioPlayer ports.AudioPlayer
	voiceState  ports.VoiceStateProvider
	publisher   ports.EventPublisher
	localAudio  ports.LocalAudioStore
	estimator   *domain.PositionEstimator
	now         domain.Clock
}

// NewPlaybackService creates a new PlaybackService.
// A nil clock uses the system clock.
func NewPlaybackService(
	repo domain.PlayerStateRepository,
	audioPlayer ports.AudioPlayer,
	voiceState ports.VoiceStateProvider,
	publisher ports.EventPublisher,
	localAudio ports.LocalAudioStore,
	clock domain.Clock,
) *PlaybackService {
	if clock == nil {
		clock = domain.SystemClock
	}
	return &PlaybackService{
		repo:        repo,
		audioPlayer: audioPlayer,
		voiceState:  voiceState,
		publisher:   publisher,
		localAudio:  localAudio,
		estimator:   domain.NewPositionEstimator(clock),
		now:         clock,
	}
}

// Pause pauses the current playback and freezes the position estimate.
func (p *PlaybackService) Pause(ctx context.Context, input PauseInput) error {
	state, err := p.lockedState(ctx, input.GuildID, input.UserID)
	if err != nil {
		return err
	}
	defer state.Unlock()

	if state.IsIdle() {
		return ErrNotPlaying
	}
	if state.IsPaused() {
		return ErrAlreadyPaused
	}

	if err := p.audioPlayer.Pause(ctx, input.GuildID); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}

	state.SetPaused(true, p.now())

	return nil
}

// Resume resumes the paused playback and restarts the position estimate.
func (p *PlaybackService) Resume(ctx context.Context, input ResumeInput) error {
	state, err := p.lockedState(ctx, input.GuildID, input.UserID)
	if err != nil {
		return err
	}
	defer state.Unlock()

	if state.IsIdle() {
		return ErrNotPlaying
	}
	if !state.IsPaused() {
		return ErrNotPaused
	}

	if err := p.audioPlayer.Resume(ctx, input.GuildID); err != nil {
		return fmt.Errorf("failed to resume playback: %w", err)
	}

	state.SetPaused(false, p.now())

	return nil
}

// Skip skips the current track and amount-1 upcoming tracks, then plays the next one.
// Skipping everything in the queue stops playback. Track repeat is ignored;
// with queue loop the skipped tracks go to the back of the queue.
func (p *PlaybackService) Skip(ctx context.Context, input SkipInput) (*SkipOutput, error) {
	state, err := p.lockedState(ctx, input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer state.Unlock()

	return p.skip(ctx, state, max(input.Amount, 1))
}

func (p *PlaybackService) skip(
	ctx context.Context,
	state *domain.PlayerState,
	amount int,
) (*SkipOutput, error) {
	skipped := state.CurrentTrack()
	if skipped == nil {
		return nil, ErrNotPlaying
	}

	if amount >= state.Queue.Len() {
		count := state.Queue.Len()
		if err := p.stop(ctx, state); err != nil {
			return nil, err
		}
		return &SkipOutput{SkippedTrack: skipped, SkippedCount: count}, nil
	}

	dropped := state.Queue.Skip(amount)
	if state.LoopMode() == domain.LoopModeQueue {
		state.Queue.Append(dropped...)
	} else {
		releaseLocalFiles(p.localAudio, dropped)
	}

	next, err := p.playCurrent(ctx, state)
	if err != nil {
		return nil, err
	}

	return &SkipOutput{
		SkippedTrack: skipped,
		SkippedCount: len(dropped),
		NextTrack:    next,
	}, nil
}

// Seek moves the playhead of the current track to an absolute position.
func (p *PlaybackService) Seek(ctx context.Context, input SeekInput) (*SeekOutput, error) {
	state, track, err := p.seekableState(ctx, input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer state.Unlock()

	if input.Position < 0 {
		return nil, ErrInvalidTimestamp
	}
	if input.Position >= track.Duration {
		return nil, ErrSeekOutOfRange
	}

	return p.seek(ctx, state, track, input.Position)
}

// Forward moves the playhead ahead by the given amount.
// Running past the end of the track skips to the next one.
func (p *PlaybackService) Forward(ctx context.Context, input ForwardInput) (*SeekOutput, error) {
	state, track, err := p.seekableState(ctx, input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer state.Unlock()

	target := p.position(state, track) + input.Amount
	if target >= track.Duration {
		out, err := p.skip(ctx, state, 1)
		if err != nil {
			return nil, err
		}
		return &SeekOutput{Track: track, Skipped: true, NextTrack: out.NextTrack}, nil
	}

	return p.seek(ctx, state, track, target)
}

// Rewind moves the playhead back by the given amount, stopping at the start of the track.
func (p *PlaybackService) Rewind(ctx context.Context, input RewindInput) (*SeekOutput, error) {
	state, track, err := p.seekableState(ctx, input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer state.Unlock()

	target := max(p.position(state, track)-input.Amount, 0)

	return p.seek(ctx, state, track, target)
}

// NowPlaying returns the current track and its estimated position.
func (p *PlaybackService) NowPlaying(ctx context.Context, input NowPlayingInput) (*NowPlayingOutput, error) {
	state, err := p.repo.Get(ctx, input.GuildID)
	if err != nil {
		return nil, ErrNotConnected
	}

	state.Lock()
	defer state.Unlock()

	track := state.CurrentTrack()
	if track == nil || state.IsIdle() {
		return nil, ErrNotPlaying
	}

	return &NowPlayingOutput{
		Track:         track,
		Position:      p.position(state, track),
		Paused:        state.IsPaused(),
		LoopMode:      state.LoopMode(),
		UpcomingCount: state.Queue.UpcomingCount(),
	}, nil
}

// Stop clears the queue and stops playback. The bot stays in the voice channel.
func (p *PlaybackService) Stop(ctx context.Context, input StopInput) (*StopOutput, error) {
	state, err := p.lockedState(ctx, input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer state.Unlock()

	if state.Queue.IsEmpty() {
		return nil, ErrNotPlaying
	}

	count := state.Queue.Len()
	if err := p.stop(ctx, state); err != nil {
		return nil, err
	}

	return &StopOutput{ClearedCount: count}, nil
}

// Lock puts the current track on repeat.
func (p *PlaybackService) Lock(ctx context.Context, input LockInput) (*LockOutput, error) {
	state, err := p.lockedState(ctx, input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer state.Unlock()

	track := state.CurrentTrack()
	if track == nil {
		return nil, ErrNotPlaying
	}
	if state.LoopMode() == domain.LoopModeTrack {
		return nil, ErrAlreadyLocked
	}

	state.SetLoopMode(domain.LoopModeTrack)

	return &LockOutput{Track: track}, nil
}

// Unlock takes the current track off repeat.
func (p *PlaybackService) Unlock(ctx context.Context, input LockInput) (*LockOutput, error) {
	state, err := p.lockedState(ctx, input.GuildID, input.UserID)
	if err != nil {
		return nil, err
	}
	defer state.Unlock()

	if state.LoopMode() != domain.LoopModeTrack {
		return nil, ErrNotLocked
	}

	state.SetLoopMode(domain.LoopModeNone)

	return &LockOutput{Track: state.CurrentTrack()}, nil
}

// stop empties the queue and halts the audio node. Callers hold the state lock.
func (p *PlaybackService) stop(ctx context.Context, state *domain.PlayerState) error {
	guildID := state.GuildID()

	if err := p.audioPlayer.Stop(ctx, guildID); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}

	releaseLocalFiles(p.localAudio, state.Queue.Clear())
	state.SetPlaybackActive(false)
	state.ClearSnapshot()

	publish(p.publisher, domain.PlaybackStoppedEvent{
		GuildID:    guildID,
		NowPlaying: state.NowPlayingMessage(),
	})
	state.ClearNowPlayingMessage()
	state.ClearLoadingMessage()

	return nil
}

// playCurrent starts the track at the head of the queue. Callers hold the state lock.
//
// A track the node refuses is reported as a failed track end, the same way
// the node reports tracks that fail while loading, so the queue moves past it.
// The player counts as active until that end is handled.
func (p *PlaybackService) playCurrent(
	ctx context.Context,
	state *domain.PlayerState,
) (*domain.Track, error) {
	guildID := state.GuildID()
	track := state.CurrentTrack()
	state.ClearSnapshot()

	if err := p.audioPlayer.Play(ctx, guildID, track); err != nil {
		state.SetPlaybackActive(true)
		publish(p.publisher, domain.TrackEndedEvent{
			GuildID: guildID,
			TrackID: track.ID,
			Title:   track.Title,
			Reason:  domain.TrackEndLoadFailed,
			Message: err.Error(),
		})
		return nil, fmt.Errorf("failed to play track: %w", err)
	}

	state.SetPlaybackActive(true)
	state.SetPaused(false, p.now())

	publish(p.publisher, domain.NewCurrentTrackChangedEvent(guildID))

	return track, nil
}

// seek asks the audio node to move the playhead and records the snapshot
// once it has accepted. Callers hold the state lock.
func (p *PlaybackService) seek(
	ctx context.Context,
	state *domain.PlayerState,
	track *domain.Track,
	target time.Duration,
) (*SeekOutput, error) {
	if err := p.audioPlayer.Seek(ctx, state.GuildID(), target); err != nil {
		return nil, fmt.Errorf("failed to seek: %w", err)
	}

	state.SetSnapshot(p.estimator.RecordSeek(track.ID, target, state.IsPaused()))

	return &SeekOutput{Track: track, Position: target}, nil
}

func (p *PlaybackService) position(state *domain.PlayerState, track *domain.Track) time.Duration {
	return p.estimator.Estimate(
		track.ID,
		track.Duration,
		p.audioPlayer.Position(state.GuildID()),
		state.Snapshot(),
	)
}

// seekableState returns the locked state and its current track after
// checking the track accepts seeks. The caller must Unlock on success.
func (p *PlaybackService) seekableState(
	ctx context.Context,
	guildID, userID snowflake.ID,
) (*domain.PlayerState, *domain.Track, error) {
	state, err := p.lockedState(ctx, guildID, userID)
	if err != nil {
		return nil, nil, err
	}

	track := state.CurrentTrack()
	if track == nil || state.IsIdle() {
		state.Unlock()
		return nil, nil, ErrNotPlaying
	}
	if !track.CanSeek() {
		state.Unlock()
		return nil, nil, ErrNotSeekable
	}

	return state, track, nil
}

// lockedState fetches and locks the guild's state after checking the user
// listens in the bot's channel. The caller must Unlock on success.
func (p *PlaybackService) lockedState(
	ctx context.Context,
	guildID, userID snowflake.ID,
) (*domain.PlayerState, error) {
	state, err := p.repo.Get(ctx, guildID)
	if err != nil {
		return nil, ErrNotConnected
	}

	state.Lock()
	if err := ensureSameVoiceChannel(p.voiceState, state, userID); err != nil {
		state.Unlock()
		return nil, err
	}
	return state, nil
}
