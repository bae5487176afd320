package usecases

import (
	"errors"

	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// Domain errors for the music player module.
var (
	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrUserNotInVoice is returned when the user is not in a voice channel.
	ErrUserNotInVoice = errors.New("you must be in a voice channel")

	// ErrNotSameVoiceChannel is returned when the user is listening somewhere else.
	ErrNotSameVoiceChannel = errors.New("you must be in the same voice channel as the bot")

	// ErrNotPlaying is returned when no track is currently playing.
	ErrNotPlaying = errors.New("nothing is currently playing")

	// ErrAlreadyPaused is returned when trying to pause while already paused.
	ErrAlreadyPaused = errors.New("playback is already paused")

	// ErrNotPaused is returned when trying to resume while not paused.
	ErrNotPaused = errors.New("playback is not paused")

	// ErrNoResults is returned when a search yields no results.
	ErrNoResults = errors.New("no results found")

	// ErrQueueEmpty is returned when there are no upcoming tracks.
	ErrQueueEmpty = errors.New("there are no upcoming tracks in the queue")

	// ErrNotEnoughTracks is returned when shuffling fewer than two upcoming tracks.
	ErrNotEnoughTracks = errors.New("need at least two upcoming tracks to shuffle")

	// ErrIsCurrentTrack is returned when trying to remove or move the currently playing track.
	// The handler should point the user to skip instead.
	ErrIsCurrentTrack = errors.New("position 1 is the current track, use /skip instead")

	// ErrSamePosition is returned when a move would not change the queue.
	ErrSamePosition = errors.New("the track is already at that position")

	// ErrNotSeekable is returned when the current track does not support seeking.
	ErrNotSeekable = errors.New("the current track cannot be seeked")

	// ErrSeekOutOfRange is returned when seeking past the end of the track.
	ErrSeekOutOfRange = errors.New("position is beyond the end of the track")

	// ErrAlreadyLocked is returned when the current track is already on repeat.
	ErrAlreadyLocked = errors.New("the current track is already locked on repeat")

	// ErrNotLocked is returned when unlocking a track that is not on repeat.
	ErrNotLocked = errors.New("the current track is not locked")

	// ErrLoadFailed is returned when loading tracks fails.
	ErrLoadFailed = errors.New("failed to load track")

	// ErrUnsupportedFile is returned for attachments that are not audio files.
	ErrUnsupportedFile = errors.New("unsupported file type, use mp3, opus, ogg, wav or flac")

	// ErrFileTooLarge is returned when an attachment exceeds the upload limit.
	ErrFileTooLarge = errors.New("file is too large")

	// ErrSearchActive is returned when the user already has a pending search.
	ErrSearchActive = errors.New("you already have an active search, pick a result or cancel it first")

	// ErrSearchExpired is returned when the pending search timed out or was cancelled.
	ErrSearchExpired = errors.New("this search has expired")

	// ErrInvalidSelection is returned when the picked result does not exist.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrOutOfRange is returned when a queue position does not point at an upcoming track.
	ErrOutOfRange = domain.ErrOutOfRange

	// ErrInvalidPosition is returned when an insert position is below 2.
	ErrInvalidPosition = domain.ErrInvalidPosition
)
