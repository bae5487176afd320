package usecases

import (
	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebox/internal/modules/music_player/domain"
)

// Re-export domain types for presentation layer use.
// This allows presentation to depend only on usecases without importing domain directly.

// Track is an alias for domain.Track.
type Track = domain.Track

// TrackID is an alias for domain.TrackID.
type TrackID = domain.TrackID

// LoopMode is an alias for domain.LoopMode.
type LoopMode = domain.LoopMode

// Loop modes.
const (
	LoopModeNone  = domain.LoopModeNone
	LoopModeTrack = domain.LoopModeTrack
	LoopModeQueue = domain.LoopModeQueue
)

// NowPlayingMessage is an alias for domain.NowPlayingMessage.
type NowPlayingMessage = domain.NowPlayingMessage

// TrackInfo is an alias for ports.TrackInfo.
type TrackInfo = ports.TrackInfo

// NodeStatus is an alias for ports.NodeStatus.
type NodeStatus = ports.NodeStatus

// PlayerStateRepository is an alias for domain.PlayerStateRepository.
type PlayerStateRepository = domain.PlayerStateRepository

// Timestamp helpers shared with the presentation layer.
var (
	FormatDuration = domain.FormatDuration
	ParseTimestamp = domain.ParseTimestamp
)

// ErrInvalidTimestamp is returned by ParseTimestamp.
var ErrInvalidTimestamp = domain.ErrInvalidTimestamp
