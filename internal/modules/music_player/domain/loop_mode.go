package domain

// LoopMode decides what Queue.Advance does with a track that finished normally.
type LoopMode int

const (
	LoopModeNone  LoopMode = iota // drop it
	LoopModeTrack                 // play it again (/lock)
	LoopModeQueue                 // move it behind the last upcoming track (/queue loop)
)

// ToggleQueue switches queue looping on or off. Turning it on replaces
// track repeat.
func (m LoopMode) ToggleQueue() LoopMode {
	if m == LoopModeQueue {
		return LoopModeNone
	}
	return LoopModeQueue
}

func (m LoopMode) String() string {
	switch m {
	case LoopModeTrack:
		return "track"
	case LoopModeQueue:
		return "queue"
	default:
		return "none"
	}
}
