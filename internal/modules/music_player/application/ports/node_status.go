package ports

import (
	"context"
	"time"
)

// NodeStatus is a snapshot of the audio node's health.
type NodeStatus struct {
	Name           string
	Connected      bool
	Version        string
	Latency        time.Duration // round trip of a REST call, 0 when it failed
	Players        int
	PlayingPlayers int
	Uptime         time.Duration
	MemoryUsed     uint64
	CPUCores       int
	LavalinkLoad   float64
}

// NodeStatusProvider reports the state of the audio node.
type NodeStatusProvider interface {
	NodeStatus(ctx context.Context) (*NodeStatus, error)
}
