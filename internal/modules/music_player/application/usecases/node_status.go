package usecases

import (
	"context"
	"fmt"

	"github.com/sglre6355/tunebox/internal/modules/music_player/application/ports"
)

// NodeStatusService reports the health of the audio node for /ping.
type NodeStatusService struct {
	provider ports.NodeStatusProvider
}

// NewNodeStatusService creates a new NodeStatusService.
func NewNodeStatusService(provider ports.NodeStatusProvider) *NodeStatusService {
	return &NodeStatusService{provider: provider}
}

// Status returns the node's current status.
func (s *NodeStatusService) Status(ctx context.Context) (*NodeStatus, error) {
	status, err := s.provider.NodeStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get node status: %w", err)
	}
	return status, nil
}
