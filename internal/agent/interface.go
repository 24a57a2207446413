package agent

import "context"

// AgentInterface defines the contract for the discovery agent
type AgentInterface interface {
	Discover(ctx context.Context) (string, error)
}
