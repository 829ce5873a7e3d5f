package services

import (
	"context"

	"github.com/nicorenaldo/supercell-hackathon/pkg/chat"
)

// Director responses must be deterministic enough to parse reliably,
// so every provider is pinned to a low temperature.
const DirectorTemperature = 0.2

// LLMService defines the interface for interacting with an LLM API
type LLMService interface {
	// InitModel initializes the LLM model on startup
	InitModel(ctx context.Context, modelName string) error

	// Chat sends the conversation and returns the raw completion text
	Chat(ctx context.Context, messages []chat.Message) (string, error)

	// IsModelReady checks if the specified model is ready for use
	IsModelReady(ctx context.Context, modelName string) (bool, error)
}
