// Package backend adapts generative model servers behind a narrow
// request/response contract. The enhancement pipeline only ever sends one
// instruction plus one message and reads back plain text, so the interface
// stays deliberately small.
package backend

import (
	"context"
	"time"
)

// GenerationRequest is a single non-streaming completion request.
// Zero MaxTokens or Temperature fall back to the backend's configured
// defaults.
type GenerationRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Generation is the backend's reply, already trimmed.
type Generation struct {
	Text            string
	Model           string
	TokensGenerated int
	Duration        time.Duration
}

// Generator is implemented by each backend type. Implementations are safe
// for concurrent use.
type Generator interface {
	Name() string
	Model() string
	BaseURL() string
	Generate(ctx context.Context, req GenerationRequest) (*Generation, error)
	// Healthy reports whether the backend answers its health endpoint.
	Healthy(ctx context.Context) bool
	ListModels(ctx context.Context) ([]string, error)
}
