// Package models contains shared data models used across the chatbot codebase.
package models

import (
	"context"
	"errors"
)

// Sentinel errors shared by all completion providers. Implementations wrap
// them so callers can map failures to responses without knowing the backend.
var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
)

// CompletionProvider is the core interface that all text-completion backends
// must implement. Never call a specific provider directly; always inject this
// interface.
type CompletionProvider interface {
	// Complete sends a system instruction and a user instruction and returns
	// the raw completion text. Each call is stateless; no conversation memory
	// is kept between calls.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// Name returns the provider identifier (e.g., "ollama", "anthropic").
	Name() string
}
