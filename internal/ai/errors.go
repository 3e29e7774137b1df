package ai

import "github.com/AjayRao0904/database-chatbot/pkg/models"

// Re-exported so callers outside the provider packages keep a single import.
var (
	ErrProviderUnavailable = models.ErrProviderUnavailable
	ErrInferenceTimeout    = models.ErrInferenceTimeout
	ErrInvalidResponse     = models.ErrInvalidResponse
)
