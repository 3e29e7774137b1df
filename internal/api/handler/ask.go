package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/AjayRao0904/database-chatbot/internal/ai"
	"github.com/AjayRao0904/database-chatbot/internal/api/response"
	"github.com/AjayRao0904/database-chatbot/internal/cache"
	"github.com/AjayRao0904/database-chatbot/pkg/models"
)

const (
	maxQuestionLen = 2000
	answerCacheTTL = 15 * time.Minute
)

// QuestionProcessor defines the interface the ask handler depends on.
type QuestionProcessor interface {
	ProcessQuestion(ctx context.Context, question string, history []models.ConversationMessage) (models.AskResult, error)
}

// NewAskHandler returns an http.HandlerFunc for POST /api/v1/ask. Answers to
// history-free questions are cached in Redis; questions with history are
// always processed fresh since the answer depends on the conversation.
func NewAskHandler(processor QuestionProcessor, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Question string                       `json:"question"`
			History  []models.ConversationMessage `json:"history"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.Question == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "question is required", nil)
			return
		}
		if len(req.Question) > maxQuestionLen {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "question is too long", nil)
			return
		}

		cacheable := len(req.History) == 0
		cacheKey := cache.AnswerKey(req.Question)

		if cacheable {
			if cached, ok, err := c.Get(r.Context(), cacheKey); err == nil && ok {
				var result models.AskResult
				if err := json.Unmarshal(cached, &result); err == nil {
					w.Header().Set("X-Cache", "HIT")
					response.JSON(w, result)
					return
				}
			}
		}

		result, err := processor.ProcessQuestion(r.Context(), req.Question, req.History)
		if err != nil {
			slog.Error("question processing failed", "error", err)
			switch {
			case errors.Is(err, ai.ErrProviderUnavailable):
				response.Error(w, http.StatusBadGateway, "AI_PROVIDER_UNAVAILABLE",
					"The AI provider is not available", nil)
			case errors.Is(err, ai.ErrInferenceTimeout):
				response.Error(w, http.StatusGatewayTimeout, "AI_INFERENCE_TIMEOUT",
					"AI processing took too long and was cancelled", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		if cacheable {
			if body, err := json.Marshal(result); err == nil {
				if err := c.Set(r.Context(), cacheKey, body, answerCacheTTL); err != nil {
					slog.Info("answer cache write failed", "error", err)
				}
			}
		}

		response.JSON(w, result)
	}
}
