package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AjayRao0904/database-chatbot/pkg/models"
)

// ClassifierStrategy decides how a question is labeled. The orchestrator only
// depends on this interface, so the lexical-completion heuristic below can be
// swapped without touching the state machine.
type ClassifierStrategy interface {
	Classify(ctx context.Context, question string, history []models.ConversationMessage) (models.Classification, error)
}

// CompletionClassifier labels questions by asking the completion provider for
// a single category token.
type CompletionClassifier struct {
	provider models.CompletionProvider
}

// NewCompletionClassifier creates a CompletionClassifier.
func NewCompletionClassifier(provider models.CompletionProvider) *CompletionClassifier {
	return &CompletionClassifier{provider: provider}
}

// Classify labels the question. An unrecognized token falls back to "data",
// treating the question as an analytical query rather than surfacing an
// error. A provider failure propagates; there are no retries at this stage.
func (c *CompletionClassifier) Classify(ctx context.Context, question string, history []models.ConversationMessage) (models.Classification, error) {
	response, err := c.provider.Complete(ctx, classifyPrompt, classifyUserPrompt(question, history))
	if err != nil {
		return "", fmt.Errorf("classification failed: %w", err)
	}

	label := models.Classification(strings.Trim(strings.ToLower(strings.TrimSpace(response)), `"'`))
	if !label.Valid() {
		slog.Info("classifier returned unknown label, defaulting to data", "label", string(label))
		return models.ClassificationData, nil
	}
	return label, nil
}

// classifyUserPrompt prefixes the question with caller-held history so
// follow-ups classify in context. Long assistant turns are truncated to keep
// the prompt small.
func classifyUserPrompt(question string, history []models.ConversationMessage) string {
	if len(history) == 0 {
		return fmt.Sprintf("Classify this question: %s", question)
	}

	var sb strings.Builder
	sb.WriteString("Previous conversation:\n")
	for _, msg := range history {
		if msg.Role == "user" {
			sb.WriteString(fmt.Sprintf("User: %s\n", msg.Content))
			continue
		}
		content := msg.Content
		if len(content) > 500 {
			content = content[:500] + "..."
		}
		sb.WriteString(fmt.Sprintf("Assistant: %s\n", content))
	}
	sb.WriteString(fmt.Sprintf("\nClassify this question: %s", question))
	return sb.String()
}

var _ ClassifierStrategy = (*CompletionClassifier)(nil)
