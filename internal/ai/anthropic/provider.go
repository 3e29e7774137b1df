package anthropic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/AjayRao0904/database-chatbot/internal/config"
	"github.com/AjayRao0904/database-chatbot/pkg/models"
)

const defaultMaxTokens = 2048

// Provider implements models.CompletionProvider using the Anthropic API.
type Provider struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

func NewProvider(cfg config.AnthropicConfig, timeout time.Duration) *Provider {
	return &Provider{
		client: anthropic.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithRequestTimeout(timeout),
		),
		model:     anthropic.Model(cfg.Model),
		maxTokens: defaultMaxTokens,
	}
}

func (p *Provider) Name() string { return "anthropic" }

// Complete sends the instruction pair to Claude and returns the response text.
func (p *Provider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("anthropic API error: %w: %v", models.ErrInferenceTimeout, err)
		}
		return "", fmt.Errorf("anthropic API error: %w: %v", models.ErrProviderUnavailable, err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("%w: no text content in response", models.ErrInvalidResponse)
}

var _ models.CompletionProvider = (*Provider)(nil)
