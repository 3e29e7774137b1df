package mock

import (
	"context"
	"sync"

	"github.com/AjayRao0904/database-chatbot/pkg/models"
)

// Call records one completion request received by the mock.
type Call struct {
	System string
	User   string
}

// Provider satisfies models.CompletionProvider for testing. It records every
// call it receives and answers via CompleteFunc.
type Provider struct {
	Name_        string
	CompleteFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	mu    sync.Mutex
	calls []Call
}

func (m *Provider) Name() string { return m.Name_ }

func (m *Provider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{System: systemPrompt, User: userPrompt})
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, userPrompt)
	}
	return "", nil
}

// Calls returns a copy of the recorded calls.
func (m *Provider) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// NewStaticProvider returns a Provider that always answers with response.
func NewStaticProvider(response string) *Provider {
	return &Provider{
		Name_: "mock",
		CompleteFunc: func(_ context.Context, _, _ string) (string, error) {
			return response, nil
		},
	}
}

// NewScriptedProvider returns a Provider that answers with the given responses
// in order, repeating the last one once the script is exhausted.
func NewScriptedProvider(responses ...string) *Provider {
	var mu sync.Mutex
	i := 0
	return &Provider{
		Name_: "mock-scripted",
		CompleteFunc: func(_ context.Context, _, _ string) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			if i >= len(responses) {
				return responses[len(responses)-1], nil
			}
			resp := responses[i]
			i++
			return resp, nil
		},
	}
}

// NewFailingProvider returns a Provider that always returns the given error.
func NewFailingProvider(err error) *Provider {
	return &Provider{
		Name_: "mock-failing",
		CompleteFunc: func(_ context.Context, _, _ string) (string, error) {
			return "", err
		},
	}
}

// Compile-time check that Provider implements CompletionProvider.
var _ models.CompletionProvider = (*Provider)(nil)
