package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjayRao0904/database-chatbot/internal/config"
)

func TestComplete(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{"response": "SELECT 1"})
	}))
	defer srv.Close()

	p := NewProvider(config.OllamaConfig{BaseURL: srv.URL, Model: "llama3"}, 5*time.Second)
	got, err := p.Complete(context.Background(), "system text", "user text")
	require.NoError(t, err)

	assert.Equal(t, "SELECT 1", got)
	assert.Equal(t, "/api/generate", gotPath)
	assert.Equal(t, "llama3", gotBody["model"])
	assert.Equal(t, "system text", gotBody["system"])
	assert.Equal(t, "user text", gotBody["prompt"])
	assert.Equal(t, false, gotBody["stream"])
}

func TestComplete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewProvider(config.OllamaConfig{BaseURL: srv.URL, Model: "llama3"}, 5*time.Second)
	_, err := p.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestComplete_ConnectionRefused(t *testing.T) {
	p := NewProvider(config.OllamaConfig{BaseURL: "http://127.0.0.1:1", Model: "llama3"}, 5*time.Second)
	_, err := p.Complete(context.Background(), "s", "u")
	require.Error(t, err)
}
