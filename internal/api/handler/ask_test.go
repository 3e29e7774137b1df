package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjayRao0904/database-chatbot/internal/ai"
	"github.com/AjayRao0904/database-chatbot/pkg/models"
)

// --- mock QuestionProcessor ---

type mockProcessor struct {
	mu    sync.Mutex
	fn    func(ctx context.Context, question string, history []models.ConversationMessage) (models.AskResult, error)
	calls int
}

func (m *mockProcessor) ProcessQuestion(ctx context.Context, question string, history []models.ConversationMessage) (models.AskResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.fn(ctx, question, history)
}

func (m *mockProcessor) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func answeringProcessor(answer string) *mockProcessor {
	return &mockProcessor{fn: func(_ context.Context, question string, _ []models.ConversationMessage) (models.AskResult, error) {
		return models.AskResult{
			Question:       question,
			Classification: models.ClassificationData,
			FinalAnswer:    answer,
			ProcessTrace:   []string{"🔍 Question classified as: data"},
		}, nil
	}}
}

// --- in-memory cache ---

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Ping(context.Context) error { return nil }

func (c *memCache) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 1, nil
}

// --- helpers ---

func askReq(t *testing.T, body any) *http.Request {
	t.Helper()
	b, _ := json.Marshal(body)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Data
}

func decodeErrCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Error.Code
}

func TestAsk_Success(t *testing.T) {
	h := NewAskHandler(answeringProcessor("Found 5 results."), newMemCache())

	rec := httptest.NewRecorder()
	h(rec, askReq(t, map[string]any{"question": "sales by state"}))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, "sales by state", data["question"])
	assert.Equal(t, "data", data["classification"])
	assert.Equal(t, "Found 5 results.", data["final_answer"])
}

func TestAsk_InvalidJSON(t *testing.T) {
	h := NewAskHandler(answeringProcessor("x"), newMemCache())

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewReader([]byte("{not json")))
	h(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeErrCode(t, rec))
}

func TestAsk_MissingQuestion(t *testing.T) {
	h := NewAskHandler(answeringProcessor("x"), newMemCache())

	rec := httptest.NewRecorder()
	h(rec, askReq(t, map[string]any{"history": []any{}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeErrCode(t, rec))
}

func TestAsk_QuestionTooLong(t *testing.T) {
	h := NewAskHandler(answeringProcessor("x"), newMemCache())

	long := make([]byte, maxQuestionLen+1)
	for i := range long {
		long[i] = 'a'
	}
	rec := httptest.NewRecorder()
	h(rec, askReq(t, map[string]any{"question": string(long)}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAsk_CachesHistoryFreeQuestions(t *testing.T) {
	proc := answeringProcessor("cached answer")
	h := NewAskHandler(proc, newMemCache())

	rec := httptest.NewRecorder()
	h(rec, askReq(t, map[string]any{"question": "top products"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))

	rec = httptest.NewRecorder()
	h(rec, askReq(t, map[string]any{"question": "top products"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, 1, proc.callCount())
}

func TestAsk_HistoryBypassesCache(t *testing.T) {
	proc := answeringProcessor("fresh answer")
	h := NewAskHandler(proc, newMemCache())

	body := map[string]any{
		"question": "what about by city?",
		"history": []map[string]string{
			{"role": "user", "content": "sales by state"},
			{"role": "assistant", "content": "here you go"},
		},
	}

	rec := httptest.NewRecorder()
	h(rec, askReq(t, body))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, askReq(t, body))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, proc.callCount())
}

func TestAsk_ProviderUnavailable(t *testing.T) {
	proc := &mockProcessor{fn: func(context.Context, string, []models.ConversationMessage) (models.AskResult, error) {
		return models.AskResult{}, ai.ErrProviderUnavailable
	}}
	h := NewAskHandler(proc, newMemCache())

	rec := httptest.NewRecorder()
	h(rec, askReq(t, map[string]any{"question": "anything"}))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "AI_PROVIDER_UNAVAILABLE", decodeErrCode(t, rec))
}

func TestAsk_InternalError(t *testing.T) {
	proc := &mockProcessor{fn: func(context.Context, string, []models.ConversationMessage) (models.AskResult, error) {
		return models.AskResult{}, errors.New("boom")
	}}
	h := NewAskHandler(proc, newMemCache())

	rec := httptest.NewRecorder()
	h(rec, askReq(t, map[string]any{"question": "anything"}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeErrCode(t, rec))
}

func TestAsk_ErrorsNotCached(t *testing.T) {
	fail := true
	proc := &mockProcessor{fn: func(_ context.Context, question string, _ []models.ConversationMessage) (models.AskResult, error) {
		if fail {
			return models.AskResult{}, errors.New("boom")
		}
		return models.AskResult{Question: question, FinalAnswer: "recovered"}, nil
	}}
	c := newMemCache()
	h := NewAskHandler(proc, c)

	rec := httptest.NewRecorder()
	h(rec, askReq(t, map[string]any{"question": "flaky"}))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	fail = false
	rec = httptest.NewRecorder()
	h(rec, askReq(t, map[string]any{"question": "flaky"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "recovered", decodeData(t, rec)["final_answer"])
}
