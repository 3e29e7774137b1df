package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AjayRao0904/database-chatbot/internal/store"
	"github.com/AjayRao0904/database-chatbot/pkg/models"
)

// stubStore is an in-memory store.Store for handler tests.
type stubStore struct {
	mu     sync.Mutex
	keys   map[uuid.UUID]*models.APIKey
	schema models.QueryResult
}

func newStubStore() *stubStore {
	return &stubStore{keys: map[uuid.UUID]*models.APIKey{}}
}

func (s *stubStore) Ping(context.Context) error { return nil }

func (s *stubStore) ExecuteQuery(context.Context, string) models.QueryResult {
	return models.QueryResult{Success: true}
}

func (s *stubStore) GetSchema(context.Context) models.QueryResult {
	return s.schema
}

func (s *stubStore) GetAPIKeyByPrefix(_ context.Context, prefix string) ([]*models.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.APIKey
	for _, k := range s.keys {
		if k.KeyPrefix == prefix && k.DeletedAt == nil {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *stubStore) UpdateAPIKeyLastUsed(context.Context, uuid.UUID) error { return nil }

func (s *stubStore) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.keys {
		if k.KeyPrefix == key.KeyPrefix {
			return store.ErrDuplicateKey
		}
	}
	s.keys[key.ID] = key
	return nil
}

func (s *stubStore) ListAPIKeys(context.Context) ([]*models.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.APIKey
	for _, k := range s.keys {
		if k.DeletedAt == nil {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *stubStore) RevokeAPIKey(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.keys, id)
	return nil
}

var _ store.Store = (*stubStore)(nil)

func TestCreateKey_Success(t *testing.T) {
	s := newStubStore()
	h := NewCreateKeyHandler(s)

	body, _ := json.Marshal(map[string]any{"name": "analyst", "scopes": []string{"ask"}})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/keys", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeData(t, rec)

	rawKey, _ := data["key"].(string)
	require.Len(t, rawKey, 48)
	assert.Equal(t, rawKey[:8], data["key_prefix"])

	// only the hash is stored, and it verifies against the raw key
	s.mu.Lock()
	defer s.mu.Unlock()
	require.Len(t, s.keys, 1)
	for _, k := range s.keys {
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(k.KeyHash), []byte(rawKey)))
		assert.NotContains(t, k.KeyHash, rawKey)
	}
}

func TestCreateKey_DefaultScope(t *testing.T) {
	s := newStubStore()
	h := NewCreateKeyHandler(s)

	body, _ := json.Marshal(map[string]any{"name": "analyst"})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/keys", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, []any{"ask"}, data["scopes"])
}

func TestCreateKey_MissingName(t *testing.T) {
	h := NewCreateKeyHandler(newStubStore())

	body, _ := json.Marshal(map[string]any{"scopes": []string{"ask"}})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/keys", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateKey_UnknownScope(t *testing.T) {
	h := NewCreateKeyHandler(newStubStore())

	body, _ := json.Marshal(map[string]any{"name": "x", "scopes": []string{"superuser"}})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/keys", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeErrCode(t, rec))
}

func TestListKeys(t *testing.T) {
	s := newStubStore()
	id := uuid.New()
	s.keys[id] = &models.APIKey{ID: id, Name: "analyst", KeyPrefix: "abcd1234", Scopes: []string{"ask"}}

	rec := httptest.NewRecorder()
	NewListKeysHandler(s)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/keys", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "analyst", env.Data[0]["name"])
	// the hash never leaves the server
	_, exposed := env.Data[0]["key_hash"]
	assert.False(t, exposed)
}

func TestRevokeKey(t *testing.T) {
	s := newStubStore()
	id := uuid.New()
	s.keys[id] = &models.APIKey{ID: id, Name: "analyst", KeyPrefix: "abcd1234"}

	r := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/keys/"+id.String(), nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("keyID", id.String())
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	NewRevokeKeyHandler(s)(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, s.keys)
}

func TestRevokeKey_NotFound(t *testing.T) {
	s := newStubStore()
	id := uuid.New()

	r := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/keys/"+id.String(), nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("keyID", id.String())
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	NewRevokeKeyHandler(s)(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeErrCode(t, rec))
}

func TestRevokeKey_InvalidID(t *testing.T) {
	r := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/keys/not-a-uuid", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("keyID", "not-a-uuid")
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	NewRevokeKeyHandler(newStubStore())(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
