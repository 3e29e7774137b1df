package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjayRao0904/database-chatbot/pkg/models"
)

func catalogResult() models.QueryResult {
	return models.QueryResult{
		Success: true,
		Columns: []string{"table_name", "column_name", "data_type"},
		Rows: []map[string]any{
			{"table_name": "customers", "column_name": "customer_id", "data_type": "character varying"},
			{"table_name": "customers", "column_name": "customer_state", "data_type": "character varying"},
			{"table_name": "orders", "column_name": "order_id", "data_type": "character varying"},
		},
		RowCount: 3,
	}
}

func TestSchema_GroupsByTable(t *testing.T) {
	s := newStubStore()
	s.schema = catalogResult()
	h := NewSchemaHandler(s, newMemCache())

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/v1/schema", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	tables, ok := data["tables"].([]any)
	require.True(t, ok)
	require.Len(t, tables, 2)

	first := tables[0].(map[string]any)
	assert.Equal(t, "customers", first["name"])
	assert.Len(t, first["columns"], 2)
}

func TestSchema_CachesResponse(t *testing.T) {
	s := newStubStore()
	s.schema = catalogResult()
	c := newMemCache()
	h := NewSchemaHandler(s, c)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/v1/schema", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/v1/schema", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
}

func TestSchema_StoreFailure(t *testing.T) {
	s := newStubStore()
	s.schema = models.QueryResult{Success: false, Error: "connection refused"}
	h := NewSchemaHandler(s, newMemCache())

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/v1/schema", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeErrCode(t, rec))
}
