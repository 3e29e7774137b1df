package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/AjayRao0904/database-chatbot/internal/api/response"
	"github.com/AjayRao0904/database-chatbot/internal/cache"
	"github.com/AjayRao0904/database-chatbot/internal/store"
)

const schemaCacheTTL = time.Hour

type schemaColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type schemaTable struct {
	Name    string         `json:"name"`
	Columns []schemaColumn `json:"columns"`
}

type schemaPayload struct {
	Tables []schemaTable `json:"tables"`
}

// NewSchemaHandler returns an http.HandlerFunc for GET /api/v1/schema. It
// exposes the same catalog view the SQL generator works from. The fixed
// dataset makes the schema effectively immutable, so responses are cached.
func NewSchemaHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cached, ok, err := c.Get(r.Context(), cache.SchemaKey()); err == nil && ok {
			var payload schemaPayload
			if err := json.Unmarshal(cached, &payload); err == nil {
				w.Header().Set("X-Cache", "HIT")
				response.JSON(w, payload)
				return
			}
		}

		result := s.GetSchema(r.Context())
		if !result.Success {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to read database schema", nil)
			return
		}

		var tableOrder []string
		tables := make(map[string][]schemaColumn)
		for _, row := range result.Rows {
			table, _ := row["table_name"].(string)
			name, _ := row["column_name"].(string)
			dataType, _ := row["data_type"].(string)
			if _, seen := tables[table]; !seen {
				tableOrder = append(tableOrder, table)
			}
			tables[table] = append(tables[table], schemaColumn{Name: name, Type: dataType})
		}

		payload := schemaPayload{Tables: make([]schemaTable, 0, len(tableOrder))}
		for _, name := range tableOrder {
			payload.Tables = append(payload.Tables, schemaTable{Name: name, Columns: tables[name]})
		}

		if body, err := json.Marshal(payload); err == nil {
			if err := c.Set(r.Context(), cache.SchemaKey(), body, schemaCacheTTL); err != nil {
				slog.Info("schema cache write failed", "error", err)
			}
		}

		response.JSON(w, payload)
	}
}
