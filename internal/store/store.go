package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/AjayRao0904/database-chatbot/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	// ExecuteQuery runs an already-validated read-only statement and reports
	// the outcome as a tagged result. It never returns a Go error: execution
	// failures come back as an unsuccessful QueryResult so the self-correction
	// loop can feed the message back to the generator.
	ExecuteQuery(ctx context.Context, query string) models.QueryResult
	// GetSchema returns (table_name, column_name, data_type) triples for the
	// public schema, ordered by table then column position.
	GetSchema(ctx context.Context) models.QueryResult

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
}
