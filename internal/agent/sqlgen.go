package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AjayRao0904/database-chatbot/internal/config"
	"github.com/AjayRao0904/database-chatbot/pkg/models"
)

// DataStore is the slice of the store the agent needs: read-only execution of
// validated queries plus schema introspection.
type DataStore interface {
	ExecuteQuery(ctx context.Context, query string) models.QueryResult
	GetSchema(ctx context.Context) models.QueryResult
}

// SQLGenerator turns natural-language questions into validated, executed
// queries through a bounded self-correction loop: generate, validate, execute,
// and on execution failure regenerate with the database's error text.
type SQLGenerator struct {
	provider   models.CompletionProvider
	store      DataStore
	maxRetries int

	// systemPrompt embeds the schema block; formatted once at construction
	// and reused for the lifetime of the agent.
	systemPrompt string
}

// NewSQLGenerator fetches and formats the schema once, then returns a
// generator ready to serve questions.
func NewSQLGenerator(ctx context.Context, provider models.CompletionProvider, store DataStore, cfg config.AgentConfig) *SQLGenerator {
	schema := FormatSchema(store.GetSchema(ctx))
	return &SQLGenerator{
		provider:     provider,
		store:        store,
		maxRetries:   cfg.MaxRetries,
		systemPrompt: sqlSystemPrompt(schema, cfg.DefaultRowLimit),
	}
}

// ExecuteWithCorrection runs the self-correction loop for a question. It never
// performs more than maxRetries generation attempts and returns on the first
// attempt whose execution succeeds. Validation failures are terminal; only
// execution failures are retried.
func (g *SQLGenerator) ExecuteWithCorrection(ctx context.Context, question string) models.SQLResult {
	var (
		attempts  []models.SQLAttempt
		sql       string
		lastError string
	)

	for attempt := 0; attempt < g.maxRetries; attempt++ {
		userPrompt := fmt.Sprintf("Generate a SQL query for: %s", question)
		if attempt > 0 {
			userPrompt = fixQueryPrompt(question, sql, lastError)
		}

		raw, err := g.provider.Complete(ctx, g.systemPrompt, userPrompt)
		if err != nil {
			return models.SQLResult{
				QueryResult: models.QueryResult{
					Success:   false,
					Error:     fmt.Sprintf("query generation failed: %v", err),
					ErrorKind: "generation_error",
				},
				Query:    sql,
				Attempts: attempts,
			}
		}

		sql = ExtractSQL(raw)
		record := models.SQLAttempt{Number: attempt + 1, Query: sql}

		valid, reason := Validate(sql)
		if !valid {
			record.ValidationError = reason
			attempts = append(attempts, record)
			return models.SQLResult{
				QueryResult: models.QueryResult{
					Success:   false,
					Error:     reason,
					ErrorKind: "validation_error",
				},
				Query:    sql,
				Attempts: attempts,
			}
		}

		result := g.store.ExecuteQuery(ctx, sql)
		if result.Success {
			attempts = append(attempts, record)
			return models.SQLResult{QueryResult: result, Query: sql, Attempts: attempts}
		}

		record.ExecutionError = result.Error
		attempts = append(attempts, record)
		lastError = result.Error
		slog.Info("query failed, regenerating with error context",
			"attempt", attempt+1, "error", lastError)
	}

	return models.SQLResult{
		QueryResult: models.QueryResult{
			Success:   false,
			Error:     fmt.Sprintf("Failed after %d attempts. Last error: %s", g.maxRetries, lastError),
			ErrorKind: "retry_budget_exhausted",
		},
		Query:    sql,
		Attempts: attempts,
	}
}

// ExtractSQL pulls the candidate query out of a raw completion: code-fence
// markers are stripped, the query starts at the first line beginning with
// SELECT and runs through a line containing a semicolon (or end of text), and
// a trailing semicolon is dropped.
func ExtractSQL(text string) string {
	text = strings.ReplaceAll(text, "```sql", "")
	text = strings.ReplaceAll(text, "```", "")

	var (
		sqlLines []string
		inQuery  bool
	)
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), "SELECT") {
			inQuery = true
		}
		if inQuery {
			sqlLines = append(sqlLines, line)
			if strings.Contains(line, ";") {
				break
			}
		}
	}

	sql := strings.TrimSpace(strings.Join(sqlLines, "\n"))
	return strings.TrimSuffix(sql, ";")
}

// FormatSchema renders the schema catalog as per-table column lists for the
// generation prompt, preserving the catalog's table and column order.
func FormatSchema(result models.QueryResult) string {
	if !result.Success {
		return "Schema information not available"
	}

	var tableOrder []string
	columns := make(map[string][]string)
	for _, row := range result.Rows {
		table, _ := row["table_name"].(string)
		column, _ := row["column_name"].(string)
		dataType, _ := row["data_type"].(string)
		if _, seen := columns[table]; !seen {
			tableOrder = append(tableOrder, table)
		}
		columns[table] = append(columns[table], fmt.Sprintf("%s (%s)", column, dataType))
	}

	var sb strings.Builder
	for _, table := range tableOrder {
		sb.WriteString(fmt.Sprintf("\n%s:\n  %s\n", table, strings.Join(columns[table], "\n  ")))
	}
	return sb.String()
}
