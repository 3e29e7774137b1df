package agent

import (
	"fmt"
	"strings"

	"github.com/AjayRao0904/database-chatbot/pkg/models"
)

// formatRow renders a result row as "col: val" pairs in the result's column
// order. Map iteration order is useless for display, so the column slice
// drives the output.
func formatRow(row map[string]any, columns []string) string {
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, fmt.Sprintf("%s: %v", col, row[col]))
	}
	return strings.Join(parts, ", ")
}

// summarizeRows renders up to five rows of a successful result for prompts
// and answers.
func summarizeRows(result models.QueryResult) string {
	var sb strings.Builder
	if result.RowCount > 5 {
		sb.WriteString(fmt.Sprintf("Top 5 results (out of %d total):\n", result.RowCount))
	} else {
		sb.WriteString(fmt.Sprintf("All %d results:\n", result.RowCount))
	}

	limit := len(result.Rows)
	if limit > 5 {
		limit = 5
	}
	for i := 0; i < limit; i++ {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, formatRow(result.Rows[i], result.Columns)))
	}
	return sb.String()
}

// containsAny reports whether s contains any of the keywords,
// case-insensitively.
func containsAny(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// toFloat coerces the numeric types the store produces into a float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
