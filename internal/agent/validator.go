package agent

import (
	"fmt"
	"strings"
)

// denylist blocks statements that could mutate the database. Matched as
// case-insensitive substrings anywhere in the query: a blunt lexical filter,
// not a parser, so a legitimate query mentioning one of these words in a
// string literal is rejected too. Accepted for a read-only analytic store.
var denylist = []string{"drop", "delete", "truncate", "alter", "create", "insert", "update"}

// Validate is the single authority deciding whether a generated query ever
// reaches execution. Pure function; rules are checked in order and the first
// match wins.
func Validate(query string) (bool, string) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return false, "Query is empty"
	}

	lower := strings.ToLower(trimmed)
	for _, keyword := range denylist {
		if strings.Contains(lower, keyword) {
			return false, fmt.Sprintf("Query contains forbidden keyword: %s", keyword)
		}
	}

	if !strings.HasPrefix(lower, "select") {
		return false, "Only SELECT queries are allowed"
	}

	return true, "Query is valid"
}
