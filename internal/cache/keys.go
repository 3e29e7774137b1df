package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// AnswerKey is the cache key for a fully processed answer, keyed by a hash of
// the normalized question text. Only history-free questions are cached.
func AnswerKey(question string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(question))))
	return fmt.Sprintf("answer:%s", hex.EncodeToString(sum[:]))
}

// RateLimitKey is the per-key sliding-window counter key.
func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}

// SchemaKey caches the formatted schema block served by the schema endpoint.
func SchemaKey() string {
	return "schema:block"
}
