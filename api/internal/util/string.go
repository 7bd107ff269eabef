package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SHA256Hex is the cache key for a code snippet.
func SHA256Hex(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// ShortHash is a stable 16-char hex id, used for the secret webhook path.
func ShortHash(s string) string {
	return SHA256Hex(s)[:16]
}

// Truncate cuts s to at most n runes, adding an ellipsis when it cuts.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
