package engine

import (
	"crypto/sha256"
	"encoding/hex"
)

// IDOf derives a stable content-addressed identifier from text.
// Identical input always yields the same id, which is what makes the
// problem cache idempotent.
func IDOf(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:12]
}
