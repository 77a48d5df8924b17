package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// hashKey builds a namespaced cache key: prefix:sha256(parts). Parts are
// joined with a NUL byte so ("a","bc") and ("ab","c") never collide.
func hashKey(prefix string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the full SHA-256 of data as a 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
