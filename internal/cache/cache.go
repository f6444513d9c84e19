// Package cache stores model completions and embeddings so repeated
// analyses of the same text do not call the provider again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from its parts. Parts are length-prefixed so
// ("ab", "c") and ("a", "bc") never collide.
func Key(kind string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		var n [8]byte
		for i, l := 0, uint64(len(p)); i < 8; i++ {
			n[i] = byte(l >> (8 * i))
		}
		h.Write(n[:])
		h.Write([]byte(p))
	}
	return "lexguard:v1:" + kind + ":" + hex.EncodeToString(h.Sum(nil))
}
