// Package cache provides a layered (memory + disk) cache for
// retrieval-service responses, so repeated consultations over the
// same clinical query do not re-hit the vector index.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// QueryKey generates a cache key from a retrieval query and result count
func QueryKey(query string, topK int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%d|%s", topK, query)))
	return "oncoguard:v1:" + hex.EncodeToString(hash[:])
}
