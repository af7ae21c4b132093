package retrieve

import (
	"context"
	"encoding/json"
	"time"

	"github.com/oncorad/oncoguard/internal/cache"
	"github.com/oncorad/oncoguard/internal/model"
)

// CachedRetriever wraps a Retriever with the layered cache. Guideline
// indexes change rarely, so retrieval results for identical queries
// are safe to reuse for hours.
type CachedRetriever struct {
	inner Retriever
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedRetriever creates a caching wrapper around inner
func NewCachedRetriever(inner Retriever, c cache.Cache, ttl time.Duration) *CachedRetriever {
	if ttl == 0 {
		ttl = 6 * time.Hour
	}
	return &CachedRetriever{inner: inner, cache: c, ttl: ttl}
}

// Retrieve serves from cache when possible; cache failures are
// ignored in favor of the live result.
func (r *CachedRetriever) Retrieve(ctx context.Context, query string, topK int) ([]model.SourcePassage, error) {
	key := cache.QueryKey(query, topK)

	if data, found := r.cache.Get(key); found {
		var passages []model.SourcePassage
		if err := json.Unmarshal(data, &passages); err == nil {
			return passages, nil
		}
		_ = r.cache.Delete(key)
	}

	passages, err := r.inner.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(passages); err == nil {
		_ = r.cache.Set(key, data, r.ttl)
	}

	return passages, nil
}
