package cache

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/communityconnect/nlquery/pkg/metrics"
	"github.com/communityconnect/nlquery/pkg/nlquery/model"
)

// Remote is the subset of RedisCache the tiered cache depends on,
// kept narrow so tests can supply a fake second tier.
type Remote interface {
	Get(ctx context.Context, key string) (model.EmbeddingVector, bool, error)
	Set(ctx context.Context, key string, vector model.EmbeddingVector) error
}

// EmbeddingCache is the two-tier embedding cache the search engine
// consults before calling out to an embedding provider: local LRU+TTL
// first, an optional shared Redis tier second.
type EmbeddingCache struct {
	local  *LocalCache
	remote Remote
	log    *logrus.Logger
}

// New builds a cache with a mandatory local tier and an optional
// remote tier (nil disables the second tier entirely).
func New(local *LocalCache, remote Remote, logger *logrus.Logger) *EmbeddingCache {
	return &EmbeddingCache{local: local, remote: remote, log: logger}
}

// Key derives the cache key from free-text query input: lowercased
// and whitespace-collapsed, so "Chennai ECE 95" and "chennai  ece 95"
// share a cache entry.
func Key(queryText string) string {
	fields := strings.Fields(strings.ToLower(queryText))
	return strings.Join(fields, " ")
}

// Get checks the local tier, then the remote tier, promoting a remote
// hit into the local tier so the next lookup is local-only.
func (c *EmbeddingCache) Get(ctx context.Context, queryText string) (model.EmbeddingVector, bool) {
	key := Key(queryText)

	if vector, ok := c.local.Get(key); ok {
		metrics.RecordCacheHit()
		return vector, true
	}

	if c.remote != nil {
		vector, ok, err := c.remote.Get(ctx, key)
		if err != nil {
			c.log.WithError(err).Warn("embedding cache remote tier read failed")
		} else if ok {
			c.local.Set(key, vector)
			metrics.RecordCacheHit()
			return vector, true
		}
	}

	metrics.RecordCacheMiss()
	return nil, false
}

// Set writes vector to both tiers for queryText.
func (c *EmbeddingCache) Set(ctx context.Context, queryText string, vector model.EmbeddingVector) {
	key := Key(queryText)
	c.local.Set(key, vector)

	if c.remote != nil {
		if err := c.remote.Set(ctx, key, vector); err != nil {
			c.log.WithError(err).Warn("embedding cache remote tier write failed")
		}
	}
}
