package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/communityconnect/nlquery/pkg/nlquery/model"
)

// RedisCache is the shared second tier of the embedding cache: a
// cache miss against LocalCache checks here before falling back to
// recomputing the embedding, so a cold instance can still benefit
// from work another instance already did.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache wraps an already-configured redis.Client.
// Construction of the client itself is the caller's responsibility so tests can point it at a
// miniredis instance.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: "embedding:"}
}

// Get fetches and decodes the cached vector for key, if present.
func (r *RedisCache) Get(ctx context.Context, key string) (model.EmbeddingVector, bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis embedding cache get failed: %w", err)
	}

	var vector model.EmbeddingVector
	if err := json.Unmarshal(raw, &vector); err != nil {
		return nil, false, fmt.Errorf("redis embedding cache decode failed: %w", err)
	}
	return vector, true, nil
}

// Set stores vector under key with the cache's configured TTL.
func (r *RedisCache) Set(ctx context.Context, key string, vector model.EmbeddingVector) error {
	raw, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("redis embedding cache encode failed: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis embedding cache set failed: %w", err)
	}
	return nil
}
