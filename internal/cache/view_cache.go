package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefixes for the cached read views. Mutating operations invalidate by
// prefix so stale listings never outlive a write.
const (
	PrefixTickets = "views:tickets:"
	PrefixCatalog = "views:catalog:"
	PrefixUsers   = "views:users:"
)

// ViewCache is a time-boxed cache of query results. Implementations must treat
// a miss and an unreachable backend the same way: report no value and let the
// caller hit the store.
type ViewCache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any)
	Invalidate(ctx context.Context, prefixes ...string)
}

// RedisViewCache serves read views from Redis with a fixed TTL.
type RedisViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisViewCache builds a cache over the given client.
func NewRedisViewCache(client *redis.Client, ttl time.Duration) *RedisViewCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisViewCache{client: client, ttl: ttl}
}

// Get loads a cached view into dest. Returns false on miss or backend error.
func (c *RedisViewCache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// backend unreachable: fall through to the store
			return false
		}
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// Set stores a view under key with the configured TTL. Best effort.
func (c *RedisViewCache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate removes every key under the given prefixes.
func (c *RedisViewCache) Invalidate(ctx context.Context, prefixes ...string) {
	if c == nil || c.client == nil {
		return
	}
	for _, prefix := range prefixes {
		iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
		for iter.Next(ctx) {
			_ = c.client.Del(ctx, iter.Val()).Err()
		}
	}
}

// NoopViewCache disables caching. Used in tests and when Redis is absent.
type NoopViewCache struct{}

func (NoopViewCache) Get(ctx context.Context, key string, dest any) bool { return false }
func (NoopViewCache) Set(ctx context.Context, key string, value any)     {}
func (NoopViewCache) Invalidate(ctx context.Context, prefixes ...string) {}
