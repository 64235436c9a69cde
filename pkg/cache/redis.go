package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Flash5127/DU81-Proxy/pkg/gamepass"
)

// Redis is a shared TTL store for deployments running several proxy replicas
// behind one cache. Expiry is delegated to Redis key TTLs.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed store with the given TTL.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Redis{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached records, or ErrCacheMiss when absent or expired.
func (r *Redis) Get(ctx context.Context, key string) ([]gamepass.Gamepass, error) {
	data, err := r.client.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.WithLabelValues("redis").Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("redis", "get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var records []gamepass.Gamepass
	if err := json.Unmarshal(data, &records); err != nil {
		CacheErrors.WithLabelValues("redis", "get").Inc()
		return nil, fmt.Errorf("unmarshal cache entry: %w", err)
	}

	CacheHits.WithLabelValues("redis").Inc()
	return records, nil
}

// Put stores the records with a fresh TTL window, replacing any prior entry.
func (r *Redis) Put(ctx context.Context, key string, records []gamepass.Gamepass) error {
	data, err := json.Marshal(records)
	if err != nil {
		CacheErrors.WithLabelValues("redis", "set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := r.client.Set(ctx, cacheKey(key), data, r.ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("redis", "set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// cacheKey namespaces request keys in the shared Redis keyspace.
func cacheKey(key string) string {
	return "roproxy:gamepasses:" + key
}
