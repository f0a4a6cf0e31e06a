package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"offline-hub/domain"
)

// cacheKeyPrefix namespaces all response cache keys in Redis.
const cacheKeyPrefix = "offline-hub:cache"

// RedisCache implements ResponseCachePort on Redis. Each entry is one
// JSON-serialized CachedResponse stored under a namespaced key; writes
// are last-write-wins.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis response cache.
func NewRedisCache(addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	return &RedisCache{client: client}, nil
}

// NewRedisCacheWithURL creates a new Redis response cache from a URL.
func NewRedisCacheWithURL(url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	return &RedisCache{client: redis.NewClient(opts)}, nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping checks if Redis is available.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Match returns the cached response for a key, or domain.ErrNotFound.
func (c *RedisCache) Match(ctx context.Context, ns domain.CacheNamespace, key string) (*domain.CachedResponse, error) {
	raw, err := c.client.Get(ctx, c.redisKey(ns, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	var res domain.CachedResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry: %w", err)
	}

	return &res, nil
}

// Put stores a response under a key.
func (c *RedisCache) Put(ctx context.Context, ns domain.CacheNamespace, key string, res *domain.CachedResponse) error {
	if res == nil {
		return errors.New("response is nil")
	}

	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	// Entries never expire here; storage reclamation is left to the
	// host's eviction policy.
	if err := c.client.Set(ctx, c.redisKey(ns, key), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return nil
}

// Delete removes a key and reports whether an entry was removed.
func (c *RedisCache) Delete(ctx context.Context, ns domain.CacheNamespace, key string) (bool, error) {
	removed, err := c.client.Del(ctx, c.redisKey(ns, key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to delete cache entry: %w", err)
	}

	return removed > 0, nil
}

// Keys lists all keys stored in a namespace.
func (c *RedisCache) Keys(ctx context.Context, ns domain.CacheNamespace) ([]string, error) {
	prefix := fmt.Sprintf("%s:%s:", cacheKeyPrefix, ns)

	keys := []string{}
	iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan cache keys: %w", err)
	}

	return keys, nil
}

// redisKey builds the namespaced Redis key for a cache entry.
func (c *RedisCache) redisKey(ns domain.CacheNamespace, key string) string {
	return fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, ns, key)
}
