// Package cache provides a Redis cache-aside layer for computed task data.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides JSON-valued caching operations using Redis.
type Cache struct {
	client   *redis.Client
	prefix   string
	ttl      time.Duration
	counters counters
}

type counters struct {
	hits    atomic.Uint64
	misses  atomic.Uint64
	sets    atomic.Uint64
	deletes atomic.Uint64
	errors  atomic.Uint64
}

// Snapshot is a point-in-time copy of the cache counters.
type Snapshot struct {
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Sets      uint64  `json:"sets"`
	Deletes   uint64  `json:"deletes"`
	Errors    uint64  `json:"errors"`
	HitRate   float64 `json:"hit_rate"`
	TotalGets uint64  `json:"total_gets"`
}

// New creates a cache that stores keys under prefix with the given TTL.
func New(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get decodes the cached value into dest. It reports false on a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.counters.misses.Add(1)
			return false, nil
		}
		c.counters.errors.Add(1)
		return false, fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.counters.errors.Add(1)
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}

	c.counters.hits.Add(1)
	return true, nil
}

// Set stores a value with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.counters.errors.Add(1)
		return fmt.Errorf("cache marshal error: %w", err)
	}

	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		c.counters.errors.Add(1)
		return fmt.Errorf("cache set error: %w", err)
	}

	c.counters.sets.Add(1)
	return nil
}

// Delete removes a single key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.counters.errors.Add(1)
		return fmt.Errorf("cache delete error: %w", err)
	}

	c.counters.deletes.Add(1)
	return nil
}

// Incr atomically increments an integer key and returns the new value.
// Counter keys never expire.
func (c *Cache) Incr(ctx context.Context, key string) (int64, error) {
	n, err := c.client.Incr(ctx, c.prefix+key).Result()
	if err != nil {
		c.counters.errors.Add(1)
		return 0, fmt.Errorf("cache incr error: %w", err)
	}
	return n, nil
}

// Version reads an integer key written by Incr. A missing key is zero.
func (c *Cache) Version(ctx context.Context, key string) (int64, error) {
	n, err := c.client.Get(ctx, c.prefix+key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		c.counters.errors.Add(1)
		return 0, fmt.Errorf("cache version error: %w", err)
	}
	return n, nil
}

// Snapshot returns the current counters.
func (c *Cache) Snapshot() Snapshot {
	hits := c.counters.hits.Load()
	misses := c.counters.misses.Load()
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return Snapshot{
		Hits:      hits,
		Misses:    misses,
		Sets:      c.counters.sets.Load(),
		Deletes:   c.counters.deletes.Load(),
		Errors:    c.counters.errors.Load(),
		HitRate:   hitRate,
		TotalGets: total,
	}
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
