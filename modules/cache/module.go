package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/amichai1/task-manager-app/config"
	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the application cache.
const DefaultPrefix = "taskmanager:cache:"

// Module owns the Redis connection behind the cache.
type Module struct {
	client *redis.Client
	cache  *Cache
	addr   string
	ttl    time.Duration
}

var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the Redis client and cache. The connection is verified
// in Start, so the cache can be handed to other modules before that.
func NewModule(cfg config.Redis) *Module {
	client := NewClient(cfg)
	return &Module{
		client: client,
		cache:  New(client, DefaultPrefix, cfg.CacheTTL),
		addr:   cfg.Addr,
		ttl:    cfg.CacheTTL,
	}
}

// NewClient builds a Redis client from configuration.
func NewClient(cfg config.Redis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// Name returns the module name.
func (m *Module) Name() string {
	return "cache"
}

// Start verifies the Redis connection.
func (m *Module) Start(ctx context.Context) error {
	if err := m.cache.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", m.addr, err)
	}
	log.Printf("[cache] Connected to Redis at %s (prefix: %s, TTL: %s)", m.addr, DefaultPrefix, m.ttl)
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if err := m.client.Close(); err != nil {
		log.Printf("[cache] Error closing Redis connection: %v", err)
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	log.Println("[cache] Module stopped")
	return nil
}

// Cache returns the cache instance.
func (m *Module) Cache() *Cache {
	return m.cache
}

// Health pings Redis and reports the cache counters.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if err := m.cache.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
		}
	}

	snap := m.cache.Snapshot()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"hits":     snap.Hits,
			"misses":   snap.Misses,
			"hit_rate": snap.HitRate,
		},
	}
}
