package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/amichai1/task-manager-app/config"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every rate limit key in Redis.
const KeyPrefix = "taskmanager:ratelimit:"

// Module owns the Redis connection and the two limiters used by the API:
// a general limit for /api and a stricter one for register and login.
type Module struct {
	client  *redis.Client
	addr    string
	general *SlidingWindowLimiter
	auth    *SlidingWindowLimiter
	logger  types.Logger
}

var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the limiters. The connection is verified in Start.
func NewModule(redisCfg config.Redis, limits config.RateLimit, logger types.Logger) *Module {
	client := redis.NewClient(&redis.Options{
		Addr:         redisCfg.Addr,
		Password:     redisCfg.Password,
		DB:           redisCfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	return &Module{
		client: client,
		addr:   redisCfg.Addr,
		general: NewSlidingWindowLimiter(client,
			Rule{Requests: limits.GeneralRequests, Window: limits.GeneralWindow}, KeyPrefix+"general:"),
		auth: NewSlidingWindowLimiter(client,
			Rule{Requests: limits.AuthRequests, Window: limits.AuthWindow}, KeyPrefix+"auth:"),
		logger: logger.WithModule("rate-limiter"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "rate-limiter"
}

// Start verifies the Redis connection.
func (m *Module) Start(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", m.addr, err)
	}
	m.logger.Info("Rate limiter started",
		"redis", m.addr,
		"general", fmt.Sprintf("%d/%s", m.general.rule.Requests, m.general.rule.Window),
		"auth", fmt.Sprintf("%d/%s", m.auth.rule.Requests, m.auth.rule.Window),
	)
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if err := m.client.Close(); err != nil {
		m.logger.Error("Failed to close Redis connection", "error", err)
	}
	m.logger.Info("Rate limiter stopped")
	return nil
}

// Health pings Redis.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
		}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

// General returns the per-IP middleware applied to every /api route.
func (m *Module) General() fiber.Handler {
	return Handler(m.general, WithLogger(m.logger))
}

// Auth returns the per-IP middleware for credential endpoints. Only failed
// attempts count against it.
func (m *Module) Auth() fiber.Handler {
	return Handler(m.auth,
		WithMessage(MsgTooManyAuthAttempts),
		WithSkipSuccessful(),
		WithLogger(m.logger),
	)
}
