// Package ratelimit provides a Redis sliding window rate limiter and the
// Fiber middleware built on it.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rule is the number of requests allowed per sliding window.
type Rule struct {
	Requests int
	Window   time.Duration
}

// Result is the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	// RetryAfter is only set when the request was denied.
	RetryAfter time.Duration
	// Member identifies the recorded request so it can be released later.
	Member string
}

// Limiter decides whether the request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	Release(ctx context.Context, key, member string) error
	Rule() Rule
}

// slidingWindowScript trims entries older than the window, then records the
// request when the remaining count allows it. A per-key counter keeps
// members unique within the same millisecond.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local counter_key = KEYS[2]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local count = redis.call('ZCARD', key)

	if count < limit then
		local counter = redis.call('INCR', counter_key)
		local member = now .. ':' .. counter
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, window_ms)
		redis.call('PEXPIRE', counter_key, window_ms)
		return {1, limit - count - 1, 0, member}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local retry_after = 0
	if #oldest >= 2 then
		retry_after = oldest[2] + window_ms - now
	end
	return {0, 0, retry_after, ''}
`)

// SlidingWindowLimiter keeps one sorted set of request timestamps per key.
type SlidingWindowLimiter struct {
	client *redis.Client
	rule   Rule
	prefix string
	now    func() time.Time
}

var _ Limiter = (*SlidingWindowLimiter)(nil)

// NewSlidingWindowLimiter creates a limiter whose keys live under prefix.
func NewSlidingWindowLimiter(client *redis.Client, rule Rule, prefix string) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		client: client,
		rule:   rule,
		prefix: prefix,
		now:    time.Now,
	}
}

// Allow atomically checks and records a request.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	now := l.now()
	redisKey := l.prefix + key

	raw, err := slidingWindowScript.Run(ctx, l.client, []string{redisKey, redisKey + ":counter"},
		now.UnixMilli(),
		now.Add(-l.rule.Window).UnixMilli(),
		l.rule.Requests,
		l.rule.Window.Milliseconds(),
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to run rate limit script: %w", err)
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("unexpected result length: %d", len(raw))
	}

	allowed, ok := raw[0].(int64)
	if !ok {
		return nil, fmt.Errorf("unexpected type for allowed: %T", raw[0])
	}
	remaining, ok := raw[1].(int64)
	if !ok {
		return nil, fmt.Errorf("unexpected type for remaining: %T", raw[1])
	}
	retryAfterMs, ok := raw[2].(int64)
	if !ok {
		return nil, fmt.Errorf("unexpected type for retry_after: %T", raw[2])
	}
	member, _ := raw[3].(string)

	res := &Result{
		Allowed:   allowed == 1,
		Remaining: int(remaining),
		ResetAt:   now.Add(l.rule.Window),
		Member:    member,
	}
	if !res.Allowed && retryAfterMs > 0 {
		res.RetryAfter = time.Duration(retryAfterMs) * time.Millisecond
		res.ResetAt = now.Add(res.RetryAfter)
	}
	return res, nil
}

// Release forgets a recorded request so it no longer counts against key.
func (l *SlidingWindowLimiter) Release(ctx context.Context, key, member string) error {
	if member == "" {
		return nil
	}
	if err := l.client.ZRem(ctx, l.prefix+key, member).Err(); err != nil {
		return fmt.Errorf("failed to release rate limit entry: %w", err)
	}
	return nil
}

// Rule returns the limiter's configuration.
func (l *SlidingWindowLimiter) Rule() Rule {
	return l.rule
}
