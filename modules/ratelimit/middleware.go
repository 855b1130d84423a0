package ratelimit

import (
	"errors"
	"strconv"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// Default client messages.
const (
	MsgTooManyRequests     = "Too many requests from this IP, please try again later"
	MsgTooManyAuthAttempts = "Too many authentication attempts, please try again later"
)

type options struct {
	keyFunc        func(*fiber.Ctx) string
	message        string
	skipSuccessful bool
	logger         types.Logger
}

// Option configures the middleware returned by Handler.
type Option func(*options)

// WithKeyFunc sets how the limit key is derived from a request. The client
// IP is used by default.
func WithKeyFunc(fn func(*fiber.Ctx) string) Option {
	return func(o *options) {
		o.keyFunc = fn
	}
}

// WithMessage sets the message returned with 429 responses.
func WithMessage(msg string) Option {
	return func(o *options) {
		o.message = msg
	}
}

// WithSkipSuccessful makes only failed responses (status >= 400) count
// against the limit.
func WithSkipSuccessful() Option {
	return func(o *options) {
		o.skipSuccessful = true
	}
}

// WithLogger sets the logger for limiter backend errors.
func WithLogger(logger types.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Handler returns Fiber middleware enforcing limiter. When the backend fails
// the request is let through.
func Handler(limiter Limiter, opts ...Option) fiber.Handler {
	o := options{
		keyFunc: func(c *fiber.Ctx) string { return c.IP() },
		message: MsgTooManyRequests,
	}
	for _, opt := range opts {
		opt(&o)
	}
	limit := limiter.Rule().Requests

	return func(c *fiber.Ctx) error {
		key := o.keyFunc(c)
		if key == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Unable to determine client IP address",
			})
		}

		result, err := limiter.Allow(c.UserContext(), key)
		if err != nil {
			if o.logger != nil {
				o.logger.Error("Rate limit check failed", "key", key, "error", err)
			}
			return c.Next()
		}

		setHeaders(c, result, limit)
		if !result.Allowed {
			return tooManyRequests(c, result, o.message)
		}

		if !o.skipSuccessful {
			return c.Next()
		}

		err = c.Next()
		if responseStatus(c, err) < fiber.StatusBadRequest {
			if relErr := limiter.Release(c.UserContext(), key, result.Member); relErr != nil && o.logger != nil {
				o.logger.Warn("Failed to release rate limit entry", "key", key, "error", relErr)
			}
		}
		return err
	}
}

// responseStatus returns the status the request will end with. Errors are
// translated by the app's error handler after middleware returns.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	var coded interface{ HTTPStatus() int }
	if errors.As(err, &coded) {
		return coded.HTTPStatus()
	}
	return fiber.StatusInternalServerError
}

func setHeaders(c *fiber.Ctx, result *Result, limit int) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func tooManyRequests(c *fiber.Ctx, result *Result, message string) error {
	retryAfter := int(result.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Set("Retry-After", strconv.Itoa(retryAfter))

	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"success":    false,
		"message":    message,
		"retryAfter": retryAfter,
	})
}
