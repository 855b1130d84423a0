package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/amichai1/task-manager-app/domain/apperr"
	domain "github.com/amichai1/task-manager-app/domain/user"
	"github.com/amichai1/task-manager-app/modules/auth"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// UserContextKey is the Fiber locals key holding the caller's *domain.Profile.
const UserContextKey = "user"

// Auth gateway messages.
const (
	MsgNoToken      = "Not authorized, no token"
	MsgInvalidToken = "Invalid token"
	MsgTokenExpired = "Token expired"
	MsgNoUser       = "No user found for this token"
	MsgTokenFailed  = "Not authorized, token failed"
)

// Protect rejects requests without a valid bearer token for an existing user.
func Protect(authPort auth.AuthPort, logger types.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return apperr.Unauthorized(MsgNoToken)
		}

		profile, err := resolveUser(c, authPort, token)
		if err != nil {
			var appErr *apperr.Error
			if !errors.As(err, &appErr) {
				logger.Warn("Token verification failed", "path", c.Path(), "error", err)
				return apperr.Unauthorized(MsgTokenFailed)
			}
			return appErr
		}

		c.Locals(UserContextKey, profile)
		return c.Next()
	}
}

// OptionalAuth sets the caller's identity when a usable token is present and
// otherwise continues anonymously.
func OptionalAuth(authPort auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			if profile, err := resolveUser(c, authPort, token); err == nil {
				c.Locals(UserContextKey, profile)
			}
		}
		return c.Next()
	}
}

func resolveUser(c *fiber.Ctx, authPort auth.AuthPort, token string) (*domain.Profile, error) {
	claims, err := authPort.ValidateToken(c.UserContext(), token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrExpiredToken):
			return nil, apperr.Unauthorized(MsgTokenExpired)
		case errors.Is(err, auth.ErrInvalidToken):
			return nil, apperr.Unauthorized(MsgInvalidToken)
		}
		return nil, err
	}

	profile, err := authPort.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized(MsgNoUser)
		}
		return nil, err
	}
	return profile, nil
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// currentUser returns the profile stored by Protect or OptionalAuth.
func currentUser(c *fiber.Ctx) *domain.Profile {
	profile, _ := c.Locals(UserContextKey).(*domain.Profile)
	return profile
}

var (
	scriptBlock   = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	iframeBlock   = regexp.MustCompile(`(?is)<iframe\b.*?</iframe>`)
	jsScheme      = regexp.MustCompile(`(?i)javascript:`)
	inlineHandler = regexp.MustCompile(`(?i)on\w+\s*=`)
)

// sanitizeString strips script and iframe blocks, javascript: URLs and inline
// event handlers, then trims the result.
func sanitizeString(s string) string {
	s = scriptBlock.ReplaceAllString(s, "")
	s = iframeBlock.ReplaceAllString(s, "")
	s = jsScheme.ReplaceAllString(s, "")
	s = inlineHandler.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func sanitizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return sanitizeString(val)
	case map[string]any:
		for k, item := range val {
			val[k] = sanitizeValue(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = sanitizeValue(item)
		}
		return val
	default:
		return v
	}
}

// Sanitize cleans every string in JSON request bodies and query values.
// A JSON body that does not parse is rejected with "Invalid JSON".
func Sanitize() fiber.Handler {
	return func(c *fiber.Ctx) error {
		args := c.Context().QueryArgs()
		cleaned := make(map[string]string)
		args.VisitAll(func(key, value []byte) {
			if s := sanitizeString(string(value)); s != string(value) {
				cleaned[string(key)] = s
			}
		})
		for k, v := range cleaned {
			args.Set(k, v)
		}

		body := c.Body()
		if len(bytes.TrimSpace(body)) == 0 || !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
			return c.Next()
		}

		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		var payload any
		if err := dec.Decode(&payload); err != nil {
			return apperr.Validation(MsgInvalidJSON)
		}
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return apperr.Validation(MsgInvalidJSON)
		}

		out, err := json.Marshal(sanitizeValue(payload))
		if err != nil {
			return apperr.Internal(err)
		}
		c.Request().SetBody(out)
		return c.Next()
	}
}
