// Package tokenware extracts a bearer token from the request, validates it,
// and stores the token subject for downstream handlers. Every failure mode
// collapses to the same 401 response so callers cannot probe which check
// rejected the token.
package tokenware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrTokenMissingOrMalformed covers an absent Authorization header as well
// as one that does not carry the expected scheme.
var ErrTokenMissingOrMalformed = errors.New("missing or malformed token")

// Validator validates a raw token string and returns the subject id.
// This mirrors the session manager's Validate method without an import
// cycle.
type Validator interface {
	Validate(tokenString string) (string, error)
}

type Config struct {
	// Filter skips the middleware when it returns true.
	Filter func(*fiber.Ctx) bool
	// Validator is required.
	Validator Validator
	// ContextKey is where the subject id is stored. Defaults to "subject".
	ContextKey string
	// AuthScheme defaults to "Bearer".
	AuthScheme string
	// HeaderName defaults to the Authorization header.
	HeaderName string
	// ErrorHandler handles extraction and validation failures.
	ErrorHandler func(*fiber.Ctx, error) error
}

// New returns a fiber handler enforcing a valid token on the route.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := FromHeader(c, cfg.HeaderName, cfg.AuthScheme)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		subject, err := cfg.Validator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, subject)

		return c.Next()
	}
}

// FromHeader extracts the raw token from a scheme-prefixed header value.
func FromHeader(c *fiber.Ctx, header, authScheme string) (string, error) {
	value := c.Get(header)
	if value == "" {
		return "", ErrTokenMissingOrMalformed
	}

	l := len(authScheme)
	if l == 0 {
		return strings.TrimSpace(value), nil
	}

	if len(value) > l+1 && strings.EqualFold(value[:l], authScheme) {
		return strings.TrimSpace(value[l:]), nil
	}

	return "", ErrTokenMissingOrMalformed
}

func configDefault(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Validator == nil {
		panic("AUTH: token middleware configuration: Validator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "subject"
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.HeaderName == "" {
		cfg.HeaderName = fiber.HeaderAuthorization
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	return cfg
}

// defaultErrorHandler deliberately makes a missing token, a malformed one,
// a bad signature, and an expired token indistinguishable to the caller.
// The distinct reason stays available server-side through the error passed
// to custom handlers.
func defaultErrorHandler(c *fiber.Ctx, _ error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "Invalid or expired token",
		"errors":  []string{"TOKEN_INVALID"},
	})
}
