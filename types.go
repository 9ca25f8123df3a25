package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Name() string
	Email() string
	IsActive() bool
}

// IdentityStore is the persistence boundary the orchestrator consumes.
// Implementations own user records; the core treats every record as an
// immutable value for the duration of one operation.
type IdentityStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	Register(ctx context.Context, user *User) (*User, error)
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

// Config holds auth options. Implementations are loaded once at startup and
// never mutated, so they are safe for unsynchronized concurrent reads.
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAudience() []string
	GetTokenExpiration() int
	GetPasswordCost() int
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// TokenValidator validates a raw token string into structured claims.
type TokenValidator interface {
	Validate(tokenString string) (*SessionClaims, error)
}

// TokenIssuer signs a claim set into a compact token string.
type TokenIssuer interface {
	SignClaims(claims *SessionClaims) (string, error)
}

// Sessioner issues and validates self-contained session tokens.
type Sessioner interface {
	Issue(identity Identity) (string, time.Time, error)
	Validate(tokenString string) (string, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
