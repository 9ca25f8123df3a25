package auth

import (
	"time"
)

// DefaultTokenExpiration is the token lifetime, in hours, applied when the
// configuration does not set one.
const DefaultTokenExpiration = 24

// SessionManager issues tokens for authenticated identities and validates
// presented tokens against the process issuer, audience, and signing key.
//
// A token has exactly two states, valid and invalid, and the only
// transition between them is time-driven expiry. There is no revocation
// list; logout does not touch token state.
type SessionManager struct {
	tokens   *TokenService
	lifetime time.Duration
	timeFunc func() time.Time
}

// NewSessionManager builds a SessionManager from process configuration.
func NewSessionManager(cfg Config, logger Logger) *SessionManager {
	if logger == nil {
		logger = defLogger{}
	}

	expiration := cfg.GetTokenExpiration()
	if expiration <= 0 {
		expiration = DefaultTokenExpiration
	}

	return &SessionManager{
		tokens:   NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetIssuer(), cfg.GetAudience(), logger),
		lifetime: time.Duration(expiration) * time.Hour,
		timeFunc: time.Now,
	}
}

// WithTimeFunc overrides the clock used for issuance and validation.
func (s *SessionManager) WithTimeFunc(fn func() time.Time) *SessionManager {
	if fn != nil {
		s.timeFunc = fn
		s.tokens.WithTimeFunc(fn)
	}
	return s
}

// TokenService exposes the underlying codec, e.g. for middleware wiring.
func (s *SessionManager) TokenService() *TokenService {
	return s.tokens
}

// Lifetime returns the configured token lifetime.
func (s *SessionManager) Lifetime() time.Duration {
	return s.lifetime
}

// Issue builds a claim set for the identity and signs it. Purely in-memory;
// no server-side session record is created.
func (s *SessionManager) Issue(identity Identity) (string, time.Time, error) {
	now := s.timeFunc()
	claims := NewSessionClaims(identity.ID(), s.tokens.issuer, s.tokens.audience, now, s.lifetime)

	token, err := s.tokens.SignClaims(claims)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, claims.Expires(), nil
}

// Validate decodes the token against the process issuer, audience, and key,
// returning only the subject id.
func (s *SessionManager) Validate(tokenString string) (string, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject(), nil
}

// SessionObject is the decoded view of a validated token.
type SessionObject struct {
	UserID    string     `json:"user_id,omitempty"`
	Audience  []string   `json:"audience,omitempty"`
	Issuer    string     `json:"issuer,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// SessionFromToken validates a raw token and projects its claims.
func (s *SessionManager) SessionFromToken(tokenString string) (*SessionObject, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	issuedAt := claims.IssuedAt()
	expiresAt := claims.Expires()

	return &SessionObject{
		UserID:    claims.Subject(),
		Audience:  claims.RegisteredClaims.Audience,
		Issuer:    claims.RegisteredClaims.Issuer,
		IssuedAt:  &issuedAt,
		ExpiresAt: &expiresAt,
	}, nil
}
