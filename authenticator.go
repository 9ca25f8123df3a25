package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// LoginData is the payload carried by successful login and registration
// envelopes.
type LoginData struct {
	Token     string    `json:"token"`
	User      UserView  `json:"user"`
	ExpiresAt time.Time `json:"expires"`
}

// Auther composes the password hasher, the session manager, and the
// external identity store into login, registration, profile, and logout
// outcomes. Every public operation returns a Result envelope; no lower
// level error escapes past this boundary.
type Auther struct {
	store        IdentityStore
	hasher       Hasher
	sessions     *SessionManager
	logger       Logger
	activitySink ActivitySink
	timeFunc     func() time.Time
}

// NewAuthenticator returns a new Auther wired from process configuration.
func NewAuthenticator(store IdentityStore, cfg Config) *Auther {
	return &Auther{
		store:        store,
		hasher:       NewHasher(cfg.GetPasswordCost()),
		sessions:     NewSessionManager(cfg, defLogger{}),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
		timeFunc:     time.Now,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithTimeFunc overrides the clock used for record timestamps and token
// issuance.
func (s *Auther) WithTimeFunc(fn func() time.Time) *Auther {
	if fn != nil {
		s.timeFunc = fn
		s.sessions.WithTimeFunc(fn)
	}
	return s
}

// Sessions returns the SessionManager used by this Auther.
func (s *Auther) Sessions() *SessionManager {
	return s.sessions
}

// Login verifies the credential against the stored hash and issues a
// session token. An unknown email, a wrong password, and an inactive
// account all return the same failure envelope; nothing in the response
// distinguishes which check failed.
func (s *Auther) Login(ctx context.Context, email, password string) Result[LoginData] {
	if ctx.Err() != nil {
		return Fail[LoginData](MsgInternalError, CodeInternal)
	}

	normalized := NormalizeEmail(email)

	user, err := s.store.GetByEmail(ctx, normalized)
	if err != nil {
		if goerrors.IsNotFound(err) {
			s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
				"email":  normalized,
				"reason": "identity not found",
			})
			return s.failedLogin()
		}
		s.logger.Error("Login identity lookup error", "error", err)
		return Fail[LoginData](MsgInternalError, CodeInternal)
	}

	if user == nil || !user.Active || !s.hasher.Verify(password, user.PasswordHash) {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromUser(user), s.userID(user), map[string]any{
			"email":  normalized,
			"reason": loginFailureReason(user),
		})
		return s.failedLogin()
	}

	// Best effort: a failure to persist the last-login timestamp never
	// fails the login itself.
	if err := s.store.TrackSuccessfulLogin(ctx, user); err != nil {
		s.logger.Warn("Login failed to track last login", "error", err)
	}

	if ctx.Err() != nil {
		return Fail[LoginData](MsgInternalError, CodeInternal)
	}

	token, expiresAt, err := s.sessions.Issue(identityFromUser(user))
	if err != nil {
		s.logger.Error("Login token issuance error", "error", err)
		return Fail[LoginData](MsgInternalError, CodeInternal)
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, s.actorFromUser(user), user.ID.String(), map[string]any{
		"email": normalized,
	})

	return Ok("Login successful", LoginData{
		Token:     token,
		User:      user.View(),
		ExpiresAt: expiresAt,
	})
}

// Register creates a new active identity and issues a first session token.
// The duplicate check covers inactive accounts too, so a disabled email
// cannot be re-registered. The check and the insert are separate store
// calls; the store's unique index is the backstop for the race window.
func (s *Auther) Register(ctx context.Context, name, email, password string) Result[LoginData] {
	if ctx.Err() != nil {
		return Fail[LoginData](MsgInternalError, CodeInternal)
	}

	normalized := NormalizeEmail(email)

	existing, err := s.store.GetByEmail(ctx, normalized)
	if err == nil && existing != nil {
		s.emitAuthEvent(ctx, ActivityEventRegisterConflict, ActorRef{Type: "unknown"}, "", map[string]any{
			"email": normalized,
		})
		return Fail[LoginData](MsgEmailTaken, CodeConflict)
	}
	if err != nil && !goerrors.IsNotFound(err) {
		s.logger.Error("Register duplicate check error", "error", err)
		return Fail[LoginData](MsgInternalError, CodeInternal)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryValidation {
			return Fail[LoginData](richErr.Message, CodeValidation)
		}
		s.logger.Error("Register password hash error", "error", err)
		return Fail[LoginData](MsgInternalError, CodeInternal)
	}

	now := s.timeFunc()
	user := &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        normalized,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    &now,
	}

	created, err := s.store.Register(ctx, user)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryConflict {
			// lost the race; the unique index caught it
			return Fail[LoginData](MsgEmailTaken, CodeConflict)
		}
		s.logger.Error("Register create error", "error", err)
		return Fail[LoginData](MsgInternalError, CodeInternal)
	}

	if ctx.Err() != nil {
		return Fail[LoginData](MsgInternalError, CodeInternal)
	}

	token, expiresAt, err := s.sessions.Issue(identityFromUser(created))
	if err != nil {
		s.logger.Error("Register token issuance error", "error", err)
		return Fail[LoginData](MsgInternalError, CodeInternal)
	}

	s.emitAuthEvent(ctx, ActivityEventRegisterSuccess, s.actorFromUser(created), created.ID.String(), map[string]any{
		"email": normalized,
	})

	return Ok("Registration successful", LoginData{
		Token:     token,
		User:      created.View(),
		ExpiresAt: expiresAt,
	})
}

// Profile retrieves the sanitized view of an active identity.
func (s *Auther) Profile(ctx context.Context, id uuid.UUID) Result[UserView] {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return Fail[UserView](MsgUserNotFound, CodeNotFound)
		}
		s.logger.Error("Profile lookup error", "error", err)
		return Fail[UserView](MsgInternalError, CodeInternal)
	}

	if user == nil || !user.Active {
		return Fail[UserView](MsgUserNotFound, CodeNotFound)
	}

	return Ok("Profile retrieved", user.View())
}

// Logout acknowledges the end of a session. Tokens are self-contained, so
// nothing is invalidated server-side: the token remains usable until its
// natural expiry. The event is recorded for audit purposes.
func (s *Auther) Logout(ctx context.Context, subjectID string) Result[bool] {
	s.emitAuthEvent(ctx, ActivityEventLogout, ActorRef{ID: subjectID, Type: "user"}, subjectID, nil)
	return Ok("Logged out", true)
}

// failedLogin is the single anti-enumeration failure envelope shared by
// every login failure path.
func (s *Auther) failedLogin() Result[LoginData] {
	return Fail[LoginData](MsgInvalidCredentials, CodeAuthenticationFailed)
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.timeFunc()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error", "error", err)
	}
}

func (s *Auther) actorFromUser(user *User) ActorRef {
	if user == nil {
		return ActorRef{Type: "unknown"}
	}
	return ActorRef{
		ID:   user.ID.String(),
		Type: "user",
	}
}

func (s *Auther) userID(user *User) string {
	if user == nil {
		return ""
	}
	return user.ID.String()
}

func loginFailureReason(user *User) string {
	switch {
	case user == nil:
		return "identity not found"
	case !user.Active:
		return "identity inactive"
	default:
		return "password mismatch"
	}
}
