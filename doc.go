// Package auth provides stateless authentication primitives: bcrypt
// password hashing, HS256 session tokens, and the orchestration that turns
// them into login, registration, profile, and logout outcomes.
//
// Sessions are self-contained JWTs carrying a fixed claim set (sub, iss,
// aud, iat, exp). There is no server-side session record and no revocation
// list; a token stays valid until its natural expiry.
//
// Every orchestrator operation returns a Result envelope instead of raising
// errors past its boundary. Failure envelopes are deliberately uniform:
// a login against an unknown email, a wrong password, and an inactive
// account all produce the same response so callers cannot enumerate
// accounts.
//
// Audit trails flow through ActivitySink. Sinks run best-effort (errors are
// logged, never surfaced) so forwarding events to a database or queue can
// never block authentication.
package auth
