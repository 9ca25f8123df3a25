package auth

// Machine-oriented error codes carried in Result envelopes. Transports map
// these to status codes; the human-readable message never encodes which
// internal check failed.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	CodeConflict             = "EMAIL_TAKEN"
	CodeTokenInvalid         = "TOKEN_INVALID"
	CodeNotFound             = "NOT_FOUND"
	CodeInternal             = "INTERNAL_ERROR"
)

// Generic user-facing messages. MsgInvalidCredentials is shared by every
// login failure path so the envelopes stay byte-identical.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgEmailTaken         = "email already registered"
	MsgUserNotFound       = "User not found"
	MsgInvalidToken       = "Invalid or expired token"
	MsgInternalError      = "Something went wrong"
)

// Result is the uniform envelope every orchestrator operation returns. It
// decouples the core from any particular transport's status-code mapping.
type Result[T any] struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *T       `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// Ok builds a success envelope carrying a payload.
func Ok[T any](message string, data T) Result[T] {
	return Result[T]{
		Success: true,
		Message: message,
		Data:    &data,
	}
}

// Fail builds a failure envelope with ordered machine codes.
func Fail[T any](message string, codes ...string) Result[T] {
	return Result[T]{
		Success: false,
		Message: message,
		Errors:  codes,
	}
}
