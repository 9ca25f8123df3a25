package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode("IDENTITY_NOT_FOUND")

// ErrMismatchedHashAndPassword covers both a wrong password and a malformed
// hash record; callers must not be able to tell the two apart.
var ErrMismatchedHashAndPassword = goerrors.New("mismatched password and hash", goerrors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS")

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = goerrors.New("password cannot be empty", goerrors.CategoryValidation).
	WithTextCode("INVALID_PASSWORD")

// ErrPasswordTooLong bounds hashing cost; bcrypt only consumes 72 bytes
var ErrPasswordTooLong = goerrors.New("password exceeds maximum length", goerrors.CategoryValidation).
	WithTextCode("INVALID_PASSWORD")

// Token validation failures stay distinct internally for audit logging but
// collapse to one generic message at the orchestrator boundary.
var (
	ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
				WithTextCode("TOKEN_MALFORMED")
	ErrTokenSignatureInvalid = goerrors.New("token signature is invalid", goerrors.CategoryAuth).
					WithTextCode("TOKEN_BAD_SIGNATURE")
	ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
			WithTextCode("TOKEN_EXPIRED")
	ErrTokenInvalidIssuer = goerrors.New("token has wrong issuer", goerrors.CategoryAuth).
				WithTextCode("TOKEN_BAD_ISSUER")
	ErrTokenInvalidAudience = goerrors.New("token has wrong audience", goerrors.CategoryAuth).
				WithTextCode("TOKEN_BAD_AUDIENCE")
)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
