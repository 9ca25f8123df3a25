package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength bounds hashing cost; bcrypt ignores input past 72 bytes
// so anything longer is rejected instead of silently truncated.
const MaxPasswordLength = 72

// DefaultHashCost is the baseline bcrypt work factor. The cost is embedded
// in every hash record, so raising it later never breaks stored hashes.
const DefaultHashCost = 12

// Hasher derives and verifies salted bcrypt hash records with a tunable
// work factor.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given work factor. Costs below the
// baseline fall back to the process default; bcrypt.MaxCost is the ceiling.
func NewHasher(cost int) Hasher {
	if cost < DefaultHashCost {
		cost = passwordHashCost()
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return Hasher{cost: cost}
}

// Hash derives a random salt and returns a self-describing record embedding
// algorithm id, work factor, salt, and digest.
func (h Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	cost := h.cost
	if cost == 0 {
		// zero-value Hasher; use the process default
		cost = passwordHashCost()
	}

	record, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(record), nil
}

// Verify recomputes the digest using the cost and salt embedded in the
// record and compares in constant time. A malformed record and a wrong
// password are indistinguishable: both report false.
func (h Hasher) Verify(password, record string) bool {
	return bcrypt.CompareHashAndPassword([]byte(record), []byte(password)) == nil
}

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	return NewHasher(passwordHashCost()).Hash(password)
}

// ComparePasswordAndHash will validate the given cleartext password matches
// the hashed record. Every failure collapses to
// ErrMismatchedHashAndPassword.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatchedHashAndPassword
	}
	return nil
}
