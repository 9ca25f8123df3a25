//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

// The race detector makes bcrypt slow enough to trip strict test timeouts,
// so race-enabled builds fall back to the library default cost.
func passwordHashCost() int {
	return bcrypt.DefaultCost
}
