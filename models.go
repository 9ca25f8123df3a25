package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Active        bool       `bun:"is_active,notnull" json:"is_active,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	LoggedInAt    *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
}

// UserView is the sanitized projection returned to callers. It never
// carries the password hash.
type UserView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// View returns the sanitized projection of the record.
func (u *User) View() UserView {
	return UserView{
		ID:          u.ID.String(),
		Name:        u.Name,
		Email:       u.Email,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LoggedInAt,
	}
}

// NormalizeEmail lowercases and trims an email so lookups and uniqueness
// checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// userIdentity adapts a User record to the Identity interface.
type userIdentity struct {
	id     string
	name   string
	email  string
	active bool
}

var _ Identity = userIdentity{}

func identityFromUser(u *User) userIdentity {
	return userIdentity{
		id:     u.ID.String(),
		name:   u.Name,
		email:  u.Email,
		active: u.Active,
	}
}

func (a userIdentity) ID() string {
	return a.id
}

func (a userIdentity) Name() string {
	return a.name
}

func (a userIdentity) Email() string {
	return a.email
}

func (a userIdentity) IsActive() bool {
	return a.active
}
