package model

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/optic/loan-origination/internal/domain/valueobject"
)

const minPasswordLength = 6

// User is an API account. Permissions are derived from roles.
type User struct {
	id           string
	username     string
	email        string
	passwordHash string
	enabled      bool
	roles        []valueobject.Role
	createdAt    time.Time
}

// ValidateRegistration checks the raw fields supplied at sign-up.
func ValidateRegistration(username, email, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return invalid("username", "is required")
	}
	if n := utf8.RuneCountInString(username); n < 3 || n > 50 {
		return invalid("username", "must be between 3 and 50 characters")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return invalid("email", "is not a valid address")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return invalid("password", "must be at least 6 characters")
	}
	return nil
}

// NewUser creates an enabled user holding the USER role. The password must
// already be hashed.
func NewUser(username, email, passwordHash string, now time.Time) User {
	return User{
		id:           uuid.New().String(),
		username:     strings.TrimSpace(username),
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: passwordHash,
		enabled:      true,
		roles:        []valueobject.Role{valueobject.RoleUser},
		createdAt:    now,
	}
}

// ReconstructUser rebuilds a user from persistence.
func ReconstructUser(id, username, email, passwordHash string, enabled bool, roles []valueobject.Role, createdAt time.Time) User {
	return User{
		id:           id,
		username:     username,
		email:        email,
		passwordHash: passwordHash,
		enabled:      enabled,
		roles:        roles,
		createdAt:    createdAt,
	}
}

func (u User) ID() string                { return u.id }
func (u User) Username() string          { return u.username }
func (u User) Email() string             { return u.email }
func (u User) PasswordHash() string      { return u.passwordHash }
func (u User) Enabled() bool             { return u.enabled }
func (u User) Roles() []valueobject.Role { return u.roles }
func (u User) CreatedAt() time.Time      { return u.createdAt }

// Permissions returns the sorted union of permissions granted by the roles.
func (u User) Permissions() []valueobject.Permission {
	return valueobject.PermissionsFor(u.roles...)
}

// RoleNames returns roles as plain strings.
func (u User) RoleNames() []string {
	out := make([]string, len(u.roles))
	for i, r := range u.roles {
		out[i] = string(r)
	}
	return out
}
