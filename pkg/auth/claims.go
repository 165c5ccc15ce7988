package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents the JWT claims issued to origination users.
type Claims struct {
	jwt.RegisteredClaims
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Roles       []string  `json:"roles"`
	Permissions []string  `json:"permissions"`
}

// HasRole checks if the claims include the specified role.
func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasPermission checks if the claims grant the specified permission.
// Admins implicitly hold every permission.
func (c Claims) HasPermission(permission string) bool {
	if c.HasRole(RoleAdmin) {
		return true
	}
	return slices.Contains(c.Permissions, permission)
}

// Role constants
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Identity is the subject a token is issued for.
type Identity struct {
	UserID      uuid.UUID
	Username    string
	Email       string
	Roles       []string
	Permissions []string
}
