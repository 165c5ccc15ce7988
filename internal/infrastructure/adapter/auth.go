package adapter

import (
	"github.com/google/uuid"

	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/port"
	"github.com/optic/loan-origination/pkg/auth"
)

var (
	_ port.PasswordHasher = BcryptHasher{}
	_ port.TokenIssuer    = (*JWTTokenIssuer)(nil)
)

// BcryptHasher implements port.PasswordHasher with bcrypt.
type BcryptHasher struct{}

func (BcryptHasher) Hash(password string) (string, error) { return auth.HashPassword(password) }

func (BcryptHasher) Compare(hash, password string) error { return auth.CheckPassword(hash, password) }

// JWTTokenIssuer signs tokens carrying the user's roles and permissions.
type JWTTokenIssuer struct {
	jwt *auth.JWTService
}

// NewJWTTokenIssuer creates an issuer backed by svc.
func NewJWTTokenIssuer(svc *auth.JWTService) *JWTTokenIssuer {
	return &JWTTokenIssuer{jwt: svc}
}

func (i *JWTTokenIssuer) Issue(u model.User) (string, error) {
	id, err := uuid.Parse(u.ID())
	if err != nil {
		return "", err
	}
	perms := u.Permissions()
	names := make([]string, len(perms))
	for k, p := range perms {
		names[k] = string(p)
	}
	return i.jwt.GenerateToken(auth.Identity{
		UserID:      id,
		Username:    u.Username(),
		Email:       u.Email(),
		Roles:       u.RoleNames(),
		Permissions: names,
	})
}
