package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/optic/loan-origination/internal/application/dto"
	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/port"
)

const tokenType = "Bearer"

// RegisterUserUseCase signs up a user with the USER role and returns a token.
type RegisterUserUseCase struct {
	users  port.UserRepository
	hasher port.PasswordHasher
	tokens port.TokenIssuer
}

// NewRegisterUserUseCase wires dependencies.
func NewRegisterUserUseCase(users port.UserRepository, hasher port.PasswordHasher, tokens port.TokenIssuer) *RegisterUserUseCase {
	return &RegisterUserUseCase{users: users, hasher: hasher, tokens: tokens}
}

// Execute fails with model.ErrDuplicateUsername or model.ErrDuplicateEmail
// when either is taken.
func (uc *RegisterUserUseCase) Execute(ctx context.Context, req dto.RegisterUserRequest) (dto.AuthResponse, error) {
	now := time.Now().UTC()

	// 1. Validate input.
	if err := model.ValidateRegistration(req.Username, req.Email, req.Password); err != nil {
		return dto.AuthResponse{}, err
	}
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// 2. Enforce uniqueness.
	taken, err := uc.users.ExistsByUsername(ctx, username)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return dto.AuthResponse{}, model.ErrDuplicateUsername
	}
	taken, err = uc.users.ExistsByEmail(ctx, email)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return dto.AuthResponse{}, model.ErrDuplicateEmail
	}

	// 3. Hash and persist.
	hash, err := uc.hasher.Hash(req.Password)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}
	user := model.NewUser(username, email, hash, now)
	if err := uc.users.Save(ctx, user); err != nil {
		return dto.AuthResponse{}, fmt.Errorf("save user: %w", err)
	}

	// 4. Issue a token.
	return issue(uc.tokens, user)
}

// LoginUseCase authenticates by email and password.
type LoginUseCase struct {
	users  port.UserRepository
	hasher port.PasswordHasher
	tokens port.TokenIssuer
}

// NewLoginUseCase wires dependencies.
func NewLoginUseCase(users port.UserRepository, hasher port.PasswordHasher, tokens port.TokenIssuer) *LoginUseCase {
	return &LoginUseCase{users: users, hasher: hasher, tokens: tokens}
}

// Execute returns model.ErrInvalidCredentials for an unknown email or a wrong
// password, so callers cannot tell the two apart.
func (uc *LoginUseCase) Execute(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	user, err := uc.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return dto.AuthResponse{}, model.ErrInvalidCredentials
		}
		return dto.AuthResponse{}, fmt.Errorf("find user: %w", err)
	}
	if err := uc.hasher.Compare(user.PasswordHash(), req.Password); err != nil {
		return dto.AuthResponse{}, model.ErrInvalidCredentials
	}
	if !user.Enabled() {
		return dto.AuthResponse{}, model.ErrUserDisabled
	}
	return issue(uc.tokens, user)
}

func issue(tokens port.TokenIssuer, user model.User) (dto.AuthResponse, error) {
	token, err := tokens.Issue(user)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("issue token: %w", err)
	}
	perms := user.Permissions()
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	return dto.AuthResponse{
		Token:       token,
		Type:        tokenType,
		Username:    user.Username(),
		Email:       user.Email(),
		Roles:       user.RoleNames(),
		Permissions: names,
	}, nil
}
