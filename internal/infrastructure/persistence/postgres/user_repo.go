package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/port"
	"github.com/optic/loan-origination/internal/domain/valueobject"
	pkgpostgres "github.com/optic/loan-origination/pkg/postgres"
)

var _ port.UserRepository = (*UserRepo)(nil)

// UserRepo implements port.UserRepository.
type UserRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepo creates a new PostgreSQL-backed user repository.
func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Save inserts a user. Username and email clashes map to their domain errors.
func (r *UserRepo) Save(ctx context.Context, u model.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, enabled, roles, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err := r.pool.Exec(ctx, query,
		u.ID(), u.Username(), u.Email(), u.PasswordHash(), u.Enabled(), u.RoleNames(), u.CreatedAt(),
	)
	if pkgpostgres.IsUniqueViolation(err) {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_users_username" {
			return model.ErrDuplicateUsername
		}
		return model.ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	query := `
		SELECT id::text, username, email, password_hash, enabled, roles, created_at
		FROM users
		WHERE email = LOWER($1)
	`
	var (
		id, username, mail, hash string
		enabled                  bool
		roleNames                []string
		createdAt                time.Time
	)
	err := r.pool.QueryRow(ctx, query, email).Scan(&id, &username, &mail, &hash, &enabled, &roleNames, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by email: %w", err)
	}

	roles := make([]valueobject.Role, 0, len(roleNames))
	for _, name := range roleNames {
		role, err := valueobject.NewRole(name)
		if err != nil {
			continue
		}
		roles = append(roles, role)
	}
	return model.ReconstructUser(id, username, mail, hash, enabled, roles, createdAt), nil
}

func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = LOWER($1))`, email)
}

func (r *UserRepo) exists(ctx context.Context, query string, arg string) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return ok, nil
}
