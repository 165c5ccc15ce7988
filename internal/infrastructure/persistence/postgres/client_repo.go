package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/port"
	pkgpostgres "github.com/optic/loan-origination/pkg/postgres"
)

var _ port.ClientRepository = (*ClientRepo)(nil)

const clientColumns = `id::text, full_name, document, email, phone, monthly_income, active, created_at, updated_at`

// ClientRepo implements port.ClientRepository.
type ClientRepo struct {
	pool *pgxpool.Pool
}

// NewClientRepo creates a new PostgreSQL-backed client repository.
func NewClientRepo(pool *pgxpool.Pool) *ClientRepo {
	return &ClientRepo{pool: pool}
}

// Save inserts or updates a client. A document already held by another
// client yields model.ErrDuplicateDocument.
func (r *ClientRepo) Save(ctx context.Context, c model.Client) error {
	query := `
		INSERT INTO clients (
			id, full_name, document, email, phone, monthly_income,
			active, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			full_name      = EXCLUDED.full_name,
			document       = EXCLUDED.document,
			email          = EXCLUDED.email,
			phone          = EXCLUDED.phone,
			monthly_income = EXCLUDED.monthly_income,
			active         = EXCLUDED.active,
			updated_at     = EXCLUDED.updated_at
	`
	p := c.Profile()
	_, err := r.pool.Exec(ctx, query,
		c.ID(), p.FullName, p.Document, nullString(p.Email), p.Phone, p.MonthlyIncome,
		c.Active(), c.CreatedAt(), c.UpdatedAt(),
	)
	if pkgpostgres.IsUniqueViolation(err) {
		return model.ErrDuplicateDocument
	}
	if err != nil {
		return fmt.Errorf("save client: %w", err)
	}
	return nil
}

func (r *ClientRepo) FindByID(ctx context.Context, id string) (model.Client, error) {
	return r.findOne(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
}

func (r *ClientRepo) FindByDocument(ctx context.Context, document string) (model.Client, error) {
	return r.findOne(ctx, `SELECT `+clientColumns+` FROM clients WHERE document = $1`, document)
}

func (r *ClientRepo) FindDocumentByID(ctx context.Context, id string) (string, error) {
	var document string
	err := r.pool.QueryRow(ctx, `SELECT document FROM clients WHERE id = $1`, id).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", model.ErrClientNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find client document: %w", err)
	}
	return document, nil
}

// Search matches name or document case-insensitively, newest first.
func (r *ClientRepo) Search(ctx context.Context, query string) ([]model.Client, error) {
	sql := `SELECT ` + clientColumns + `
		FROM clients
		WHERE $1::text = ''
		   OR full_name ILIKE '%' || $1::text || '%'
		   OR document ILIKE '%' || $1::text || '%'
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, sql, query)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var result []model.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Delete removes a client; its applications go with it.
func (r *ClientRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count clients: %w", err)
	}
	return n, nil
}

func (r *ClientRepo) findOne(ctx context.Context, query string, arg any) (model.Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Client{}, model.ErrClientNotFound
	}
	return c, err
}

func scanClient(s scannable) (model.Client, error) {
	var (
		id        string
		p         model.ClientProfile
		email     *string
		active    bool
		createdAt time.Time
		updatedAt *time.Time
	)
	if err := s.Scan(&id, &p.FullName, &p.Document, &email, &p.Phone, &p.MonthlyIncome, &active, &createdAt, &updatedAt); err != nil {
		return model.Client{}, fmt.Errorf("scan client: %w", err)
	}
	if email != nil {
		p.Email = *email
	}
	return model.ReconstructClient(id, p, active, createdAt, updatedAt), nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
