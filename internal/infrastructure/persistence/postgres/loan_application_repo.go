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
	"github.com/optic/loan-origination/internal/domain/valueobject"
)

var _ port.LoanApplicationRepository = (*LoanApplicationRepo)(nil)

const applicationColumns = `
	a.id::text, a.client_id::text,
	a.principal, a.down_payment_percent, a.term_years,
	a.risk_tier, a.annual_rate, a.monthly_rate,
	a.down_payment, a.financed_amount, a.monthly_installment,
	a.effective_annual_rate, a.term_months,
	a.status, a.rejection_reason, a.version, a.created_at, a.updated_at`

// LoanApplicationRepo implements port.LoanApplicationRepository.
type LoanApplicationRepo struct {
	pool *pgxpool.Pool
}

// NewLoanApplicationRepo creates a new repository backed by PostgreSQL.
func NewLoanApplicationRepo(pool *pgxpool.Pool) *LoanApplicationRepo {
	return &LoanApplicationRepo{pool: pool}
}

// Save persists a loan application (upsert by ID with optimistic locking).
// The aggregate carries the version it will have once stored, so an update
// only applies over the row at version-1.
func (r *LoanApplicationRepo) Save(ctx context.Context, app model.LoanApplication) error {
	query := `
		INSERT INTO loan_applications (
			id, client_id, principal, down_payment_percent, term_years,
			risk_tier, annual_rate, monthly_rate, down_payment, financed_amount,
			monthly_installment, effective_annual_rate, term_months,
			status, rejection_reason, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (id) DO UPDATE SET
			principal             = EXCLUDED.principal,
			down_payment_percent  = EXCLUDED.down_payment_percent,
			term_years            = EXCLUDED.term_years,
			annual_rate           = EXCLUDED.annual_rate,
			monthly_rate          = EXCLUDED.monthly_rate,
			down_payment          = EXCLUDED.down_payment,
			financed_amount       = EXCLUDED.financed_amount,
			monthly_installment   = EXCLUDED.monthly_installment,
			effective_annual_rate = EXCLUDED.effective_annual_rate,
			term_months           = EXCLUDED.term_months,
			status                = EXCLUDED.status,
			rejection_reason      = EXCLUDED.rejection_reason,
			version               = EXCLUDED.version,
			updated_at            = EXCLUDED.updated_at
		WHERE loan_applications.version = EXCLUDED.version - 1
	`
	terms := app.Terms()
	calc := app.Calculation()
	tag, err := r.pool.Exec(ctx, query,
		app.ID(), app.ClientID(),
		terms.Principal, terms.DownPaymentPercent, terms.TermYears,
		app.RiskTier().Level(), calc.AnnualRate, calc.MonthlyRate,
		calc.DownPayment, calc.FinancedAmount,
		calc.MonthlyInstallment, calc.EffectiveAnnualRate, calc.TermMonths,
		app.Status().Code(), app.RejectionReason(),
		app.Version(), app.CreatedAt(), app.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save loan application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOptimisticLock
	}
	return nil
}

// FindByID retrieves a single loan application.
func (r *LoanApplicationRepo) FindByID(ctx context.Context, id string) (model.LoanApplication, error) {
	query := `SELECT ` + applicationColumns + `
		FROM loan_applications a
		WHERE a.id = $1
	`
	app, err := scanApplication(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.LoanApplication{}, model.ErrApplicationNotFound
	}
	return app, err
}

// Delete removes an application.
func (r *LoanApplicationRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM loan_applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete loan application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrApplicationNotFound
	}
	return nil
}

// Search matches the owning client's name or document.
func (r *LoanApplicationRepo) Search(ctx context.Context, query string) ([]model.LoanApplication, error) {
	sql := `SELECT ` + applicationColumns + `
		FROM loan_applications a
		JOIN clients c ON c.id = a.client_id
		WHERE $1::text = ''
		   OR c.full_name ILIKE '%' || $1::text || '%'
		   OR c.document ILIKE '%' || $1::text || '%'
		ORDER BY a.created_at DESC
	`
	rows, err := r.pool.Query(ctx, sql, query)
	if err != nil {
		return nil, fmt.Errorf("query loan applications: %w", err)
	}
	defer rows.Close()

	var result []model.LoanApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, app)
	}
	return result, rows.Err()
}

func scanApplication(s scannable) (model.LoanApplication, error) {
	var (
		id, clientID         string
		terms                model.LoanTerms
		tier                 int
		calc                 model.CalculationResult
		statusCode           int
		reason               string
		version              int
		createdAt, updatedAt time.Time
	)

	err := s.Scan(
		&id, &clientID,
		&terms.Principal, &terms.DownPaymentPercent, &terms.TermYears,
		&tier, &calc.AnnualRate, &calc.MonthlyRate,
		&calc.DownPayment, &calc.FinancedAmount, &calc.MonthlyInstallment,
		&calc.EffectiveAnnualRate, &calc.TermMonths,
		&statusCode, &reason, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.LoanApplication{}, fmt.Errorf("scan loan application: %w", err)
	}

	status, err := valueobject.ApplicationStatusFromCode(statusCode)
	if err != nil {
		return model.LoanApplication{}, fmt.Errorf("parse status: %w", err)
	}

	return model.ReconstructLoanApplication(
		id, clientID, terms,
		valueobject.RiskTierFromLevel(&tier), calc,
		status, reason, version, createdAt, updatedAt,
	), nil
}
