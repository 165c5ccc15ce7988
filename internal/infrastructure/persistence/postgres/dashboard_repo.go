package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/optic/loan-origination/internal/domain/port"
	"github.com/optic/loan-origination/internal/domain/valueobject"
	pkgpostgres "github.com/optic/loan-origination/pkg/postgres"
)

var _ port.DashboardReader = (*DashboardRepo)(nil)

// DashboardRepo computes dashboard figures with aggregate queries.
type DashboardRepo struct {
	pool *pgxpool.Pool
}

// NewDashboardRepo creates a new DashboardRepo.
func NewDashboardRepo(pool *pgxpool.Pool) *DashboardRepo {
	return &DashboardRepo{pool: pool}
}

// Stats returns overall totals plus per-month breakdowns for applications
// created at or after since. Months without applications are omitted. Both
// queries run in one repeatable-read snapshot so totals and months agree.
func (r *DashboardRepo) Stats(ctx context.Context, since time.Time) (port.DashboardStats, error) {
	var stats port.DashboardStats
	err := pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SET TRANSACTION ISOLATION LEVEL REPEATABLE READ READ ONLY`); err != nil {
			return fmt.Errorf("set dashboard snapshot: %w", err)
		}
		var err error
		stats, err = readStats(ctx, tx, since)
		return err
	})
	if err != nil {
		return port.DashboardStats{}, err
	}
	return stats, nil
}

func readStats(ctx context.Context, q pkgpostgres.Querier, since time.Time) (port.DashboardStats, error) {
	var stats port.DashboardStats

	totals := `
		SELECT
			(SELECT COUNT(*) FROM clients),
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2)
		FROM loan_applications
	`
	err := q.QueryRow(ctx, totals,
		valueobject.ApplicationStatusApproved.Code(), valueobject.ApplicationStatusRejected.Code(),
	).Scan(&stats.TotalClients, &stats.TotalApplications, &stats.Approved, &stats.Rejected)
	if err != nil {
		return port.DashboardStats{}, fmt.Errorf("query dashboard totals: %w", err)
	}

	monthly := `
		SELECT
			to_char(created_at, 'YYYY-MM') AS month,
			COUNT(*),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3)
		FROM loan_applications
		WHERE created_at >= $1
		GROUP BY month
		ORDER BY month
	`
	rows, err := q.Query(ctx, monthly, since,
		valueobject.ApplicationStatusApproved.Code(), valueobject.ApplicationStatusRejected.Code(),
	)
	if err != nil {
		return port.DashboardStats{}, fmt.Errorf("query monthly applications: %w", err)
	}

	type monthRow struct {
		month                     string
		total, approved, rejected int64
	}
	months, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (monthRow, error) {
		var m monthRow
		err := row.Scan(&m.month, &m.total, &m.approved, &m.rejected)
		return m, err
	})
	if err != nil {
		return port.DashboardStats{}, fmt.Errorf("scan monthly applications: %w", err)
	}

	for _, m := range months {
		stats.PerMonth = append(stats.PerMonth, port.MonthlyCount{Month: m.month, Total: m.total})
		stats.OutcomesPerMonth = append(stats.OutcomesPerMonth, port.MonthlyOutcome{
			Month: m.month, Approved: m.approved, Rejected: m.rejected,
		})
	}
	return stats, nil
}
