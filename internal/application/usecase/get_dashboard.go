package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/optic/loan-origination/internal/application/dto"
	"github.com/optic/loan-origination/internal/domain/port"
)

// dashboardWindow is how far back the monthly series reach.
const dashboardWindow = 12

// GetDashboardUseCase reports client and application totals.
type GetDashboardUseCase struct {
	reader port.DashboardReader
}

// NewGetDashboardUseCase wires dependencies.
func NewGetDashboardUseCase(reader port.DashboardReader) *GetDashboardUseCase {
	return &GetDashboardUseCase{reader: reader}
}

// Execute returns totals and the monthly series for the last 12 months.
// Months without applications are absent from the series.
func (uc *GetDashboardUseCase) Execute(ctx context.Context) (dto.DashboardResponse, error) {
	since := time.Now().UTC().AddDate(0, -dashboardWindow, 0)

	stats, err := uc.reader.Stats(ctx, since)
	if err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("load dashboard stats: %w", err)
	}

	resp := dto.DashboardResponse{
		TotalClients:      stats.TotalClients,
		TotalApplications: stats.TotalApplications,
		TotalApproved:     stats.Approved,
		TotalRejected:     stats.Rejected,
		PerMonth:          make([]dto.MonthlyCountResponse, 0, len(stats.PerMonth)),
		OutcomesPerMonth:  make([]dto.MonthlyOutcomeResponse, 0, len(stats.OutcomesPerMonth)),
	}
	for _, m := range stats.PerMonth {
		resp.PerMonth = append(resp.PerMonth, dto.MonthlyCountResponse{Month: m.Month, Total: m.Total})
	}
	for _, m := range stats.OutcomesPerMonth {
		resp.OutcomesPerMonth = append(resp.OutcomesPerMonth, dto.MonthlyOutcomeResponse{
			Month:    m.Month,
			Approved: m.Approved,
			Rejected: m.Rejected,
		})
	}
	return resp, nil
}
