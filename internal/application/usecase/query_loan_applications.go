package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/optic/loan-origination/internal/application/dto"
	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/port"
)

// GetApplicationUseCase retrieves a loan application by ID.
type GetApplicationUseCase struct {
	appRepo port.LoanApplicationRepository
	clients port.ClientRepository
}

// NewGetApplicationUseCase wires dependencies.
func NewGetApplicationUseCase(appRepo port.LoanApplicationRepository, clients port.ClientRepository) *GetApplicationUseCase {
	return &GetApplicationUseCase{appRepo: appRepo, clients: clients}
}

// Execute returns a loan application response for the given ID.
func (uc *GetApplicationUseCase) Execute(
	ctx context.Context,
	req dto.GetApplicationRequest,
) (dto.LoanApplicationResponse, error) {
	if err := requireID(req.ApplicationID, model.ErrApplicationNotFound); err != nil {
		return dto.LoanApplicationResponse{}, err
	}
	app, err := uc.appRepo.FindByID(ctx, req.ApplicationID)
	if err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("find application: %w", err)
	}
	client, err := newClientLookup(uc.clients).get(ctx, app.ClientID())
	if err != nil {
		return dto.LoanApplicationResponse{}, err
	}
	return toApplicationResponse(app, client), nil
}

// SearchApplicationsUseCase lists applications, optionally filtered by client
// name or document.
type SearchApplicationsUseCase struct {
	appRepo port.LoanApplicationRepository
	clients port.ClientRepository
}

// NewSearchApplicationsUseCase wires dependencies.
func NewSearchApplicationsUseCase(appRepo port.LoanApplicationRepository, clients port.ClientRepository) *SearchApplicationsUseCase {
	return &SearchApplicationsUseCase{appRepo: appRepo, clients: clients}
}

// Execute returns matching applications, newest first.
func (uc *SearchApplicationsUseCase) Execute(
	ctx context.Context,
	req dto.SearchRequest,
) ([]dto.LoanApplicationResponse, error) {
	apps, err := uc.appRepo.Search(ctx, strings.TrimSpace(req.Query))
	if err != nil {
		return nil, fmt.Errorf("search applications: %w", err)
	}

	lookup := newClientLookup(uc.clients)
	out := make([]dto.LoanApplicationResponse, 0, len(apps))
	for _, app := range apps {
		client, err := lookup.get(ctx, app.ClientID())
		if err != nil {
			return nil, err
		}
		out = append(out, toApplicationResponse(app, client))
	}
	return out, nil
}

// GetScheduleUseCase builds the amortization schedule of an application.
type GetScheduleUseCase struct {
	appRepo port.LoanApplicationRepository
}

// NewGetScheduleUseCase wires dependencies.
func NewGetScheduleUseCase(appRepo port.LoanApplicationRepository) *GetScheduleUseCase {
	return &GetScheduleUseCase{appRepo: appRepo}
}

// Execute returns the schedule. Rejected applications yield no entries.
func (uc *GetScheduleUseCase) Execute(ctx context.Context, req dto.GetApplicationRequest) (dto.ScheduleResponse, error) {
	if err := requireID(req.ApplicationID, model.ErrApplicationNotFound); err != nil {
		return dto.ScheduleResponse{}, err
	}
	app, err := uc.appRepo.FindByID(ctx, req.ApplicationID)
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("find application: %w", err)
	}

	schedule := app.Schedule()
	entries := make([]dto.AmortizationEntryResponse, 0, len(schedule))
	for _, e := range schedule {
		entries = append(entries, dto.AmortizationEntryResponse{
			Period:           e.Period,
			DueDate:          e.DueDate,
			Principal:        e.Principal,
			Interest:         e.Interest,
			Total:            e.Total,
			RemainingBalance: e.RemainingBalance,
		})
	}
	return dto.ScheduleResponse{ApplicationID: app.ID(), Entries: entries}, nil
}
