package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/optic/loan-origination/internal/application/dto"
	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/port"
)

// RecomputeLoanApplicationUseCase rescales a decided application. It holds no
// risk gateway: the tier stored on the application is the only risk input.
type RecomputeLoanApplicationUseCase struct {
	appRepo   port.LoanApplicationRepository
	clients   port.ClientRepository
	rates     model.RateSource
	publisher port.EventPublisher
}

// NewRecomputeLoanApplicationUseCase wires dependencies.
func NewRecomputeLoanApplicationUseCase(
	appRepo port.LoanApplicationRepository,
	clients port.ClientRepository,
	rates model.RateSource,
	publisher port.EventPublisher,
) *RecomputeLoanApplicationUseCase {
	return &RecomputeLoanApplicationUseCase{appRepo: appRepo, clients: clients, rates: rates, publisher: publisher}
}

// Execute loads, recomputes, and saves the application. A concurrent update
// surfaces as model.ErrOptimisticLock.
func (uc *RecomputeLoanApplicationUseCase) Execute(
	ctx context.Context,
	req dto.RecomputeApplicationRequest,
) (dto.LoanApplicationResponse, error) {
	now := time.Now().UTC()

	// 1. Load the application.
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

	// 2. Merge the new figures over the stored ones.
	lt := app.Terms()
	if req.Principal.Valid {
		lt.Principal = req.Principal.Decimal
	}
	if req.DownPaymentPercent.Valid {
		lt.DownPaymentPercent = req.DownPaymentPercent.Decimal
	}
	if req.TermYears != nil {
		lt.TermYears = *req.TermYears
	}

	// 3. Recompute with the stored tier.
	next, err := app.Recompute(lt, uc.rates, now)
	if err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("recompute application: %w", err)
	}

	// 4. Persist.
	if err := uc.appRepo.Save(ctx, next); err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("save application: %w", err)
	}

	// 5. Publish domain events.
	if err := uc.publisher.Publish(ctx, next.DomainEvents()...); err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return toApplicationResponse(next, client), nil
}
