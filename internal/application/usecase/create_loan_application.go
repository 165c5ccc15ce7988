package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/optic/loan-origination/internal/application/dto"
	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/port"
	"github.com/optic/loan-origination/internal/domain/service"
)

// CreateLoanApplicationUseCase validates risk, decides, and records a loan
// application.
type CreateLoanApplicationUseCase struct {
	resolver  riskResolver
	appRepo   port.LoanApplicationRepository
	clients   port.ClientRepository
	publisher port.EventPublisher
}

// NewCreateLoanApplicationUseCase wires dependencies.
func NewCreateLoanApplicationUseCase(
	appRepo port.LoanApplicationRepository,
	clients port.ClientRepository,
	gateway port.RiskValidationGateway,
	engine *service.LoanDecisionEngine,
	publisher port.EventPublisher,
	recorder port.DecisionRecorder,
	logger *slog.Logger,
) *CreateLoanApplicationUseCase {
	return &CreateLoanApplicationUseCase{
		resolver:  newRiskResolver(clients, gateway, engine, recorder, logger),
		appRepo:   appRepo,
		clients:   clients,
		publisher: publisher,
	}
}

// Execute decides and persists one application. Rejections are recorded too.
func (uc *CreateLoanApplicationUseCase) Execute(
	ctx context.Context,
	req dto.CreateApplicationRequest,
) (dto.LoanApplicationResponse, error) {
	now := time.Now().UTC()

	// 1. Validate the request before touching any collaborator.
	lt, err := toLoanTerms(req)
	if err != nil {
		return dto.LoanApplicationResponse{}, err
	}

	// 2. Resolve risk and decide.
	d, err := uc.resolver.decide(ctx, "create", req.ClientID, lt)
	if err != nil {
		return dto.LoanApplicationResponse{}, err
	}

	// 3. Build the aggregate.
	app, err := model.NewLoanApplication(req.ClientID, lt, d, now)
	if err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("create application: %w", err)
	}

	// 4. Persist.
	if err := uc.appRepo.Save(ctx, app); err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("save application: %w", err)
	}

	// 5. Publish domain events.
	if err := uc.publisher.Publish(ctx, app.DomainEvents()...); err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("publish events: %w", err)
	}

	client, err := uc.clients.FindByID(ctx, req.ClientID)
	if err != nil {
		return dto.LoanApplicationResponse{}, fmt.Errorf("find client: %w", err)
	}
	return toApplicationResponse(app, &client), nil
}
