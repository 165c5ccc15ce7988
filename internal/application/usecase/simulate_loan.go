package usecase

import (
	"context"
	"log/slog"

	"github.com/optic/loan-origination/internal/application/dto"
	"github.com/optic/loan-origination/internal/domain/port"
	"github.com/optic/loan-origination/internal/domain/service"
)

// SimulateLoanUseCase runs the full decision for a request without
// recording anything.
type SimulateLoanUseCase struct {
	resolver riskResolver
}

// NewSimulateLoanUseCase wires dependencies.
func NewSimulateLoanUseCase(
	clients port.ClientRepository,
	gateway port.RiskValidationGateway,
	engine *service.LoanDecisionEngine,
	recorder port.DecisionRecorder,
	logger *slog.Logger,
) *SimulateLoanUseCase {
	return &SimulateLoanUseCase{resolver: newRiskResolver(clients, gateway, engine, recorder, logger)}
}

// Execute returns the decision and figures create would record.
func (uc *SimulateLoanUseCase) Execute(ctx context.Context, req dto.SimulateRequest) (dto.SimulationResponse, error) {
	lt, err := toLoanTerms(req)
	if err != nil {
		return dto.SimulationResponse{}, err
	}

	d, err := uc.resolver.decide(ctx, "simulate", req.ClientID, lt)
	if err != nil {
		return dto.SimulationResponse{}, err
	}
	return toSimulationResponse(req.ClientID, lt, d), nil
}
