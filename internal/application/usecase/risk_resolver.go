package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/port"
	"github.com/optic/loan-origination/internal/domain/service"
	"github.com/optic/loan-origination/internal/domain/valueobject"
)

// riskResolver runs the shared front half of create and simulate: resolve
// the client's document, ask the validation service, collapse failures to
// the fallback, and decide.
type riskResolver struct {
	clients  port.ClientRepository
	gateway  port.RiskValidationGateway
	engine   *service.LoanDecisionEngine
	recorder port.DecisionRecorder
	logger   *slog.Logger
}

func newRiskResolver(
	clients port.ClientRepository,
	gateway port.RiskValidationGateway,
	engine *service.LoanDecisionEngine,
	recorder port.DecisionRecorder,
	logger *slog.Logger,
) riskResolver {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return riskResolver{clients: clients, gateway: gateway, engine: engine, recorder: recorder, logger: logger}
}

func (r riskResolver) decide(ctx context.Context, operation, clientID string, lt model.LoanTerms) (model.Decision, error) {
	if err := requireID(clientID, model.ErrClientNotFound); err != nil {
		return model.Decision{}, err
	}
	document, err := r.clients.FindDocumentByID(ctx, clientID)
	if err != nil {
		return model.Decision{}, fmt.Errorf("find client document: %w", err)
	}

	result, gwErr := r.gateway.Assess(ctx, document)
	if gwErr != nil {
		r.logger.WarnContext(ctx, "risk validation unavailable, applying fallback",
			"client_id", clientID,
			"error", gwErr,
		)
	}
	assessment := valueobject.AssessmentOrFallback(document, result, gwErr)

	d, err := r.engine.Decide(lt, assessment)
	if err != nil {
		return model.Decision{}, fmt.Errorf("decide: %w", err)
	}
	r.recorder.RecordDecision(ctx, operation, d)
	return d, nil
}

type noopRecorder struct{}

func (noopRecorder) RecordDecision(context.Context, string, model.Decision) {}
