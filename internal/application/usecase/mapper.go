package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/optic/loan-origination/internal/application/dto"
	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/port"
)

// Money is presented at cents, half-to-even.
const displayPlaces = 2

// requireID maps ids that cannot name a row to notFound. Every key is a UUID,
// and the store rejects anything else as malformed input.
func requireID(id string, notFound error) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound
	}
	return nil
}

func toLoanTerms(req dto.LoanRequest) (model.LoanTerms, error) {
	switch {
	case req.ClientID == "":
		return model.LoanTerms{}, &model.ValidationError{Field: "client_id", Reason: "is required"}
	case !req.Principal.Valid:
		return model.LoanTerms{}, &model.ValidationError{Field: "principal", Reason: "is required"}
	case !req.DownPaymentPercent.Valid:
		return model.LoanTerms{}, &model.ValidationError{Field: "down_payment_percent", Reason: "is required"}
	case req.TermYears == nil:
		return model.LoanTerms{}, &model.ValidationError{Field: "term_years", Reason: "is required"}
	}
	lt := model.LoanTerms{
		Principal:          req.Principal.Decimal,
		DownPaymentPercent: req.DownPaymentPercent.Decimal,
		TermYears:          *req.TermYears,
	}
	return lt, lt.Validate()
}

func toSimulationResponse(clientID string, lt model.LoanTerms, d model.Decision) dto.SimulationResponse {
	c := d.Calculation
	return dto.SimulationResponse{
		ClientID:            clientID,
		Status:              d.Status.String(),
		StatusCode:          d.Status.Code(),
		RiskTier:            d.Tier.Level(),
		Principal:           lt.Principal,
		DownPaymentPercent:  lt.DownPaymentPercent,
		DownPayment:         c.DownPayment.RoundBank(displayPlaces),
		FinancedAmount:      c.FinancedAmount.RoundBank(displayPlaces),
		TermYears:           lt.TermYears,
		TermMonths:          model.TermInMonths(lt.TermYears),
		AnnualRate:          c.AnnualRate,
		EffectiveAnnualRate: c.EffectiveAnnualRate.RoundBank(displayPlaces),
		MonthlyInstallment:  c.MonthlyInstallment.RoundBank(displayPlaces),
		RejectionReason:     d.Reason,
	}
}

func toApplicationResponse(app model.LoanApplication, client *model.Client) dto.LoanApplicationResponse {
	d := model.Decision{
		Status:      app.Status(),
		Tier:        app.RiskTier(),
		Calculation: app.Calculation(),
		Reason:      app.RejectionReason(),
	}
	resp := dto.LoanApplicationResponse{
		ID:                 app.ID(),
		SimulationResponse: toSimulationResponse(app.ClientID(), app.Terms(), d),
		Version:            app.Version(),
		CreatedAt:          app.CreatedAt(),
		UpdatedAt:          app.UpdatedAt(),
	}
	if client != nil {
		cr := toClientResponse(*client)
		resp.Client = &cr
	}
	return resp
}

func toClientResponse(c model.Client) dto.ClientResponse {
	p := c.Profile()
	return dto.ClientResponse{
		ID:            c.ID(),
		FullName:      p.FullName,
		Document:      p.Document,
		Email:         p.Email,
		Phone:         p.Phone,
		MonthlyIncome: p.MonthlyIncome,
		CreatedAt:     c.CreatedAt(),
		UpdatedAt:     c.UpdatedAt(),
	}
}

func toClientProfile(req dto.ClientRequest) model.ClientProfile {
	return model.ClientProfile{
		FullName:      req.FullName,
		Document:      req.Document,
		Email:         req.Email,
		Phone:         req.Phone,
		MonthlyIncome: req.MonthlyIncome,
	}
}

// clientLookup loads clients for a batch of applications, once per client.
type clientLookup struct {
	clients port.ClientRepository
	seen    map[string]*model.Client
}

func newClientLookup(clients port.ClientRepository) *clientLookup {
	return &clientLookup{clients: clients, seen: make(map[string]*model.Client)}
}

func (l *clientLookup) get(ctx context.Context, id string) (*model.Client, error) {
	if c, ok := l.seen[id]; ok {
		return c, nil
	}
	c, err := l.clients.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	l.seen[id] = &c
	return &c, nil
}
