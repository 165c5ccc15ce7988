package service

import (
	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// LoanDecisionEngine – approval decision plus figures
// ---------------------------------------------------------------------------

// LoanDecisionEngine turns a validated request and a risk assessment into a
// decision. It never talks to the validation service itself; callers pass
// the assessment in, already collapsed to a fallback on failure.
type LoanDecisionEngine struct {
	rates *RiskRateTable
}

// NewLoanDecisionEngine returns an engine pricing with rates.
func NewLoanDecisionEngine(rates *RiskRateTable) *LoanDecisionEngine {
	return &LoanDecisionEngine{rates: rates}
}

// Rates exposes the table so recomputation prices with the same rates.
func (e *LoanDecisionEngine) Rates() *RiskRateTable { return e.rates }

// Decide evaluates one request.
//
//	verdict not approved -> REJECTED, every figure zero, tier still recorded
//	verdict approved     -> APPROVED, rate from the tier, full calculation
func (e *LoanDecisionEngine) Decide(terms model.LoanTerms, assessment valueobject.RiskAssessment) (model.Decision, error) {
	if err := terms.Validate(); err != nil {
		return model.Decision{}, err
	}

	if !assessment.Approved() {
		return model.Decision{
			Status:      valueobject.ApplicationStatusRejected,
			Tier:        assessment.Tier(),
			Calculation: model.ZeroCalculation(),
			Reason:      model.RejectionReason,
			Fallback:    assessment.IsFallback(),
		}, nil
	}

	calc, err := model.CalculateAll(
		terms.Principal, terms.DownPaymentPercent, terms.TermYears,
		e.rates.RateFor(assessment.Tier()),
	)
	if err != nil {
		return model.Decision{}, err
	}

	return model.Decision{
		Status:      valueobject.ApplicationStatusApproved,
		Tier:        assessment.Tier(),
		Calculation: calc,
	}, nil
}
