package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/optic/loan-origination/internal/domain/event"
	"github.com/optic/loan-origination/internal/domain/valueobject"
)

// RejectionReason is recorded on every application refused by risk validation.
const RejectionReason = "Application rejected by external risk validation."

// MaxTermYears bounds the loan term. The exact annuity power grows with the
// number of months, so the term must stay small.
const MaxTermYears = 50

// LoanTerms are the caller-supplied figures of a loan request.
type LoanTerms struct {
	Principal          decimal.Decimal
	DownPaymentPercent decimal.Decimal
	TermYears          int
}

// Validate checks principal > 0, 0 <= percent <= 100 and 1 <= term <= MaxTermYears.
func (t LoanTerms) Validate() error {
	if !t.Principal.IsPositive() {
		return invalid("principal", "must be greater than zero")
	}
	if t.DownPaymentPercent.IsNegative() || t.DownPaymentPercent.GreaterThan(hundred) {
		return invalid("down_payment_percent", "must be between 0 and 100")
	}
	if t.TermYears < 1 || t.TermYears > MaxTermYears {
		return invalid("term_years", fmt.Sprintf("must be between 1 and %d years", MaxTermYears))
	}
	return nil
}

// Decision is the outcome of running a request through risk validation and,
// when approved, the calculator.
type Decision struct {
	Status      valueobject.ApplicationStatus
	Tier        valueobject.RiskTier
	Calculation CalculationResult
	Reason      string
	Fallback    bool
}

// Approved reports whether the decision approved the request.
func (d Decision) Approved() bool {
	return d.Status.Equal(valueobject.ApplicationStatusApproved)
}

// RateSource resolves the annual rate for a risk tier.
type RateSource interface {
	RateFor(tier valueobject.RiskTier) decimal.Decimal
}

// ---------------------------------------------------------------------------
// LoanApplication aggregate root
// ---------------------------------------------------------------------------

// LoanApplication is an immutable aggregate. Every mutation returns a new copy.
type LoanApplication struct {
	id           string
	clientID     string
	terms        LoanTerms
	riskTier     valueobject.RiskTier
	calc         CalculationResult
	status       valueobject.ApplicationStatus
	reason       string
	version      int
	createdAt    time.Time
	updatedAt    time.Time
	domainEvents []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoanApplication records a decided request. It emits
// LoanApplicationApproved or LoanApplicationRejected.
func NewLoanApplication(clientID string, terms LoanTerms, d Decision, now time.Time) (LoanApplication, error) {
	if clientID == "" {
		return LoanApplication{}, invalid("client_id", "is required")
	}
	if err := terms.Validate(); err != nil {
		return LoanApplication{}, err
	}
	if !d.Status.IsDecided() {
		return LoanApplication{}, valueobject.ErrInvalidStatusTransition
	}

	app := LoanApplication{
		id:        uuid.New().String(),
		clientID:  clientID,
		terms:     terms,
		riskTier:  d.Tier,
		calc:      d.Calculation,
		status:    d.Status,
		reason:    d.Reason,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}

	if d.Approved() {
		app.domainEvents = append(app.domainEvents, event.NewLoanApplicationApproved(
			app.id, clientID, d.Tier.Level(),
			d.Calculation.AnnualRate, d.Calculation.FinancedAmount, d.Calculation.MonthlyInstallment,
			d.Calculation.TermMonths, now,
		))
	} else {
		app.domainEvents = append(app.domainEvents, event.NewLoanApplicationRejected(
			app.id, clientID, d.Tier.Level(), d.Reason, now,
		))
	}
	return app, nil
}

// ReconstructLoanApplication rebuilds an aggregate from persistence without side-effects.
func ReconstructLoanApplication(
	id, clientID string,
	terms LoanTerms,
	riskTier valueobject.RiskTier,
	calc CalculationResult,
	status valueobject.ApplicationStatus,
	reason string,
	version int,
	createdAt, updatedAt time.Time,
) LoanApplication {
	return LoanApplication{
		id:        id,
		clientID:  clientID,
		terms:     terms,
		riskTier:  riskTier,
		calc:      calc,
		status:    status,
		reason:    reason,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions (each returns a new copy)
// ---------------------------------------------------------------------------

// Recompute rescales a decided application with new terms. The rate comes
// from the tier stored on the application, never from a fresh risk lookup,
// and the status never changes. A rejected application takes the new terms
// but keeps its zeroed figures.
func (a LoanApplication) Recompute(terms LoanTerms, rates RateSource, now time.Time) (LoanApplication, error) {
	if !a.status.IsDecided() {
		return a, valueobject.ErrInvalidStatusTransition
	}
	if err := terms.Validate(); err != nil {
		return a, err
	}

	calc := ZeroCalculation()
	if a.status.Equal(valueobject.ApplicationStatusApproved) {
		var err error
		calc, err = CalculateAll(terms.Principal, terms.DownPaymentPercent, terms.TermYears, rates.RateFor(a.riskTier))
		if err != nil {
			return a, err
		}
	}

	next := a
	next.terms = terms
	next.calc = calc
	next.version = a.version + 1
	next.updatedAt = now
	next.domainEvents = copyEvents(a.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanApplicationRecomputed(
		a.id, a.clientID, a.status.String(),
		terms.Principal, calc.MonthlyInstallment,
		TermInMonths(terms.TermYears), next.version, now,
	))
	return next, nil
}

// Schedule returns the amortization schedule, starting one month after the
// application was created. Rejected applications have none.
func (a LoanApplication) Schedule() []AmortizationEntry {
	if !a.status.Equal(valueobject.ApplicationStatusApproved) {
		return nil
	}
	return GenerateAmortizationSchedule(a.calc, a.createdAt)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (a LoanApplication) ID() string                            { return a.id }
func (a LoanApplication) ClientID() string                      { return a.clientID }
func (a LoanApplication) Terms() LoanTerms                      { return a.terms }
func (a LoanApplication) RiskTier() valueobject.RiskTier        { return a.riskTier }
func (a LoanApplication) Calculation() CalculationResult        { return a.calc }
func (a LoanApplication) Status() valueobject.ApplicationStatus { return a.status }
func (a LoanApplication) RejectionReason() string               { return a.reason }
func (a LoanApplication) Version() int                          { return a.version }
func (a LoanApplication) CreatedAt() time.Time                  { return a.createdAt }
func (a LoanApplication) UpdatedAt() time.Time                  { return a.updatedAt }
func (a LoanApplication) DomainEvents() []event.DomainEvent     { return a.domainEvents }

// ClearEvents returns a copy with an empty event list (call after publishing).
func (a LoanApplication) ClearEvents() LoanApplication {
	next := a
	next.domainEvents = nil
	return next
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if len(src) == 0 {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}
