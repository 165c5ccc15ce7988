package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/optic/loan-origination/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	TypeLoanApplicationApproved   = "loan_application.approved"
	TypeLoanApplicationRejected   = "loan_application.rejected"
	TypeLoanApplicationRecomputed = "loan_application.recomputed"
	TypeClientRegistered          = "client.registered"

	aggregateLoanApplication = "LoanApplication"
	aggregateClient          = "Client"
)

// ---------------------------------------------------------------------------
// Loan Application Events
// ---------------------------------------------------------------------------

// LoanApplicationApproved is raised when an application passes risk
// validation and its figures have been computed.
type LoanApplicationApproved struct {
	events.BaseEvent
	ClientID           string          `json:"client_id"`
	RiskTier           int             `json:"risk_tier"`
	AnnualRate         decimal.Decimal `json:"annual_rate"`
	FinancedAmount     decimal.Decimal `json:"financed_amount"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	TermMonths         int             `json:"term_months"`
}

func NewLoanApplicationApproved(
	applicationID, clientID string,
	riskTier int,
	annualRate, financed, installment decimal.Decimal,
	termMonths int,
	now time.Time,
) LoanApplicationApproved {
	return LoanApplicationApproved{
		BaseEvent:          events.NewBaseEvent(TypeLoanApplicationApproved, applicationID, aggregateLoanApplication, now),
		ClientID:           clientID,
		RiskTier:           riskTier,
		AnnualRate:         annualRate,
		FinancedAmount:     financed,
		MonthlyInstallment: installment,
		TermMonths:         termMonths,
	}
}

// LoanApplicationRejected is raised when risk validation refuses an
// application, including when the validation service was unreachable.
type LoanApplicationRejected struct {
	events.BaseEvent
	ClientID string `json:"client_id"`
	RiskTier int    `json:"risk_tier"`
	Reason   string `json:"reason"`
}

func NewLoanApplicationRejected(applicationID, clientID string, riskTier int, reason string, now time.Time) LoanApplicationRejected {
	return LoanApplicationRejected{
		BaseEvent: events.NewBaseEvent(TypeLoanApplicationRejected, applicationID, aggregateLoanApplication, now),
		ClientID:  clientID,
		RiskTier:  riskTier,
		Reason:    reason,
	}
}

// LoanApplicationRecomputed is raised when a decided application is rescaled
// with new request figures.
type LoanApplicationRecomputed struct {
	events.BaseEvent
	ClientID           string          `json:"client_id"`
	Status             string          `json:"status"`
	Principal          decimal.Decimal `json:"principal"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	TermMonths         int             `json:"term_months"`
	Version            int             `json:"version"`
}

func NewLoanApplicationRecomputed(
	applicationID, clientID, status string,
	principal, installment decimal.Decimal,
	termMonths, version int,
	now time.Time,
) LoanApplicationRecomputed {
	return LoanApplicationRecomputed{
		BaseEvent:          events.NewBaseEvent(TypeLoanApplicationRecomputed, applicationID, aggregateLoanApplication, now),
		ClientID:           clientID,
		Status:             status,
		Principal:          principal,
		MonthlyInstallment: installment,
		TermMonths:         termMonths,
		Version:            version,
	}
}

// ---------------------------------------------------------------------------
// Client Events
// ---------------------------------------------------------------------------

// ClientRegistered is raised the first time a document is registered.
type ClientRegistered struct {
	events.BaseEvent
	Document string `json:"document"`
	FullName string `json:"full_name"`
}

func NewClientRegistered(clientID, document, fullName string, now time.Time) ClientRegistered {
	return ClientRegistered{
		BaseEvent: events.NewBaseEvent(TypeClientRegistered, clientID, aggregateClient, now),
		Document:  document,
		FullName:  fullName,
	}
}
