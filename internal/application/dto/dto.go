package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// LoanRequest carries the four required figures of a loan request. Absent
// fields decode as invalid NullDecimal or nil and are rejected before any
// decision is made.
type LoanRequest struct {
	ClientID           string              `json:"client_id"`
	Principal          decimal.NullDecimal `json:"principal"`
	DownPaymentPercent decimal.NullDecimal `json:"down_payment_percent"`
	TermYears          *int                `json:"term_years"`
}

// SimulateRequest asks for a decision without persisting anything.
type SimulateRequest = LoanRequest

// CreateApplicationRequest asks for a decision and records it.
type CreateApplicationRequest = LoanRequest

// RecomputeApplicationRequest rescales a decided application. Omitted fields
// keep their stored value.
type RecomputeApplicationRequest struct {
	ApplicationID      string              `json:"-"`
	Principal          decimal.NullDecimal `json:"principal"`
	DownPaymentPercent decimal.NullDecimal `json:"down_payment_percent"`
	TermYears          *int                `json:"term_years"`
}

// GetApplicationRequest identifies a loan application to retrieve.
type GetApplicationRequest struct {
	ApplicationID string `json:"application_id"`
}

// DeleteApplicationRequest identifies a loan application to remove.
type DeleteApplicationRequest struct {
	ApplicationID string `json:"application_id"`
}

// SearchRequest carries a free-text filter. Empty lists everything.
type SearchRequest struct {
	Query string `json:"query"`
}

// ClientRequest carries client profile fields for register and update.
type ClientRequest struct {
	FullName      string              `json:"full_name"`
	Document      string              `json:"document"`
	Email         string              `json:"email"`
	Phone         string              `json:"phone"`
	MonthlyIncome decimal.NullDecimal `json:"monthly_income"`
}

// UpdateClientRequest pairs a client ID with its new profile.
type UpdateClientRequest struct {
	ClientID string `json:"-"`
	ClientRequest
}

// RegisterUserRequest signs up a new API user.
type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest authenticates by email and password.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// ClientResponse is the external representation of a client.
type ClientResponse struct {
	ID            string              `json:"id"`
	FullName      string              `json:"full_name"`
	Document      string              `json:"document"`
	Email         string              `json:"email,omitempty"`
	Phone         string              `json:"phone"`
	MonthlyIncome decimal.NullDecimal `json:"monthly_income"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     *time.Time          `json:"updated_at,omitempty"`
}

// SimulationResponse is the outcome of a simulate call. Money is rounded to
// cents.
type SimulationResponse struct {
	ClientID            string          `json:"client_id"`
	Status              string          `json:"status"`
	StatusCode          int             `json:"status_code"`
	RiskTier            int             `json:"risk_tier"`
	Principal           decimal.Decimal `json:"principal"`
	DownPaymentPercent  decimal.Decimal `json:"down_payment_percent"`
	DownPayment         decimal.Decimal `json:"down_payment"`
	FinancedAmount      decimal.Decimal `json:"financed_amount"`
	TermYears           int             `json:"term_years"`
	TermMonths          int             `json:"term_months"`
	AnnualRate          decimal.Decimal `json:"annual_rate"`
	EffectiveAnnualRate decimal.Decimal `json:"tcea"`
	MonthlyInstallment  decimal.Decimal `json:"monthly_installment"`
	RejectionReason     string          `json:"rejection_reason,omitempty"`
}

// LoanApplicationResponse is the external representation of a loan application.
type LoanApplicationResponse struct {
	ID string `json:"id"`
	SimulationResponse
	Client    *ClientResponse `json:"client,omitempty"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AmortizationEntryResponse represents a single amortization schedule entry.
type AmortizationEntryResponse struct {
	Period           int             `json:"period"`
	DueDate          time.Time       `json:"due_date"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	Total            decimal.Decimal `json:"total"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// ScheduleResponse is the amortization schedule of an approved application.
type ScheduleResponse struct {
	ApplicationID string                      `json:"application_id"`
	Entries       []AmortizationEntryResponse `json:"entries"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token       string   `json:"token"`
	Type        string   `json:"type"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// MonthlyCountResponse is one month of application volume.
type MonthlyCountResponse struct {
	Month string `json:"month"`
	Total int64  `json:"total"`
}

// MonthlyOutcomeResponse is one month of decisions.
type MonthlyOutcomeResponse struct {
	Month    string `json:"month"`
	Approved int64  `json:"approved"`
	Rejected int64  `json:"rejected"`
}

// DashboardResponse aggregates client and application figures.
type DashboardResponse struct {
	TotalClients      int64                    `json:"total_clients"`
	TotalApplications int64                    `json:"total_applications"`
	TotalApproved     int64                    `json:"total_approved"`
	TotalRejected     int64                    `json:"total_rejected"`
	PerMonth          []MonthlyCountResponse   `json:"applications_per_month"`
	OutcomesPerMonth  []MonthlyOutcomeResponse `json:"outcomes_per_month"`
}
