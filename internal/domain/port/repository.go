package port

import (
	"context"
	"time"

	"github.com/optic/loan-origination/internal/domain/event"
	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// LoanApplicationRepository persists and retrieves loan applications.
// Save inserts new applications and updates existing ones only when the
// stored version is the one the aggregate was loaded at; otherwise it
// returns model.ErrOptimisticLock.
type LoanApplicationRepository interface {
	Save(ctx context.Context, app model.LoanApplication) error
	FindByID(ctx context.Context, id string) (model.LoanApplication, error)
	Delete(ctx context.Context, id string) error
	// Search matches query case-insensitively against the client's name or
	// document, newest first. An empty query lists everything.
	Search(ctx context.Context, query string) ([]model.LoanApplication, error)
}

// ClientRepository persists and retrieves clients.
type ClientRepository interface {
	Save(ctx context.Context, c model.Client) error
	FindByID(ctx context.Context, id string) (model.Client, error)
	FindByDocument(ctx context.Context, document string) (model.Client, error)
	// FindDocumentByID returns only the identity document, which is all the
	// risk lookup needs.
	FindDocumentByID(ctx context.Context, id string) (string, error)
	Search(ctx context.Context, query string) ([]model.Client, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// UserRepository persists and retrieves API users.
type UserRepository interface {
	Save(ctx context.Context, u model.User) error
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ---------------------------------------------------------------------------
// Reporting
// ---------------------------------------------------------------------------

// MonthlyCount is the number of applications created in one month.
type MonthlyCount struct {
	Month string // YYYY-MM
	Total int64
}

// MonthlyOutcome splits one month's applications by decision.
type MonthlyOutcome struct {
	Month    string // YYYY-MM
	Approved int64
	Rejected int64
}

// DashboardStats is the aggregate view shown on the dashboard.
type DashboardStats struct {
	TotalClients      int64
	TotalApplications int64
	Approved          int64
	Rejected          int64
	PerMonth          []MonthlyCount
	OutcomesPerMonth  []MonthlyOutcome
}

// DashboardReader computes dashboard figures for applications created at or
// after since.
type DashboardReader interface {
	Stats(ctx context.Context, since time.Time) (DashboardStats, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// External service ports
// ---------------------------------------------------------------------------

// RiskValidationGateway looks up the risk assessment for a client document.
// Implementations report every failure as an error; callers decide the
// fallback.
type RiskValidationGateway interface {
	Assess(ctx context.Context, document string) (valueobject.RiskAssessment, error)
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(u model.User) (string, error)
}

// RiskCache forgets remembered risk answers for a document.
type RiskCache interface {
	Invalidate(ctx context.Context, document string) error
}

// DecisionRecorder records decision outcomes for monitoring.
type DecisionRecorder interface {
	RecordDecision(ctx context.Context, operation string, d model.Decision)
}
