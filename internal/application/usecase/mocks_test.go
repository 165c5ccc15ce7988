package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/optic/loan-origination/internal/domain/event"
	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/valueobject"
)

// --- Mock implementations ---

type mockLoanApplicationRepository struct {
	saveFunc     func(ctx context.Context, app model.LoanApplication) error
	findByIDFunc func(ctx context.Context, id string) (model.LoanApplication, error)
	deleteFunc   func(ctx context.Context, id string) error
	searchFunc   func(ctx context.Context, query string) ([]model.LoanApplication, error)
	savedApps    []model.LoanApplication
	deletedIDs   []string
}

func (m *mockLoanApplicationRepository) Save(ctx context.Context, app model.LoanApplication) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, app)
	}
	m.savedApps = append(m.savedApps, app)
	return nil
}

func (m *mockLoanApplicationRepository) FindByID(ctx context.Context, id string) (model.LoanApplication, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.LoanApplication{}, model.ErrApplicationNotFound
}

func (m *mockLoanApplicationRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func (m *mockLoanApplicationRepository) Search(ctx context.Context, query string) ([]model.LoanApplication, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query)
	}
	return nil, nil
}

// mockClientRepository keeps clients in memory.
type mockClientRepository struct {
	clients  map[string]model.Client
	saveFunc func(ctx context.Context, c model.Client) error
	findErr  error
	saved    []model.Client
	deleted  []string
}

func newMockClientRepository(clients ...model.Client) *mockClientRepository {
	m := &mockClientRepository{clients: make(map[string]model.Client)}
	for _, c := range clients {
		m.clients[c.ID()] = c
	}
	return m
}

func (m *mockClientRepository) Save(ctx context.Context, c model.Client) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, c)
	}
	m.saved = append(m.saved, c)
	m.clients[c.ID()] = c
	return nil
}

func (m *mockClientRepository) FindByID(_ context.Context, id string) (model.Client, error) {
	if m.findErr != nil {
		return model.Client{}, m.findErr
	}
	c, ok := m.clients[id]
	if !ok {
		return model.Client{}, model.ErrClientNotFound
	}
	return c, nil
}

func (m *mockClientRepository) FindByDocument(_ context.Context, document string) (model.Client, error) {
	if m.findErr != nil {
		return model.Client{}, m.findErr
	}
	for _, c := range m.clients {
		if c.Document() == document {
			return c, nil
		}
	}
	return model.Client{}, model.ErrClientNotFound
}

func (m *mockClientRepository) FindDocumentByID(ctx context.Context, id string) (string, error) {
	c, err := m.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return c.Document(), nil
}

func (m *mockClientRepository) Search(_ context.Context, query string) ([]model.Client, error) {
	var out []model.Client
	q := strings.ToLower(query)
	for _, c := range m.clients {
		if strings.Contains(strings.ToLower(c.FullName()), q) || strings.Contains(strings.ToLower(c.Document()), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockClientRepository) Delete(_ context.Context, id string) error {
	if _, ok := m.clients[id]; !ok {
		return model.ErrClientNotFound
	}
	delete(m.clients, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockClientRepository) Count(context.Context) (int64, error) {
	return int64(len(m.clients)), nil
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

// mockRiskGateway counts every call.
type mockRiskGateway struct {
	assessFunc func(ctx context.Context, document string) (valueobject.RiskAssessment, error)
	calls      atomic.Int32
}

func (m *mockRiskGateway) Assess(ctx context.Context, document string) (valueobject.RiskAssessment, error) {
	m.calls.Add(1)
	if m.assessFunc != nil {
		return m.assessFunc(ctx, document)
	}
	return valueobject.NewRiskAssessment(document, valueobject.RiskTierLow, valueobject.VerdictApproved), nil
}

func gatewayReturning(tier valueobject.RiskTier, verdict string) *mockRiskGateway {
	return &mockRiskGateway{
		assessFunc: func(_ context.Context, document string) (valueobject.RiskAssessment, error) {
			return valueobject.NewRiskAssessment(document, tier, verdict), nil
		},
	}
}

func failingGateway() *mockRiskGateway {
	return &mockRiskGateway{
		assessFunc: func(context.Context, string) (valueobject.RiskAssessment, error) {
			return valueobject.RiskAssessment{}, errors.New("connection refused")
		},
	}
}

type mockDecisionRecorder struct {
	operations []string
	decisions  []model.Decision
}

func (m *mockDecisionRecorder) RecordDecision(_ context.Context, operation string, d model.Decision) {
	m.operations = append(m.operations, operation)
	m.decisions = append(m.decisions, d)
}

type mockUserRepository struct {
	users   map[string]model.User
	saveErr error
}

func newMockUserRepository(users ...model.User) *mockUserRepository {
	m := &mockUserRepository{users: make(map[string]model.User)}
	for _, u := range users {
		m.users[u.Email()] = u
	}
	return m
}

func (m *mockUserRepository) Save(_ context.Context, u model.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.users[u.Email()] = u
	return nil
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := m.users[email]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if u.Username() == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := m.users[email]
	return ok, nil
}

// plainHasher stores passwords with a prefix so tests can read them back.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type mockTokenIssuer struct {
	issued []string
}

func (m *mockTokenIssuer) Issue(u model.User) (string, error) {
	m.issued = append(m.issued, u.ID())
	return "token-for-" + u.Username(), nil
}
