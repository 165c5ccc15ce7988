package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optic/loan-origination/internal/application/dto"
	"github.com/optic/loan-origination/internal/application/usecase"
	"github.com/optic/loan-origination/internal/domain/event"
	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/service"
	"github.com/optic/loan-origination/internal/domain/valueobject"
	"github.com/optic/loan-origination/pkg/testutil"
)

func TestCreateLoanApplication_Execute(t *testing.T) {
	t.Run("approves low risk client with reference figures", func(t *testing.T) {
		client := testClient(t)
		appRepo := &mockLoanApplicationRepository{}
		publisher := &mockEventPublisher{}
		recorder := &mockDecisionRecorder{}
		gateway := gatewayReturning(valueobject.RiskTierLow, "APPROVED")

		uc := usecase.NewCreateLoanApplicationUseCase(appRepo, newMockClientRepository(client), gateway, newEngine(), publisher, recorder, nil)
		resp, err := uc.Execute(context.Background(), loanRequest(client.ID()))

		require.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "APPROVED", resp.Status)
		assert.Equal(t, 1, resp.StatusCode)
		testutil.AssertDecimalEqual(t, "20000", resp.DownPayment)
		testutil.AssertDecimalEqual(t, "80000", resp.FinancedAmount)
		testutil.AssertDecimalEqual(t, "644.47", resp.MonthlyInstallment)
		testutil.AssertDecimalEqual(t, "7.76", resp.EffectiveAnnualRate)
		testutil.AssertDecimalEqual(t, "7.5", resp.AnnualRate)
		assert.Equal(t, 240, resp.TermMonths)
		require.NotNil(t, resp.Client)
		assert.Equal(t, client.Document(), resp.Client.Document)

		require.Len(t, appRepo.savedApps, 1)
		require.Len(t, publisher.publishedEvents, 1)
		assert.Equal(t, event.TypeLoanApplicationApproved, publisher.publishedEvents[0].EventType())
		assert.Equal(t, []string{"create"}, recorder.operations)
		assert.EqualValues(t, 1, gateway.calls.Load())
	})

	t.Run("records rejection with zeroed figures", func(t *testing.T) {
		client := testClient(t)
		appRepo := &mockLoanApplicationRepository{}
		publisher := &mockEventPublisher{}

		uc := usecase.NewCreateLoanApplicationUseCase(appRepo, newMockClientRepository(client),
			gatewayReturning(valueobject.RiskTierLow, "RECHAZADO"), newEngine(), publisher, nil, nil)
		resp, err := uc.Execute(context.Background(), loanRequest(client.ID()))

		require.NoError(t, err)
		assert.Equal(t, "REJECTED", resp.Status)
		assert.Equal(t, 0, resp.StatusCode)
		assert.Equal(t, model.RejectionReason, resp.RejectionReason)
		for _, v := range []decimal.Decimal{resp.DownPayment, resp.FinancedAmount, resp.MonthlyInstallment, resp.EffectiveAnnualRate, resp.AnnualRate} {
			assert.True(t, v.IsZero())
		}
		require.Len(t, appRepo.savedApps, 1)
		assert.Equal(t, event.TypeLoanApplicationRejected, publisher.publishedEvents[0].EventType())
	})

	t.Run("gateway failure falls back to rejection", func(t *testing.T) {
		client := testClient(t)
		appRepo := &mockLoanApplicationRepository{}

		uc := usecase.NewCreateLoanApplicationUseCase(appRepo, newMockClientRepository(client),
			failingGateway(), newEngine(), &mockEventPublisher{}, nil, nil)
		resp, err := uc.Execute(context.Background(), loanRequest(client.ID()))

		require.NoError(t, err)
		assert.Equal(t, "REJECTED", resp.Status)
		assert.Equal(t, valueobject.RiskTierHigh.Level(), resp.RiskTier)
		require.Len(t, appRepo.savedApps, 1)
	})

	t.Run("unknown client is not found", func(t *testing.T) {
		gateway := &mockRiskGateway{}
		uc := usecase.NewCreateLoanApplicationUseCase(&mockLoanApplicationRepository{}, newMockClientRepository(),
			gateway, newEngine(), &mockEventPublisher{}, nil, nil)

		_, err := uc.Execute(context.Background(), loanRequest(testutil.TestClientID))
		assert.ErrorIs(t, err, model.ErrClientNotFound)
		assert.Zero(t, gateway.calls.Load())
	})

	t.Run("missing field is rejected before the gateway", func(t *testing.T) {
		gateway := &mockRiskGateway{}
		uc := usecase.NewCreateLoanApplicationUseCase(&mockLoanApplicationRepository{}, newMockClientRepository(),
			gateway, newEngine(), &mockEventPublisher{}, nil, nil)

		req := loanRequest(testutil.TestClientID)
		req.TermYears = nil
		_, err := uc.Execute(context.Background(), req)

		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "term_years", ve.Field)
		assert.Zero(t, gateway.calls.Load())
	})

	t.Run("fails when repository save fails", func(t *testing.T) {
		client := testClient(t)
		appRepo := &mockLoanApplicationRepository{
			saveFunc: func(context.Context, model.LoanApplication) error {
				return fmt.Errorf("database unavailable")
			},
		}
		uc := usecase.NewCreateLoanApplicationUseCase(appRepo, newMockClientRepository(client),
			&mockRiskGateway{}, newEngine(), &mockEventPublisher{}, nil, nil)

		_, err := uc.Execute(context.Background(), loanRequest(client.ID()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "save application")
	})

	t.Run("fails when event publishing fails", func(t *testing.T) {
		client := testClient(t)
		publisher := &mockEventPublisher{
			publishFunc: func(context.Context, ...event.DomainEvent) error {
				return fmt.Errorf("kafka unavailable")
			},
		}
		uc := usecase.NewCreateLoanApplicationUseCase(&mockLoanApplicationRepository{}, newMockClientRepository(client),
			&mockRiskGateway{}, newEngine(), publisher, nil, nil)

		_, err := uc.Execute(context.Background(), loanRequest(client.ID()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "publish events")
	})
}

func TestSimulateLoan_MatchesCreateWithoutSaving(t *testing.T) {
	client := testClient(t)
	clients := newMockClientRepository(client)
	appRepo := &mockLoanApplicationRepository{}
	publisher := &mockEventPublisher{}
	recorder := &mockDecisionRecorder{}
	gateway := gatewayReturning(valueobject.RiskTierMedium, "approved")

	simulate := usecase.NewSimulateLoanUseCase(clients, gateway, newEngine(), recorder, nil)
	create := usecase.NewCreateLoanApplicationUseCase(appRepo, clients, gateway, newEngine(), publisher, recorder, nil)

	sim, err := simulate.Execute(context.Background(), loanRequest(client.ID()))
	require.NoError(t, err)
	assert.Empty(t, appRepo.savedApps)
	assert.Empty(t, publisher.publishedEvents)

	created, err := create.Execute(context.Background(), loanRequest(client.ID()))
	require.NoError(t, err)

	assert.Equal(t, sim.Status, created.Status)
	assert.True(t, sim.MonthlyInstallment.Equal(created.MonthlyInstallment))
	assert.True(t, sim.EffectiveAnnualRate.Equal(created.EffectiveAnnualRate))
	assert.True(t, sim.FinancedAmount.Equal(created.FinancedAmount))
	assert.Len(t, appRepo.savedApps, 1)
	assert.Equal(t, []string{"simulate", "create"}, recorder.operations)
}

func approvedApplication(t *testing.T, clientID string) model.LoanApplication {
	t.Helper()
	lt := model.LoanTerms{
		Principal:          decimal.NewFromInt(100000),
		DownPaymentPercent: decimal.NewFromInt(20),
		TermYears:          20,
	}
	d, err := newEngine().Decide(lt, valueobject.NewRiskAssessment(testutil.TestDocument, valueobject.RiskTierLow, "APPROVED"))
	require.NoError(t, err)
	app, err := model.NewLoanApplication(clientID, lt, d, testutil.TestNow)
	require.NoError(t, err)
	return app.ClearEvents()
}

func TestRecomputeLoanApplication_Execute(t *testing.T) {
	t.Run("reuses stored tier and never calls the gateway", func(t *testing.T) {
		client := testClient(t)
		clients := newMockClientRepository(client)
		appRepo := &mockLoanApplicationRepository{}
		publisher := &mockEventPublisher{}
		gateway := gatewayReturning(valueobject.RiskTierLow, "APPROVED")

		create := usecase.NewCreateLoanApplicationUseCase(appRepo, clients, gateway, newEngine(), publisher, nil, nil)
		created, err := create.Execute(context.Background(), loanRequest(client.ID()))
		require.NoError(t, err)
		require.EqualValues(t, 1, gateway.calls.Load())

		stored := appRepo.savedApps[0].ClearEvents()
		appRepo.findByIDFunc = func(context.Context, string) (model.LoanApplication, error) { return stored, nil }
		publisher.publishedEvents = nil

		uc := usecase.NewRecomputeLoanApplicationUseCase(appRepo, clients, service.NewDefaultRiskRateTable(), publisher)
		resp, err := uc.Execute(context.Background(), dto.RecomputeApplicationRequest{
			ApplicationID: created.ID,
			Principal:     decimal.NewNullDecimal(decimal.NewFromInt(150000)),
		})

		require.NoError(t, err)
		assert.EqualValues(t, 1, gateway.calls.Load())
		assert.Equal(t, "APPROVED", resp.Status)
		testutil.AssertDecimalEqual(t, "7.5", resp.AnnualRate)
		testutil.AssertDecimalEqual(t, "30000", resp.DownPayment)
		testutil.AssertDecimalEqual(t, "120000", resp.FinancedAmount)
		assert.Equal(t, 2, resp.Version)
		require.NotNil(t, resp.Client)
		assert.Equal(t, created.Client, resp.Client)

		require.Len(t, appRepo.savedApps, 2)
		saved := appRepo.savedApps[1].Calculation()
		testutil.AssertDecimalEqual(t, "150000", saved.DownPayment.Add(saved.FinancedAmount))
		require.Len(t, publisher.publishedEvents, 1)
		assert.Equal(t, event.TypeLoanApplicationRecomputed, publisher.publishedEvents[0].EventType())
	})

	t.Run("missing application is not found", func(t *testing.T) {
		uc := usecase.NewRecomputeLoanApplicationUseCase(&mockLoanApplicationRepository{}, newMockClientRepository(), service.NewDefaultRiskRateTable(), &mockEventPublisher{})
		_, err := uc.Execute(context.Background(), dto.RecomputeApplicationRequest{ApplicationID: unknownID})
		assert.ErrorIs(t, err, model.ErrApplicationNotFound)
	})

	t.Run("optimistic lock conflict surfaces", func(t *testing.T) {
		client := testClient(t)
		stored := approvedApplication(t, client.ID())
		appRepo := &mockLoanApplicationRepository{
			findByIDFunc: func(context.Context, string) (model.LoanApplication, error) { return stored, nil },
			saveFunc:     func(context.Context, model.LoanApplication) error { return model.ErrOptimisticLock },
		}
		uc := usecase.NewRecomputeLoanApplicationUseCase(appRepo, newMockClientRepository(client), service.NewDefaultRiskRateTable(), &mockEventPublisher{})

		_, err := uc.Execute(context.Background(), dto.RecomputeApplicationRequest{ApplicationID: stored.ID(), TermYears: intPtr(10)})
		assert.True(t, errors.Is(err, model.ErrOptimisticLock))
	})

	t.Run("invalid figures are rejected", func(t *testing.T) {
		client := testClient(t)
		stored := approvedApplication(t, client.ID())
		appRepo := &mockLoanApplicationRepository{
			findByIDFunc: func(context.Context, string) (model.LoanApplication, error) { return stored, nil },
		}
		uc := usecase.NewRecomputeLoanApplicationUseCase(appRepo, newMockClientRepository(client), service.NewDefaultRiskRateTable(), &mockEventPublisher{})

		_, err := uc.Execute(context.Background(), dto.RecomputeApplicationRequest{ApplicationID: stored.ID(), TermYears: intPtr(0)})
		assert.True(t, model.IsValidation(err))
		assert.Empty(t, appRepo.savedApps)
	})
}

func TestDeleteLoanApplication_Execute(t *testing.T) {
	appRepo := &mockLoanApplicationRepository{}
	uc := usecase.NewDeleteLoanApplicationUseCase(appRepo)

	require.NoError(t, uc.Execute(context.Background(), dto.DeleteApplicationRequest{ApplicationID: testutil.TestApplicationID}))
	assert.Equal(t, []string{testutil.TestApplicationID}, appRepo.deletedIDs)

	appRepo.deleteFunc = func(context.Context, string) error { return model.ErrApplicationNotFound }
	err := uc.Execute(context.Background(), dto.DeleteApplicationRequest{ApplicationID: unknownID})
	assert.ErrorIs(t, err, model.ErrApplicationNotFound)
}

func TestSearchApplications_Execute(t *testing.T) {
	client := testClient(t)
	first := approvedApplication(t, client.ID())
	second := approvedApplication(t, client.ID())

	var gotQuery string
	appRepo := &mockLoanApplicationRepository{
		searchFunc: func(_ context.Context, q string) ([]model.LoanApplication, error) {
			gotQuery = q
			return []model.LoanApplication{first, second}, nil
		},
	}
	uc := usecase.NewSearchApplicationsUseCase(appRepo, newMockClientRepository(client))

	resp, err := uc.Execute(context.Background(), dto.SearchRequest{Query: "  torres "})
	require.NoError(t, err)
	assert.Equal(t, "torres", gotQuery)
	require.Len(t, resp, 2)
	assert.Equal(t, "Ana Torres", resp[1].Client.FullName)
}

func TestGetApplication_Execute(t *testing.T) {
	client := testClient(t)
	app := approvedApplication(t, client.ID())
	appRepo := &mockLoanApplicationRepository{
		findByIDFunc: func(_ context.Context, id string) (model.LoanApplication, error) {
			if id == app.ID() {
				return app, nil
			}
			return model.LoanApplication{}, model.ErrApplicationNotFound
		},
	}
	uc := usecase.NewGetApplicationUseCase(appRepo, newMockClientRepository(client))

	resp, err := uc.Execute(context.Background(), dto.GetApplicationRequest{ApplicationID: app.ID()})
	require.NoError(t, err)
	assert.Equal(t, app.ID(), resp.ID)

	_, err = uc.Execute(context.Background(), dto.GetApplicationRequest{ApplicationID: unknownID})
	assert.ErrorIs(t, err, model.ErrApplicationNotFound)
}

func TestGetSchedule_Execute(t *testing.T) {
	app := approvedApplication(t, testutil.TestClientID)
	appRepo := &mockLoanApplicationRepository{
		findByIDFunc: func(context.Context, string) (model.LoanApplication, error) { return app, nil },
	}
	uc := usecase.NewGetScheduleUseCase(appRepo)

	resp, err := uc.Execute(context.Background(), dto.GetApplicationRequest{ApplicationID: app.ID()})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 240)
	assert.True(t, resp.Entries[239].RemainingBalance.IsZero())
}
