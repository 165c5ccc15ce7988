package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optic/loan-origination/internal/application/dto"
	"github.com/optic/loan-origination/internal/application/usecase"
	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/service"
)

// errMalformedUUID is what Postgres answers when a non-UUID reaches a UUID column.
var errMalformedUUID = errors.New("ERROR: invalid input syntax for type uuid (SQLSTATE 22P02)")

func storeRejectingIDs() (*mockLoanApplicationRepository, *mockClientRepository) {
	apps := &mockLoanApplicationRepository{
		findByIDFunc: func(context.Context, string) (model.LoanApplication, error) {
			return model.LoanApplication{}, errMalformedUUID
		},
		deleteFunc: func(context.Context, string) error { return errMalformedUUID },
	}
	clients := newMockClientRepository()
	clients.findErr = errMalformedUUID
	return apps, clients
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	ctx := context.Background()

	for _, id := range []string{"abc", "1", "00000000-0000-0000-0000-00000000001", "' OR 1=1 --"} {
		t.Run(id, func(t *testing.T) {
			apps, clients := storeRejectingIDs()
			gateway := &mockRiskGateway{}

			_, err := usecase.NewSimulateLoanUseCase(clients, gateway, newEngine(), nil, nil).
				Execute(ctx, loanRequest(id))
			assert.ErrorIs(t, err, model.ErrClientNotFound, "simulate")

			_, err = usecase.NewCreateLoanApplicationUseCase(apps, clients, gateway, newEngine(), &mockEventPublisher{}, nil, nil).
				Execute(ctx, loanRequest(id))
			assert.ErrorIs(t, err, model.ErrClientNotFound, "create")
			assert.Zero(t, gateway.calls.Load())
			assert.Empty(t, apps.savedApps)

			_, err = usecase.NewGetApplicationUseCase(apps, clients).
				Execute(ctx, dto.GetApplicationRequest{ApplicationID: id})
			assert.ErrorIs(t, err, model.ErrApplicationNotFound, "get")

			_, err = usecase.NewGetScheduleUseCase(apps).
				Execute(ctx, dto.GetApplicationRequest{ApplicationID: id})
			assert.ErrorIs(t, err, model.ErrApplicationNotFound, "schedule")

			_, err = usecase.NewRecomputeLoanApplicationUseCase(apps, clients, service.NewDefaultRiskRateTable(), &mockEventPublisher{}).
				Execute(ctx, dto.RecomputeApplicationRequest{ApplicationID: id, TermYears: intPtr(10)})
			assert.ErrorIs(t, err, model.ErrApplicationNotFound, "recompute")

			err = usecase.NewDeleteLoanApplicationUseCase(apps).
				Execute(ctx, dto.DeleteApplicationRequest{ApplicationID: id})
			assert.ErrorIs(t, err, model.ErrApplicationNotFound, "delete application")

			_, err = usecase.NewGetClientUseCase(clients).Execute(ctx, id)
			assert.ErrorIs(t, err, model.ErrClientNotFound, "get client")

			_, err = usecase.NewUpdateClientUseCase(clients, nil, nil).
				Execute(ctx, dto.UpdateClientRequest{ClientID: id, ClientRequest: clientRequest()})
			assert.ErrorIs(t, err, model.ErrClientNotFound, "update client")

			err = usecase.NewDeleteClientUseCase(clients).Execute(ctx, id)
			assert.ErrorIs(t, err, model.ErrClientNotFound, "delete client")
		})
	}
}

func TestWellFormedIDsReachTheStore(t *testing.T) {
	apps, clients := storeRejectingIDs()

	_, err := usecase.NewGetApplicationUseCase(apps, clients).
		Execute(context.Background(), dto.GetApplicationRequest{ApplicationID: unknownID})
	assert.ErrorIs(t, err, errMalformedUUID)

	_, err = usecase.NewGetClientUseCase(clients).Execute(context.Background(), unknownID)
	assert.ErrorIs(t, err, errMalformedUUID)
}
