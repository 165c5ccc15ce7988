package usecase_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/optic/loan-origination/internal/application/dto"
	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/service"
	"github.com/optic/loan-origination/pkg/testutil"
)

func newEngine() *service.LoanDecisionEngine {
	return service.NewLoanDecisionEngine(service.NewDefaultRiskRateTable())
}

func testClient(t *testing.T) model.Client {
	t.Helper()
	c, err := model.NewClient(model.ClientProfile{
		FullName: "Ana Torres",
		Document: testutil.TestDocument,
		Email:    "ana@example.com",
		Phone:    "987654321",
	}, testutil.TestNow)
	require.NoError(t, err)
	return c
}

func intPtr(v int) *int { return &v }

func loanRequest(clientID string) dto.LoanRequest {
	return dto.LoanRequest{
		ClientID:           clientID,
		Principal:          decimal.NewNullDecimal(decimal.NewFromInt(100000)),
		DownPaymentPercent: decimal.NewNullDecimal(decimal.NewFromInt(20)),
		TermYears:          intPtr(20),
	}
}

// unknownID is well formed but names no row.
const unknownID = "00000000-0000-0000-0000-0000000000ff"
