package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optic/loan-origination/pkg/testutil"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculateAll_ReferenceScenario(t *testing.T) {
	res, err := CalculateAll(d("100000"), d("20"), 20, d("7.5"))
	require.NoError(t, err)

	testutil.AssertDecimalEqual(t, "20000", res.DownPayment)
	testutil.AssertDecimalEqual(t, "80000", res.FinancedAmount)
	testutil.AssertDecimalEqual(t, "0.00625", res.MonthlyRate)
	testutil.AssertDecimalEqual(t, "7.5", res.AnnualRate)
	assert.Equal(t, 240, res.TermMonths)
	testutil.AssertDecimalRounded(t, "644.47", res.MonthlyInstallment, 2)
	testutil.AssertDecimalRounded(t, "7.76", res.EffectiveAnnualRate, 2)
}

func TestCalculateAll_Properties(t *testing.T) {
	cases := []struct {
		principal, percent, rate string
		years                    int
	}{
		{"100000", "20", "7.5", 20},
		{"50000", "0", "8.5", 1},
		{"250000", "35.5", "9.5", 30},
		{"12345.67", "10", "7.5", 5},
		{"80000", "100", "8.5", 10},
	}

	for _, tc := range cases {
		t.Run(tc.principal+"/"+tc.percent+"/"+tc.rate, func(t *testing.T) {
			principal := d(tc.principal)
			rate := d(tc.rate)
			res, err := CalculateAll(principal, d(tc.percent), tc.years, rate)
			require.NoError(t, err)

			assert.True(t, res.DownPayment.Add(res.FinancedAmount).Equal(principal),
				"down payment plus financed must equal principal")

			totalPaid := res.MonthlyInstallment.Mul(decimal.NewFromInt(int64(res.TermMonths)))
			assert.True(t, totalPaid.GreaterThanOrEqual(res.FinancedAmount),
				"interest must be non-negative")

			assert.True(t, res.EffectiveAnnualRate.GreaterThanOrEqual(rate),
				"TCEA %s must not be below nominal %s", res.EffectiveAnnualRate, rate)
		})
	}
}

func TestCalculateAll_Idempotent(t *testing.T) {
	first, err := CalculateAll(d("98765.43"), d("15"), 7, d("8.5"))
	require.NoError(t, err)
	second, err := CalculateAll(d("98765.43"), d("15"), 7, d("8.5"))
	require.NoError(t, err)

	assert.Equal(t, first.MonthlyInstallment.String(), second.MonthlyInstallment.String())
	assert.Equal(t, first.EffectiveAnnualRate.String(), second.EffectiveAnnualRate.String())
	assert.Equal(t, first.DownPayment.String(), second.DownPayment.String())
}

func TestCalculateAll_Errors(t *testing.T) {
	_, err := CalculateAll(d("1000"), d("10"), 0, d("7.5"))
	assert.ErrorIs(t, err, ErrInvalidTerm)

	_, err = CalculateAll(d("1000"), d("10"), 1, d("-1"))
	assert.ErrorIs(t, err, ErrInvalidRate)
}

func TestMonthlyInstallment_ZeroRate(t *testing.T) {
	got, err := MonthlyInstallment(d("1200"), decimal.Zero, 12)
	require.NoError(t, err)
	testutil.AssertDecimalEqual(t, "100", got)
}

func TestMonthlyInstallment_SecondReference(t *testing.T) {
	got, err := MonthlyInstallment(d("40000"), MonthlyRate(d("8.5")), 120)
	require.NoError(t, err)
	testutil.AssertDecimalRounded(t, "495.94", got, 2)
}

func TestMonthlyRate_KeepsTwentyDigits(t *testing.T) {
	// 0.085 / 12 repeats; the 21st digit is a 3 and is dropped.
	assert.Equal(t, "0.00708333333333333333", MonthlyRate(d("8.5")).String())
}

func TestQuo_HalfEven(t *testing.T) {
	tests := []struct {
		name string
		a, b decimal.Decimal
		want string
	}{
		{name: "exact", a: d("1"), b: d("8"), want: "0.125"},
		{name: "round up", a: d("2"), b: d("3"), want: "0.66666666666666666667"},
		{name: "tie to even zero", a: decimal.New(5, -21), b: one, want: "0"},
		{name: "tie odd rounds up", a: decimal.New(15, -21), b: one, want: "0.00000000000000000002"},
		{name: "tie even stays", a: decimal.New(25, -21), b: one, want: "0.00000000000000000002"},
		{name: "negative tie odd", a: decimal.New(-15, -21), b: one, want: "-0.00000000000000000002"},
		{name: "negative divisor", a: d("2"), b: d("-3"), want: "-0.66666666666666666667"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertDecimalEqual(t, tt.want, quo(tt.a, tt.b))
		})
	}
}

func TestPowInt(t *testing.T) {
	testutil.AssertDecimalEqual(t, "1", powInt(d("1.5"), 0))
	testutil.AssertDecimalEqual(t, "2.25", powInt(d("1.5"), 2))
	testutil.AssertDecimalEqual(t, "1.061520150601", powInt(d("1.01"), 6))
}

func TestGenerateAmortizationSchedule(t *testing.T) {
	res, err := CalculateAll(d("12000"), d("0"), 1, d("7.5"))
	require.NoError(t, err)

	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	schedule := GenerateAmortizationSchedule(res, start)
	require.Len(t, schedule, 12)

	totalPrincipal := decimal.Zero
	for i, e := range schedule {
		assert.Equal(t, i+1, e.Period)
		assert.True(t, e.Total.Equal(e.Principal.Add(e.Interest)))
		totalPrincipal = totalPrincipal.Add(e.Principal)
	}
	testutil.AssertDecimalEqual(t, "12000", totalPrincipal)
	assert.True(t, schedule[11].RemainingBalance.IsZero())
	testutil.AssertDecimalEqual(t, "75", schedule[0].Interest)
	assert.Equal(t, start.AddDate(0, 1, 0), schedule[0].DueDate)
}

func TestGenerateAmortizationSchedule_RejectedIsEmpty(t *testing.T) {
	assert.Nil(t, GenerateAmortizationSchedule(ZeroCalculation(), time.Now()))
}
