package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// AssertDecimalEqual compares decimals by value, so 20000 and
// 20000.00000000000000000000 are equal.
func AssertDecimalEqual(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) bool {
	t.Helper()
	expected := decimal.RequireFromString(want)
	if expected.Equal(got) {
		return true
	}
	return assert.Fail(t, "decimals differ: want "+expected.String()+", got "+got.String(), msgAndArgs...)
}

// AssertDecimalRounded compares got, rounded half-even to places, with want.
func AssertDecimalRounded(t *testing.T, want string, got decimal.Decimal, places int32, msgAndArgs ...any) bool {
	t.Helper()
	return AssertDecimalEqual(t, want, got.RoundBank(places), msgAndArgs...)
}
