package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/optic/loan-origination/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// RiskRateTable – annual nominal rate per risk tier
// ---------------------------------------------------------------------------

// Default annual rates, in percent.
var (
	DefaultRateLow    = decimal.RequireFromString("7.5")
	DefaultRateMedium = decimal.RequireFromString("8.5")
	DefaultRateHigh   = decimal.RequireFromString("9.5")
)

// RiskRateTable maps each risk tier to an annual rate.
type RiskRateTable struct {
	low, medium, high decimal.Decimal
}

// NewDefaultRiskRateTable returns the table with the standard rates.
func NewDefaultRiskRateTable() *RiskRateTable {
	return &RiskRateTable{low: DefaultRateLow, medium: DefaultRateMedium, high: DefaultRateHigh}
}

// NewRiskRateTable builds a table from explicit rates. Rates must be
// positive and must not decrease as risk rises.
func NewRiskRateTable(low, medium, high decimal.Decimal) (*RiskRateTable, error) {
	if !low.IsPositive() || !medium.IsPositive() || !high.IsPositive() {
		return nil, fmt.Errorf("risk rates must be positive: low=%s medium=%s high=%s", low, medium, high)
	}
	if low.GreaterThan(medium) || medium.GreaterThan(high) {
		return nil, fmt.Errorf("risk rates must not decrease with risk: low=%s medium=%s high=%s", low, medium, high)
	}
	return &RiskRateTable{low: low, medium: medium, high: high}, nil
}

// RateFor returns the annual rate for tier. An out-of-range tier is charged
// the high rate.
func (t *RiskRateTable) RateFor(tier valueobject.RiskTier) decimal.Decimal {
	switch tier {
	case valueobject.RiskTierLow:
		return t.low
	case valueobject.RiskTierMedium:
		return t.medium
	case valueobject.RiskTierHigh:
		return t.high
	default:
		return t.high
	}
}

// RateForLevel resolves a raw level as reported by the validation service.
func (t *RiskRateTable) RateForLevel(level *int) decimal.Decimal {
	return t.RateFor(valueobject.RiskTierFromLevel(level))
}
