package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// CalculationPrecision is the number of fractional digits kept by every
// intermediate division. Rounding is half-to-even.
const CalculationPrecision int32 = 20

var (
	ErrInvalidTerm = errors.New("term must be at least one month")
	ErrInvalidRate = errors.New("interest rate must not be negative")
)

var (
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// CalculationResult is the full set of figures derived for one loan request.
type CalculationResult struct {
	DownPayment         decimal.Decimal
	FinancedAmount      decimal.Decimal
	MonthlyInstallment  decimal.Decimal
	EffectiveAnnualRate decimal.Decimal // TCEA, in percent
	AnnualRate          decimal.Decimal // nominal, in percent
	MonthlyRate         decimal.Decimal // fraction, not percent
	TermMonths          int
}

// ZeroCalculation is what a rejected application carries.
func ZeroCalculation() CalculationResult {
	return CalculationResult{
		DownPayment:         decimal.Zero,
		FinancedAmount:      decimal.Zero,
		MonthlyInstallment:  decimal.Zero,
		EffectiveAnnualRate: decimal.Zero,
		AnnualRate:          decimal.Zero,
		MonthlyRate:         decimal.Zero,
	}
}

// ---------------------------------------------------------------------------
// Building blocks
// ---------------------------------------------------------------------------

// DownPayment returns principal * (percent / 100).
func DownPayment(principal, percent decimal.Decimal) decimal.Decimal {
	return principal.Mul(quo(percent, hundred))
}

// FinancedAmount returns principal - downPayment.
func FinancedAmount(principal, downPayment decimal.Decimal) decimal.Decimal {
	return principal.Sub(downPayment)
}

// TermInMonths converts a term in years to months.
func TermInMonths(years int) int {
	return years * 12
}

// MonthlyRate returns (annualPercent / 100) / 12 as a fraction.
func MonthlyRate(annualPercent decimal.Decimal) decimal.Decimal {
	return quo(quo(annualPercent, hundred), twelve)
}

// MonthlyInstallment applies the French annuity formula
//
//	installment = F * r / (1 - 1/(1+r)^n)
//
// A zero rate degenerates to F / n.
func MonthlyInstallment(financed, monthlyRate decimal.Decimal, months int) (decimal.Decimal, error) {
	if months <= 0 {
		return decimal.Zero, ErrInvalidTerm
	}
	if monthlyRate.IsNegative() {
		return decimal.Zero, ErrInvalidRate
	}
	n := decimal.NewFromInt(int64(months))
	if monthlyRate.IsZero() {
		return quo(financed, n), nil
	}

	growth := powInt(one.Add(monthlyRate), months)
	discount := quo(one, growth)
	return quo(financed.Mul(monthlyRate), one.Sub(discount)), nil
}

// EffectiveAnnualRate returns the TCEA, ((1+r)^12 - 1) * 100.
func EffectiveAnnualRate(monthlyRate decimal.Decimal) decimal.Decimal {
	return powInt(one.Add(monthlyRate), 12).Sub(one).Mul(hundred)
}

// CalculateAll runs the full chain for one request. It is pure: identical
// inputs always produce identical decimals.
func CalculateAll(principal, downPaymentPercent decimal.Decimal, termYears int, annualRate decimal.Decimal) (CalculationResult, error) {
	if annualRate.IsNegative() {
		return CalculationResult{}, ErrInvalidRate
	}
	down := DownPayment(principal, downPaymentPercent)
	financed := FinancedAmount(principal, down)
	months := TermInMonths(termYears)
	rate := MonthlyRate(annualRate)

	installment, err := MonthlyInstallment(financed, rate, months)
	if err != nil {
		return CalculationResult{}, err
	}

	return CalculationResult{
		DownPayment:         down,
		FinancedAmount:      financed,
		MonthlyInstallment:  installment,
		EffectiveAnnualRate: EffectiveAnnualRate(rate),
		AnnualRate:          annualRate,
		MonthlyRate:         rate,
		TermMonths:          months,
	}, nil
}

// ---------------------------------------------------------------------------
// Schedule
// ---------------------------------------------------------------------------

// AmortizationEntry is one period of a French amortization schedule.
type AmortizationEntry struct {
	DueDate          time.Time
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	Total            decimal.Decimal
	RemainingBalance decimal.Decimal
	Period           int
}

// GenerateAmortizationSchedule splits each installment into interest and
// principal, rounded to cents. The last period absorbs the rounding residue
// so the balance closes at exactly zero.
func GenerateAmortizationSchedule(calc CalculationResult, startDate time.Time) []AmortizationEntry {
	months := calc.TermMonths
	if months <= 0 || !calc.FinancedAmount.IsPositive() {
		return nil
	}

	payment := calc.MonthlyInstallment.RoundBank(2)
	remaining := calc.FinancedAmount.RoundBank(2)
	schedule := make([]AmortizationEntry, 0, months)

	for period := 1; period <= months; period++ {
		interest := remaining.Mul(calc.MonthlyRate).RoundBank(2)
		principalPart := payment.Sub(interest)
		if period == months || principalPart.GreaterThan(remaining) {
			principalPart = remaining
		}
		remaining = remaining.Sub(principalPart)

		schedule = append(schedule, AmortizationEntry{
			Period:           period,
			DueDate:          startDate.AddDate(0, period, 0),
			Principal:        principalPart,
			Interest:         interest,
			Total:            principalPart.Add(interest),
			RemainingBalance: remaining,
		})
		if remaining.IsZero() {
			break
		}
	}

	return schedule
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// quo divides at CalculationPrecision digits, rounding half-to-even.
// DivRound rounds half away from zero, so the tie is resolved here from the
// truncated quotient and its remainder.
func quo(a, b decimal.Decimal) decimal.Decimal {
	q, r := a.QuoRem(b, CalculationPrecision)
	if r.IsZero() {
		return q
	}

	unit := b.Abs().Shift(-CalculationPrecision)
	switch r.Abs().Mul(two).Cmp(unit) {
	case -1:
		return q
	case 0:
		if q.Shift(CalculationPrecision).Abs().Mod(two).IsZero() {
			return q
		}
	}

	step := decimal.New(1, -CalculationPrecision)
	if a.Sign()*b.Sign() < 0 {
		return q.Sub(step)
	}
	return q.Add(step)
}

// powInt raises base to a non-negative integer power exactly, by squaring.
func powInt(base decimal.Decimal, exp int) decimal.Decimal {
	result := one
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		exp >>= 1
	}
	return result
}
