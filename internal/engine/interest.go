// Package engine is the pure debt payoff simulator: interest accrual, strategy
// ordering, single-debt amortization, multi-debt allocation, aggregation and
// scoring. Nothing in this package reads the clock, logs, or touches I/O.
package engine

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of minor-unit digits every amount is rounded to.
const MoneyPlaces = 2

var monthsPerYearPct = decimal.NewFromInt(1200)

// RoundMoney rounds half away from zero to cents. Amounts in the engine are
// non-negative, so this is round-half-up everywhere it is used.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// MonthlyInterest is one month of interest on balance at an annual percentage
// rate: balance * apr / 1200, rounded to cents. It is never negative.
func MonthlyInterest(balance, annualRatePercent decimal.Decimal) decimal.Decimal {
	if !balance.IsPositive() || !annualRatePercent.IsPositive() {
		return decimal.Zero
	}
	return RoundMoney(balance.Mul(annualRatePercent).Div(monthsPerYearPct))
}
