package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/model"
)

// DefaultHorizon caps every simulation at 50 years of monthly payments.
const DefaultHorizon = 600

// Amortize simulates one debt with a fixed monthly payment. Entry k is dated
// AddMonths(anchor, k-1). A payment that does not exceed the month's interest
// ends the run immediately as NonAmortizing; running out of horizon ends it as
// HorizonExceeded. A horizon <= 0 means DefaultHorizon.
func Amortize(debt model.Debt, payment decimal.Decimal, horizon int, anchor time.Time) model.Schedule {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	sched := model.Schedule{DebtID: debt.ID, Outcome: model.PaidOff}

	balance := RoundMoney(debt.Balance)
	if !balance.IsPositive() {
		return sched
	}

	for month := 1; month <= horizon; month++ {
		interest := MonthlyInterest(balance, debt.APR)
		if payment.LessThanOrEqual(interest) {
			sched.Outcome = model.NonAmortizing
			return sched
		}

		due := balance.Add(interest)
		pay := decimal.Min(payment, due)
		end := due.Sub(pay)

		minimum := decimal.Min(debt.MinimumPayment, pay)
		if minimum.IsNegative() {
			minimum = decimal.Zero
		}

		sched.Entries = append(sched.Entries, model.LedgerEntry{
			Month:         month,
			Date:          AddMonths(anchor, month-1),
			StartBalance:  balance,
			Interest:      interest,
			Payment:       pay,
			Principal:     pay.Sub(interest),
			Minimum:       minimum,
			Extra:         pay.Sub(minimum),
			Redistributed: decimal.Zero,
			OneTime:       decimal.Zero,
			EndBalance:    end,
			Final:         end.IsZero(),
		})

		if end.IsZero() {
			return sched
		}
		balance = end
	}

	sched.Outcome = model.HorizonExceeded
	return sched
}
