package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/model"
)

// Baseline simulates the minimum-payments-only plan: every debt is amortized
// on its own at its minimum payment, nothing is redistributed and no one-time
// funding is applied. The ordering only fixes the schedule order.
func Baseline(debts []model.Debt, ordering Ordering, horizon int, anchor time.Time) model.Allocation {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	byID := make(map[string]model.Debt, len(debts))
	for _, d := range debts {
		byID[d.ID] = d
	}

	alloc := model.Allocation{
		Strategy:       ordering.Strategy,
		Order:          append([]string(nil), ordering.IDs...),
		MonthlyBudget:  MinimumTotal(debts),
		Anchor:         anchor,
		Horizon:        horizon,
		UnspentFunding: decimal.Zero,
	}
	for _, id := range ordering.IDs {
		d := byID[id]
		alloc.Schedules = append(alloc.Schedules, Amortize(d, d.MinimumPayment, horizon, anchor))
	}
	return alloc
}
