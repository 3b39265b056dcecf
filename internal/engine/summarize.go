package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/model"
)

// SummarizeSchedule reduces one ledger. Months equals the ledger length for a
// paid-off debt and is model.Never otherwise.
func SummarizeSchedule(s model.Schedule) model.DebtSummary {
	sum := model.DebtSummary{
		DebtID:        s.DebtID,
		Outcome:       s.Outcome,
		TotalInterest: decimal.Zero,
		TotalPaid:     decimal.Zero,
		Ledger:        s.Entries,
	}
	for _, e := range s.Entries {
		sum.TotalInterest = sum.TotalInterest.Add(e.Interest)
		sum.TotalPaid = sum.TotalPaid.Add(e.Payment)
	}

	if s.Outcome.Never() {
		sum.Months = model.Never
		return sum
	}
	sum.Months = model.Months(len(s.Entries))
	if last, ok := s.Last(); ok {
		sum.PayoffDate = last.Date
	}
	return sum
}

// Summarize aggregates an allocation. The overall payoff date is the latest
// per-debt payoff date; one never-paying debt makes the whole plan Never.
func Summarize(alloc model.Allocation) model.PlanSummary {
	plan := model.PlanSummary{
		Strategy:      alloc.Strategy.String(),
		MonthlyBudget: alloc.MonthlyBudget,
		TotalInterest: decimal.Zero,
		TotalPaid:     decimal.Zero,
	}

	var months model.Months
	var payoff time.Time
	for _, s := range alloc.Schedules {
		ds := SummarizeSchedule(s)
		plan.Debts = append(plan.Debts, ds)
		plan.TotalInterest = plan.TotalInterest.Add(ds.TotalInterest)
		plan.TotalPaid = plan.TotalPaid.Add(ds.TotalPaid)

		if ds.Months.IsNever() {
			plan.NeverDebts = append(plan.NeverDebts, ds.DebtID)
			continue
		}
		if ds.Months > months {
			months = ds.Months
		}
		if ds.PayoffDate.After(payoff) {
			payoff = ds.PayoffDate
		}
	}

	if len(plan.NeverDebts) > 0 {
		plan.Months = model.Never
		return plan
	}
	plan.Months = months
	plan.PayoffDate = payoff
	return plan
}
