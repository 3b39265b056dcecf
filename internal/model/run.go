package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Run is one recorded plan run in the history.
type Run struct {
	ID                string          `json:"id"`
	InputHash         string          `json:"input_hash"`
	CreatedAt         time.Time       `json:"created_at"`
	Source            string          `json:"source"` // cli, daemon, tui
	Strategy          string          `json:"strategy"`
	RequestedStrategy string          `json:"requested_strategy"`
	FellBack          bool            `json:"fell_back,omitempty"`
	MonthlyBudget     decimal.Decimal `json:"monthly_budget"`
	Months            Months          `json:"months"`
	TotalInterest     decimal.Decimal `json:"total_interest"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	PayoffDate        time.Time       `json:"payoff_date"`
	Debts             []RunDebt       `json:"debts,omitempty"`
}

// RunDebt is the per-debt part of a recorded run, without the ledger.
type RunDebt struct {
	DebtID        string          `json:"debt_id"`
	Months        Months          `json:"months"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	PayoffDate    time.Time       `json:"payoff_date"`
	Outcome       string          `json:"outcome"`
}

// NewRun builds a history record from a summary. ID, hash and timestamps are
// left to the caller.
func NewRun(sum PlanSummary) Run {
	r := Run{
		Strategy:      sum.Strategy,
		MonthlyBudget: sum.MonthlyBudget,
		Months:        sum.Months,
		TotalInterest: sum.TotalInterest,
		TotalPaid:     sum.TotalPaid,
		PayoffDate:    sum.PayoffDate,
	}
	for _, d := range sum.Debts {
		r.Debts = append(r.Debts, RunDebt{
			DebtID:        d.DebtID,
			Months:        d.Months,
			TotalInterest: d.TotalInterest,
			TotalPaid:     d.TotalPaid,
			PayoffDate:    d.PayoffDate,
			Outcome:       d.Outcome.String(),
		})
	}
	return r
}
