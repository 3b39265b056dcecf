// Package pipeline wires the pure engine to portfolios, history and the
// commands: single plan runs, strategy comparison and what-if sweeps.
package pipeline

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/portfolio"
)

// Now is the clock used to anchor plans whose debts carry no payment date.
var Now = time.Now

// Request is everything one plan run needs.
type Request struct {
	Debts         []model.Debt
	Fundings      []model.OneTimeFunding
	Strategy      string
	MonthlyBudget decimal.Decimal
	Anchor        time.Time // zero: latest next-payment date, else today
	Horizon       int

	OnTimePayments int
	TotalPayments  int
}

// FromPortfolio builds a request from a loaded portfolio. Budget and strategy
// fall back to the given defaults when the portfolio does not set them.
func FromPortfolio(p portfolio.Portfolio, strategy string, budget *decimal.Decimal, horizon int) Request {
	p = p.Clone()
	req := Request{
		Debts:          p.Debts,
		Fundings:       p.Fundings,
		Strategy:       p.Strategy,
		Anchor:         p.Anchor,
		Horizon:        horizon,
		OnTimePayments: p.OnTimePayments,
		TotalPayments:  p.TotalPayments,
	}
	if req.Strategy == "" {
		req.Strategy = strategy
	}
	switch {
	case p.MonthlyBudget != nil:
		req.MonthlyBudget = *p.MonthlyBudget
	case budget != nil:
		req.MonthlyBudget = *budget
	default:
		req.MonthlyBudget = engine.MinimumTotal(p.Debts)
	}
	return req
}

// Clone copies the slices so a request can be handed to another goroutine.
func (r Request) Clone() Request {
	c := r
	c.Debts = append([]model.Debt(nil), r.Debts...)
	c.Fundings = append([]model.OneTimeFunding(nil), r.Fundings...)
	return c
}

// ResolvedAnchor returns the explicit anchor or derives it from the debts.
func (r Request) ResolvedAnchor() time.Time {
	if !r.Anchor.IsZero() {
		return r.Anchor
	}
	y, m, d := Now().Date()
	return engine.AnchorDate(r.Debts, time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// Result is one completed plan run.
type Result struct {
	Request    Request
	Anchor     time.Time
	Ordering   engine.Ordering
	Allocation model.Allocation
	Summary    model.PlanSummary
}

// Run orders the debts, allocates the budget and summarizes the ledgers.
func Run(req Request) (*Result, error) {
	anchor := req.ResolvedAnchor()
	ordering := engine.Order(req.Debts, req.Strategy)

	alloc, err := engine.Allocate(engine.Plan{
		Debts:         req.Debts,
		Ordering:      ordering,
		MonthlyBudget: req.MonthlyBudget,
		Fundings:      req.Fundings,
		Anchor:        anchor,
		Horizon:       req.Horizon,
	})
	if err != nil {
		return nil, fmt.Errorf("allocating %s plan: %w", ordering.Strategy, err)
	}

	return &Result{
		Request:    req,
		Anchor:     anchor,
		Ordering:   ordering,
		Allocation: alloc,
		Summary:    engine.Summarize(alloc),
	}, nil
}

// Labels maps debt IDs to display names.
func (r *Result) Labels() map[string]string {
	labels := make(map[string]string, len(r.Request.Debts))
	for _, d := range r.Request.Debts {
		labels[d.ID] = d.Label()
	}
	return labels
}

// Trajectory returns the total remaining balance before the first payment
// (index 0) and after each simulated month.
func (r *Result) Trajectory() []decimal.Decimal {
	start := make(map[string]decimal.Decimal, len(r.Request.Debts))
	total := decimal.Zero
	for _, d := range r.Request.Debts {
		start[d.ID] = d.Balance
		total = total.Add(d.Balance)
	}

	months := r.Allocation.Months()
	out := make([]decimal.Decimal, months+1)
	out[0] = total
	for m := 1; m <= months; m++ {
		remaining := decimal.Zero
		for _, s := range r.Allocation.Schedules {
			remaining = remaining.Add(s.BalanceAfter(start[s.DebtID], m))
		}
		out[m] = remaining
	}
	return out
}

// highAPR is where an APR stops looking like an ordinary card or loan rate.
var highAPR = decimal.NewFromInt(100)

// Warnings lists conditions the caller must show next to the numbers.
func (r *Result) Warnings() []string {
	var w []string
	if r.Ordering.FellBack {
		w = append(w, fmt.Sprintf("strategy %q is not supported; using %s", r.Ordering.Requested, r.Ordering.Strategy))
	}
	for _, d := range r.Request.Debts {
		if d.APR.GreaterThan(highAPR) {
			w = append(w, fmt.Sprintf("%s has an APR of %s%%; check it is an annual percentage", d.ID, d.APR))
		}
	}
	for _, ds := range r.Summary.Debts {
		switch ds.Outcome {
		case model.NonAmortizing:
			w = append(w, fmt.Sprintf("%s never pays off: payments do not cover interest", ds.DebtID))
		case model.HorizonExceeded:
			w = append(w, fmt.Sprintf("%s is not paid off within %d months", ds.DebtID, r.Allocation.Horizon))
		}
	}
	if r.Allocation.UnspentFunding.IsPositive() {
		w = append(w, fmt.Sprintf("%s of one-time funding was left over after every debt was paid",
			r.Allocation.UnspentFunding.StringFixed(2)))
	}
	return w
}

// Score rates this run against a baseline.
func (r *Result) Score(baseline model.PlanSummary) model.Score {
	return engine.Score(engine.ScoreInput{
		Baseline:       baseline,
		Optimized:      r.Summary,
		Debts:          r.Request.Debts,
		MonthlyBudget:  r.Request.MonthlyBudget,
		OnTimePayments: r.Request.OnTimePayments,
		TotalPayments:  r.Request.TotalPayments,
	})
}

// RunBaseline simulates minimum payments only for the request's debts.
func RunBaseline(req Request) *Result {
	anchor := req.ResolvedAnchor()
	ordering := engine.Order(req.Debts, req.Strategy)
	alloc := engine.Baseline(req.Debts, ordering, req.Horizon, anchor)

	base := req
	base.MonthlyBudget = alloc.MonthlyBudget
	base.Fundings = nil
	return &Result{
		Request:    base,
		Anchor:     anchor,
		Ordering:   ordering,
		Allocation: alloc,
		Summary:    engine.Summarize(alloc),
	}
}
