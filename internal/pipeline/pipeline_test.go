package pipeline

import (
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/portfolio"
	"github.com/theirongolddev/payoff/internal/store"
)

var d = decimal.RequireFromString

func testRequest() Request {
	return Request{
		Debts: []model.Debt{
			{ID: "card", Name: "Rewards card", Balance: d("3200"), APR: d("24.99"), MinimumPayment: d("96")},
			{ID: "store", Balance: d("450"), APR: d("19.5"), MinimumPayment: d("35")},
			{ID: "car", Balance: d("9800"), APR: d("5.9"), MinimumPayment: d("240")},
		},
		Strategy:      "avalanche",
		MonthlyBudget: d("700"),
		Anchor:        time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRun(t *testing.T) {
	res, err := Run(testRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"card", "store", "car"}, res.Ordering.IDs)
	assert.True(t, res.Summary.DebtFree())
	assert.Empty(t, res.Warnings())
	assert.Equal(t, "Rewards card", res.Labels()["card"])
	assert.Equal(t, res.Request.Anchor, res.Anchor)
}

func TestTrajectory(t *testing.T) {
	res, err := Run(testRequest())
	require.NoError(t, err)

	traj := res.Trajectory()
	require.Len(t, traj, res.Allocation.Months()+1)
	assert.True(t, traj[0].Equal(d("13450")), "start = %s", traj[0])
	assert.True(t, traj[len(traj)-1].IsZero(), "end = %s", traj[len(traj)-1])
	for m := 1; m < len(traj); m++ {
		assert.True(t, traj[m].LessThan(traj[m-1]), "month %d did not reduce the balance", m)
	}

	// A debt that never amortizes keeps its balance after its ledger ends.
	stuck := model.Schedule{DebtID: "x", Outcome: model.NonAmortizing}
	assert.True(t, stuck.BalanceAfter(d("500"), 3).Equal(d("500")))
}

func TestRunWarnsOnHighAPR(t *testing.T) {
	req := testRequest()
	req.Debts = append(req.Debts, model.Debt{ID: "payday", Balance: d("400"), APR: d("390"), MinimumPayment: d("150")})
	req.MonthlyBudget = d("900")

	res, err := Run(req)
	require.NoError(t, err)
	require.Len(t, res.Warnings(), 1)
	assert.Contains(t, res.Warnings()[0], "payday")
	assert.Contains(t, res.Warnings()[0], "390%")

	s, ok := res.Allocation.Schedule("payday")
	require.True(t, ok)
	assert.Equal(t, model.PaidOff, s.Outcome)
}

func TestRunUnfundable(t *testing.T) {
	req := testRequest()
	req.MonthlyBudget = d("300")
	_, err := Run(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrUnfundablePlan))
}

func TestRunSurfacesFallback(t *testing.T) {
	req := testRequest()
	req.Strategy = "custom"
	res, err := Run(req)
	require.NoError(t, err)

	assert.True(t, res.Ordering.FellBack)
	require.NotEmpty(t, res.Warnings())
	assert.Contains(t, res.Warnings()[0], `"custom"`)
}

func TestResolvedAnchor(t *testing.T) {
	orig := Now
	Now = func() time.Time { return time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC) }
	defer func() { Now = orig }()

	req := testRequest()
	req.Anchor = time.Time{}
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), req.ResolvedAnchor())

	next := time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC)
	req.Debts[1].NextPaymentDate = next
	assert.Equal(t, next, req.ResolvedAnchor())
}

func TestFromPortfolioBudgetPrecedence(t *testing.T) {
	p := portfolio.Portfolio{Debts: testRequest().Debts}
	fallback := d("900")

	req := FromPortfolio(p, "snowball", nil, 0)
	assert.Equal(t, "snowball", req.Strategy)
	assert.True(t, req.MonthlyBudget.Equal(d("371")), "sum of minimums when nothing is set")

	req = FromPortfolio(p, "snowball", &fallback, 0)
	assert.True(t, req.MonthlyBudget.Equal(fallback))

	own := d("1000")
	p.MonthlyBudget = &own
	p.Strategy = "avalanche"
	req = FromPortfolio(p, "snowball", &fallback, 0)
	assert.True(t, req.MonthlyBudget.Equal(own))
	assert.Equal(t, "avalanche", req.Strategy)

	req.Debts[0].Balance = decimal.Zero
	assert.False(t, p.Debts[0].Balance.IsZero())
}

func TestRunBaselineIsMinimumsOnly(t *testing.T) {
	req := testRequest()
	req.Fundings = []model.OneTimeFunding{{Date: req.Anchor, Amount: d("5000")}}
	base := RunBaseline(req)

	assert.True(t, base.Request.MonthlyBudget.Equal(d("371")))
	assert.Empty(t, base.Allocation.Events)
	for _, s := range base.Allocation.Schedules {
		for _, e := range s.Entries {
			assert.True(t, e.OneTime.IsZero())
			assert.True(t, e.Redistributed.IsZero())
		}
	}
}

func TestCompare(t *testing.T) {
	c, err := Compare(testRequest())
	require.NoError(t, err)

	require.Len(t, c.Runs, len(model.Strategies))
	assert.Equal(t, "avalanche", c.Runs[0].Result.Summary.Strategy)
	assert.Equal(t, "snowball", c.Runs[1].Result.Summary.Strategy)

	for _, r := range c.Runs {
		assert.True(t, r.Score.InterestSaved.IsPositive())
		assert.Greater(t, r.Score.MonthsSaved, 0)
		assert.LessOrEqual(t, r.Score.Total, 100.0)
	}

	// avalanche never pays more interest than snowball on the same budget
	av, sb := c.Runs[0].Result.Summary, c.Runs[1].Result.Summary
	assert.True(t, av.TotalInterest.LessThanOrEqual(sb.TotalInterest))
	assert.Equal(t, 0, c.Best)
	assert.Equal(t, c.Runs[0], c.BestRun())
}

func TestCompareUnfundable(t *testing.T) {
	req := testRequest()
	req.MonthlyBudget = d("10")
	_, err := Compare(req)
	assert.ErrorIs(t, err, engine.ErrUnfundablePlan)
}

func TestSweep(t *testing.T) {
	budgets := BudgetSteps(d("300"), d("1100"), d("200"))
	require.Len(t, budgets, 5)

	var calls atomic.Int64
	points := Sweep(testRequest(), budgets, func(current, total int) {
		calls.Add(1)
		assert.Equal(t, 5, total)
	})
	require.Len(t, points, 5)
	assert.Equal(t, int64(5), calls.Load())

	assert.ErrorIs(t, points[0].Err, engine.ErrUnfundablePlan)
	prev := model.Months(1 << 30)
	for i, p := range points[1:] {
		require.NoError(t, p.Err, "point %d", i+1)
		assert.True(t, p.Budget.Equal(budgets[i+1]))
		assert.LessOrEqual(t, p.Result.Summary.Months, prev)
		prev = p.Result.Summary.Months
	}
}

func TestBudgetSteps(t *testing.T) {
	assert.Len(t, BudgetSteps(d("100"), d("100"), d("50")), 1)
	assert.Len(t, BudgetSteps(d("100"), d("50"), d("50")), 1)
	assert.Len(t, BudgetSteps(d("100"), d("300"), decimal.Zero), 1)
	assert.Len(t, BudgetSteps(d("100"), d("350"), d("50")), 6)
}

func TestInputHash(t *testing.T) {
	req := testRequest()
	h1, err := InputHash(req, "2025-03-01")
	require.NoError(t, err)

	// file order does not matter
	swapped := req.Clone()
	swapped.Debts[0], swapped.Debts[2] = swapped.Debts[2], swapped.Debts[0]
	h2, err := InputHash(swapped, "2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	changed := req.Clone()
	changed.Debts[1].Balance = d("451")
	h3, _ := InputHash(changed, "2025-03-01")
	assert.NotEqual(t, h1, h3)

	h4, _ := InputHash(req, "2025-04-01")
	assert.NotEqual(t, h1, h4)
	assert.Len(t, h1, 16)
}

func TestRecord(t *testing.T) {
	h, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer h.Close()

	res, err := Run(testRequest())
	require.NoError(t, err)

	first, err := Record(h, res, "cli")
	require.NoError(t, err)
	assert.False(t, first.Unchanged())
	assert.Equal(t, "cli", first.Run.Source)
	assert.Len(t, first.Run.Debts, 3)

	second, err := Record(h, res, "cli")
	require.NoError(t, err)
	assert.True(t, second.Unchanged())
	assert.Equal(t, first.Run.ID, second.Previous.ID)

	n, err := h.RunCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
