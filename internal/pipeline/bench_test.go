package pipeline

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/store"
)

// benchRequest is a 25-debt portfolio with mixed rates and sizes.
func benchRequest() Request {
	var debts []model.Debt
	for i := 0; i < 25; i++ {
		debts = append(debts, model.Debt{
			ID:             fmt.Sprintf("debt-%02d", i),
			Balance:        decimal.NewFromInt(int64(1500 + i*730)),
			APR:            decimal.NewFromFloat(4.5 + float64(i%9)*2.75),
			MinimumPayment: decimal.NewFromInt(int64(35 + i*4)),
		})
	}
	return Request{
		Debts:         debts,
		Strategy:      "avalanche",
		MonthlyBudget: engine.MinimumTotal(debts).Add(decimal.NewFromInt(400)),
		Anchor:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func BenchmarkRun(b *testing.B) {
	req := benchRequest()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Run(req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompare(b *testing.B) {
	req := benchRequest()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Compare(req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSweep(b *testing.B) {
	req := benchRequest()
	budgets := BudgetSteps(req.MonthlyBudget, req.MonthlyBudget.Add(decimal.NewFromInt(2000)), decimal.NewFromInt(100))
	b.Logf("Sweeping %d budgets over %d debts", len(budgets), len(req.Debts))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, p := range Sweep(req, budgets, nil) {
			if p.Err != nil {
				b.Fatal(p.Err)
			}
		}
	}
}

func BenchmarkRecord(b *testing.B) {
	h, err := store.Open(filepath.Join(b.TempDir(), "history.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer func() { _ = h.Close() }()

	res, err := Run(benchRequest())
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Record(h, res, "bench"); err != nil {
			b.Fatal(err)
		}
	}
}
