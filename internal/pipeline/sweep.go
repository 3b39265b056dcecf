package pipeline

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/model"
)

// ProgressFunc is called as sweep points complete.
// current is the number of points finished so far, total is the total count.
type ProgressFunc func(current, total int)

// SweepPoint is the outcome of one budget in a what-if sweep. Err is set
// when the budget cannot fund the minimums.
type SweepPoint struct {
	Budget decimal.Decimal
	Result *Result
	Score  model.Score
	Err    error
}

// Sweep runs the request at every budget on a bounded worker pool and returns
// the points in budget order. Each run works on its own copy of the debts.
func Sweep(req Request, budgets []decimal.Decimal, progressFn ProgressFunc) []SweepPoint {
	points := make([]SweepPoint, len(budgets))
	if len(budgets) == 0 {
		return points
	}

	baseline := RunBaseline(req.Clone()).Summary

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(budgets) {
		numWorkers = len(budgets)
	}

	work := make(chan int, len(budgets))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range budgets {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				r := req.Clone()
				r.MonthlyBudget = budgets[idx]
				p := SweepPoint{Budget: budgets[idx]}
				p.Result, p.Err = Run(r)
				if p.Err == nil {
					p.Score = p.Result.Score(baseline)
				}
				points[idx] = p

				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(budgets))
				}
			}
		}()
	}

	wg.Wait()
	return points
}

// BudgetSteps returns from, from+step, ... up to and including to.
func BudgetSteps(from, to, step decimal.Decimal) []decimal.Decimal {
	if !step.IsPositive() || to.LessThan(from) {
		return []decimal.Decimal{from}
	}
	var steps []decimal.Decimal
	for b := from; b.LessThanOrEqual(to); b = b.Add(step) {
		steps = append(steps, b)
	}
	return steps
}
