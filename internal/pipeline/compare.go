package pipeline

import (
	"sync"

	"github.com/theirongolddev/payoff/internal/model"
)

// StrategyRun is one strategy's result scored against the baseline.
type StrategyRun struct {
	Result *Result
	Score  model.Score
}

// Comparison holds the baseline and every built-in strategy for one request.
type Comparison struct {
	Baseline *Result
	Runs     []StrategyRun // in model.Strategies order
	Best     int           // index into Runs
}

// BestRun returns the highest-scoring strategy run.
func (c *Comparison) BestRun() StrategyRun {
	return c.Runs[c.Best]
}

// Compare runs the baseline and every built-in strategy in parallel. Each run
// gets its own copy of the request. An unfundable budget fails the whole
// comparison.
func Compare(req Request) (*Comparison, error) {
	strategies := model.Strategies
	results := make([]*Result, len(strategies))
	errs := make([]error, len(strategies))
	var baseline *Result

	var wg sync.WaitGroup
	wg.Add(len(strategies) + 1)
	go func() {
		defer wg.Done()
		baseline = RunBaseline(req.Clone())
	}()
	for i, s := range strategies {
		go func(i int, s model.Strategy) {
			defer wg.Done()
			r := req.Clone()
			r.Strategy = s.String()
			results[i], errs[i] = Run(r)
		}(i, s)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	c := &Comparison{Baseline: baseline}
	for i, res := range results {
		c.Runs = append(c.Runs, StrategyRun{Result: res, Score: res.Score(baseline.Summary)})
		if better(c.Runs[i], c.Runs[c.Best]) {
			c.Best = i
		}
	}
	return c, nil
}

// better prefers a higher score, then less interest, then the earlier strategy.
func better(a, b StrategyRun) bool {
	if a.Score.Total != b.Score.Total {
		return a.Score.Total > b.Score.Total
	}
	return a.Result.Summary.TotalInterest.LessThan(b.Result.Summary.TotalInterest)
}
