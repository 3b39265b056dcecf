package engine

import (
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/model"
)

// Score weights.
const (
	InterestWeight = 50.0
	DurationWeight = 30.0
	BehaviorWeight = 20.0
)

// ScoreInput is everything the score calculator looks at.
type ScoreInput struct {
	Baseline      model.PlanSummary // minimum payments only
	Optimized     model.PlanSummary
	Debts         []model.Debt
	MonthlyBudget decimal.Decimal

	// Payment history; when TotalPayments is zero the on-time ratio is 0.5.
	OnTimePayments int
	TotalPayments  int
}

// Score compares an optimized plan with the baseline. Every component is
// clamped to its weight and the total to [0, 100].
func Score(in ScoreInput) model.Score {
	var s model.Score

	s.InterestSaved = in.Baseline.TotalInterest.Sub(in.Optimized.TotalInterest)
	switch {
	case in.Baseline.TotalInterest.IsZero() && !in.Optimized.TotalInterest.IsPositive():
		s.Interest = InterestWeight
	case in.Baseline.TotalInterest.IsPositive():
		ratio := s.InterestSaved.Div(in.Baseline.TotalInterest).InexactFloat64()
		s.Interest = clamp(InterestWeight*ratio, 0, InterestWeight)
	}

	base, opt := in.Baseline.Months, in.Optimized.Months
	switch {
	case opt.IsNever():
		s.Duration = 0
	case base.IsNever():
		s.Duration = DurationWeight
		s.BaselineNever = true
	case base > 0:
		s.MonthsSaved = int(base - opt)
		s.Duration = clamp(DurationWeight*float64(base-opt)/float64(base), 0, DurationWeight)
	default:
		s.Duration = DurationWeight
	}

	s.Behavior = behaviorScore(in)
	s.Total = clamp(s.Interest+s.Duration+s.Behavior, 0, 100)
	return s
}

func behaviorScore(in ScoreInput) float64 {
	onTime := 0.5
	if in.TotalPayments > 0 {
		onTime = clamp(float64(in.OnTimePayments)/float64(in.TotalPayments), 0, 1)
	}

	excess := 0.0
	minimums := MinimumTotal(in.Debts)
	if minimums.IsPositive() {
		over := in.MonthlyBudget.Sub(minimums)
		if over.IsPositive() {
			excess = clamp(over.Div(minimums).InexactFloat64(), 0, 1)
		}
	} else if in.MonthlyBudget.IsPositive() {
		excess = 1
	}

	half := BehaviorWeight / 2
	return clamp(half*onTime+half*excess, 0, BehaviorWeight)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
