package engine

import (
	"sort"

	"github.com/theirongolddev/payoff/internal/model"
)

// Ordering is the priority order of a run. FellBack is set when the requested
// strategy was custom or unknown and Avalanche was used instead; callers must
// surface it.
type Ordering struct {
	Strategy  model.Strategy
	Requested string
	FellBack  bool
	IDs       []string
}

// Index returns the priority position of a debt ID, or -1.
func (o Ordering) Index(id string) int {
	for i, v := range o.IDs {
		if v == id {
			return i
		}
	}
	return -1
}

// Order sorts debt IDs by the named strategy using the debts' starting
// attributes. The result is a total order and is stable across calls.
func Order(debts []model.Debt, strategyID string) Ordering {
	strategy, known := model.ParseStrategy(strategyID)
	o := Ordering{Strategy: strategy, Requested: strategyID}
	if !known || strategy == model.Custom {
		o.Strategy = model.Avalanche
		o.FellBack = true
	}

	sorted := make([]model.Debt, len(debts))
	copy(sorted, debts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return o.Strategy.Less(sorted[i], sorted[j])
	})

	o.IDs = make([]string, len(sorted))
	for i, d := range sorted {
		o.IDs[i] = d.ID
	}
	return o
}
