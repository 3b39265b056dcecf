package pipeline

import (
	"fmt"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/store"
)

// hashInput is the canonical form of a request for hashing. Amounts are
// strings because hashstructure skips the unexported fields of decimal.Decimal.
type hashInput struct {
	Strategy string
	Budget   string
	Anchor   string
	Horizon  int
	Debts    []hashDebt
	Fundings []hashFunding
}

type hashDebt struct {
	ID       string
	Balance  string
	APR      string
	Minimum  string
	NextDate string
}

type hashFunding struct {
	Date    string
	Amount  string
	Applied bool
}

// InputHash fingerprints everything that changes a plan's output. Debts and
// fundings are hashed as sets since their file order does not affect a plan.
func InputHash(req Request, anchorDate string) (string, error) {
	in := hashInput{
		Strategy: req.Strategy,
		Budget:   req.MonthlyBudget.StringFixed(2),
		Anchor:   anchorDate,
		Horizon:  req.Horizon,
	}
	for _, d := range req.Debts {
		next := ""
		if !d.NextPaymentDate.IsZero() {
			next = d.NextPaymentDate.Format("2006-01-02")
		}
		in.Debts = append(in.Debts, hashDebt{
			ID:       d.ID,
			Balance:  d.Balance.StringFixed(2),
			APR:      d.APR.String(),
			Minimum:  d.MinimumPayment.StringFixed(2),
			NextDate: next,
		})
	}
	for _, f := range req.Fundings {
		in.Fundings = append(in.Fundings, hashFunding{
			Date:    f.Date.Format("2006-01-02"),
			Amount:  f.Amount.StringFixed(2),
			Applied: f.Applied,
		})
	}

	h, err := hashstructure.Hash(in, hashstructure.FormatV2, &hashstructure.HashOptions{SlicesAsSets: true})
	if err != nil {
		return "", fmt.Errorf("hashing plan input: %w", err)
	}
	return fmt.Sprintf("%016x", h), nil
}

// Recorded is a run written to history, plus the previous run with the same
// input when there was one.
type Recorded struct {
	Run      model.Run
	Previous *model.Run
}

// Unchanged reports whether an identical input was already recorded.
func (r Recorded) Unchanged() bool {
	return r.Previous != nil
}

// Record writes a result to the history.
func Record(h *store.History, res *Result, source string) (Recorded, error) {
	hash, err := InputHash(res.Request, res.Anchor.Format("2006-01-02"))
	if err != nil {
		return Recorded{}, err
	}

	var out Recorded
	prev, ok, err := h.LatestByHash(hash)
	if err != nil {
		return out, fmt.Errorf("looking up previous run: %w", err)
	}
	if ok {
		out.Previous = &prev
	}

	run := model.NewRun(res.Summary)
	run.InputHash = hash
	run.Source = source
	run.RequestedStrategy = res.Ordering.Requested
	run.FellBack = res.Ordering.FellBack

	out.Run, err = h.SaveRun(run)
	if err != nil {
		return out, fmt.Errorf("saving run: %w", err)
	}
	return out, nil
}
