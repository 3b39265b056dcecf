package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/model"
)

// ErrInvalidOrdering is returned when a Plan's ordering is not a permutation
// of its debt IDs.
var ErrInvalidOrdering = errors.New("ordering does not match debts")

// Plan is the complete input of one allocation run.
type Plan struct {
	Debts         []model.Debt
	Ordering      Ordering
	MonthlyBudget decimal.Decimal
	Fundings      []model.OneTimeFunding
	Anchor        time.Time // date of the first payment
	Horizon       int       // max simulated months; <= 0 means DefaultHorizon
}

// debtState is the working copy of one debt during a run.
type debtState struct {
	debt    model.Debt
	balance decimal.Decimal
	open    bool
	covered bool // last payment exceeded interest
	outcome model.Outcome
	entries []model.LedgerEntry

	// per-month scratch
	cur  model.LedgerEntry
	due  decimal.Decimal
	paid decimal.Decimal
}

func (s *debtState) room() decimal.Decimal {
	return s.due.Sub(s.paid)
}

// MinimumTotal sums the minimum payments of debts that still carry a balance.
func MinimumTotal(debts []model.Debt) decimal.Decimal {
	total := decimal.Zero
	for _, d := range debts {
		if d.Balance.IsPositive() && d.MinimumPayment.IsPositive() {
			total = total.Add(d.MinimumPayment)
		}
	}
	return total
}

// Allocate runs the month-by-month multi-debt simulation.
//
// Each month every open debt accrues interest, gets its minimum payment, and
// the rest of the budget goes to the highest-priority open debt, cascading
// down the order once a debt is covered. One-time fundings for the month go
// the same way on top. A debt paid off in month k frees its minimum payment
// from month k+1 on; that money is reported as Redistributed.
//
// The budget must cover all minimums up front, otherwise an *UnfundableError
// is returned and nothing is simulated.
func Allocate(p Plan) (model.Allocation, error) {
	horizon := p.Horizon
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	budget := RoundMoney(p.MonthlyBudget)

	byID := make(map[string]model.Debt, len(p.Debts))
	for _, d := range p.Debts {
		if _, dup := byID[d.ID]; dup {
			return model.Allocation{}, fmt.Errorf("%w: %q", ErrDuplicateDebt, d.ID)
		}
		byID[d.ID] = d
	}
	if len(p.Ordering.IDs) != len(byID) {
		return model.Allocation{}, ErrInvalidOrdering
	}

	states := make([]*debtState, 0, len(p.Ordering.IDs))
	for _, id := range p.Ordering.IDs {
		d, ok := byID[id]
		if !ok {
			return model.Allocation{}, fmt.Errorf("%w: unknown id %q", ErrInvalidOrdering, id)
		}
		bal := RoundMoney(d.Balance)
		states = append(states, &debtState{
			debt:    d,
			balance: bal,
			open:    bal.IsPositive(),
			outcome: model.PaidOff,
		})
	}

	if minimums := MinimumTotal(p.Debts); budget.LessThan(minimums) {
		return model.Allocation{}, &UnfundableError{Budget: budget, Minimums: minimums}
	}

	lumps, lastLump := scheduleFundings(p.Fundings, p.Anchor, horizon)

	alloc := model.Allocation{
		Strategy:       p.Ordering.Strategy,
		Order:          append([]string(nil), p.Ordering.IDs...),
		MonthlyBudget:  budget,
		Anchor:         p.Anchor,
		Horizon:        horizon,
		UnspentFunding: decimal.Zero,
	}

	freed := decimal.Zero
	for month := 1; month <= horizon; month++ {
		open := openStates(states)
		if len(open) == 0 {
			break
		}
		date := AddMonths(p.Anchor, month-1)

		for _, s := range open {
			interest := MonthlyInterest(s.balance, s.debt.APR)
			s.due = s.balance.Add(interest)
			s.paid = decimal.Zero
			s.cur = model.LedgerEntry{
				Month:         month,
				Date:          date,
				StartBalance:  s.balance,
				Interest:      interest,
				Minimum:       decimal.Zero,
				Extra:         decimal.Zero,
				Redistributed: decimal.Zero,
				OneTime:       decimal.Zero,
			}
		}

		remaining := budget
		for _, s := range open {
			m := decimal.Min(s.debt.MinimumPayment, s.due)
			if m.IsNegative() {
				m = decimal.Zero
			}
			s.cur.Minimum = m
			s.paid = s.paid.Add(m)
			remaining = remaining.Sub(m)
		}

		freedPool := decimal.Min(freed, remaining)
		for _, s := range open {
			if !remaining.IsPositive() {
				break
			}
			room := s.room()
			if !room.IsPositive() {
				continue
			}
			pay := decimal.Min(room, remaining)
			fromFreed := decimal.Min(pay, freedPool)
			freedPool = freedPool.Sub(fromFreed)
			s.cur.Redistributed = s.cur.Redistributed.Add(fromFreed)
			s.cur.Extra = s.cur.Extra.Add(pay.Sub(fromFreed))
			s.paid = s.paid.Add(pay)
			remaining = remaining.Sub(pay)
		}

		if lump, ok := lumps[month]; ok {
			for _, s := range open {
				if !lump.IsPositive() {
					break
				}
				room := s.room()
				if !room.IsPositive() {
					continue
				}
				pay := decimal.Min(room, lump)
				s.cur.OneTime = s.cur.OneTime.Add(pay)
				s.paid = s.paid.Add(pay)
				lump = lump.Sub(pay)
			}
			alloc.UnspentFunding = alloc.UnspentFunding.Add(lump)
		}

		progress := false
		for _, s := range open {
			end := s.due.Sub(s.paid)
			s.cur.Payment = s.paid
			s.cur.Principal = s.paid.Sub(s.cur.Interest)
			s.cur.EndBalance = end
			s.cur.Final = end.IsZero()
			s.covered = s.paid.GreaterThan(s.cur.Interest)
			s.entries = append(s.entries, s.cur)
			s.balance = end

			if s.covered {
				progress = true
			}
			if end.IsZero() {
				s.open = false
				s.outcome = model.PaidOff
				freed = freed.Add(s.debt.MinimumPayment)
				progress = true
			}
		}

		// Nothing shrank and the split can only repeat: stop instead of
		// spinning to the horizon.
		if !progress && month >= lastLump {
			for _, s := range open {
				s.open = false
				s.outcome = model.NonAmortizing
			}
			break
		}
	}

	for _, s := range states {
		if !s.open {
			continue
		}
		if s.covered {
			s.outcome = model.HorizonExceeded
		} else {
			s.outcome = model.NonAmortizing
		}
	}

	alloc.Schedules = make([]model.Schedule, len(states))
	for i, s := range states {
		alloc.Schedules[i] = model.Schedule{
			DebtID:  s.debt.ID,
			Outcome: s.outcome,
			Entries: s.entries,
		}
	}
	alloc.Events = DeriveRedistributions(alloc.Order, alloc.Schedules, byID)
	return alloc, nil
}

func openStates(states []*debtState) []*debtState {
	var open []*debtState
	for _, s := range states {
		if s.open {
			open = append(open, s)
		}
	}
	return open
}

// scheduleFundings buckets unapplied fundings by simulation month. Fundings
// dated before the anchor month or past the horizon are dropped. The second
// return value is the last month that receives a funding.
func scheduleFundings(fundings []model.OneTimeFunding, anchor time.Time, horizon int) (map[int]decimal.Decimal, int) {
	lumps := make(map[int]decimal.Decimal)
	last := 0
	for _, f := range fundings {
		if f.Applied || !f.Amount.IsPositive() {
			continue
		}
		idx := monthIndexOf(anchor, f.Date)
		if idx < 1 || idx > horizon {
			continue
		}
		lumps[idx] = lumps[idx].Add(RoundMoney(f.Amount))
		if idx > last {
			last = idx
		}
	}
	return lumps, last
}

// DeriveRedistributions reconstructs redistribution events from ledgers: when
// a debt's last entry is month k, its minimum payment passes in month k+1 to
// the highest-priority debt whose k+1 entry shows Redistributed money. A debt
// cleared by its own minimum in k+1 has no room and is skipped. No event is
// recorded when nothing received the freed minimum.
func DeriveRedistributions(order []string, schedules []model.Schedule, debts map[string]model.Debt) []model.RedistributionEvent {
	byID := make(map[string]model.Schedule, len(schedules))
	for _, s := range schedules {
		byID[s.DebtID] = s
	}

	var events []model.RedistributionEvent
	for _, id := range order {
		s := byID[id]
		last, ok := s.Last()
		if !ok || !last.Final {
			continue
		}
		amount := debts[id].MinimumPayment
		if !amount.IsPositive() {
			continue
		}
		next := last.Month + 1
		for _, to := range order {
			if e, ok := byID[to].EntryAt(next); ok && e.Redistributed.IsPositive() {
				events = append(events, model.RedistributionEvent{
					From:   id,
					To:     to,
					Amount: amount,
					Month:  next,
				})
				break
			}
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Month < events[j].Month
	})
	return events
}
