package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one debt's activity in one simulated month.
//
// Payment = Principal + Interest, and Payment = Minimum + Extra + Redistributed + OneTime.
// Principal is negative when the payment did not cover the interest.
type LedgerEntry struct {
	Month         int             `json:"month"` // 1-based
	Date          time.Time       `json:"date"`
	StartBalance  decimal.Decimal `json:"start_balance"`
	Interest      decimal.Decimal `json:"interest"`
	Payment       decimal.Decimal `json:"payment"`
	Principal     decimal.Decimal `json:"principal"`
	Minimum       decimal.Decimal `json:"minimum"`
	Extra         decimal.Decimal `json:"extra"`
	Redistributed decimal.Decimal `json:"redistributed"`
	OneTime       decimal.Decimal `json:"one_time"`
	EndBalance    decimal.Decimal `json:"end_balance"`
	Final         bool            `json:"final,omitempty"`
}

// HasOneTime reports whether a lump-sum contribution went into this payment.
func (e LedgerEntry) HasOneTime() bool {
	return e.OneTime.IsPositive()
}

// Outcome is how a debt's simulation ended.
type Outcome int

const (
	// PaidOff means the balance reached exactly zero.
	PaidOff Outcome = iota
	// NonAmortizing means the payment never exceeded the monthly interest.
	NonAmortizing
	// HorizonExceeded means the debt was still amortizing when the horizon ran out.
	HorizonExceeded
)

func (o Outcome) String() string {
	switch o {
	case NonAmortizing:
		return "non-amortizing"
	case HorizonExceeded:
		return "horizon-exceeded"
	default:
		return "paid-off"
	}
}

// Never reports whether the outcome is reported as "never pays off".
func (o Outcome) Never() bool {
	return o != PaidOff
}

// MarshalText renders the outcome by name in JSON and TOML.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses an outcome name written by MarshalText.
func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "paid-off":
		*o = PaidOff
	case "non-amortizing":
		*o = NonAmortizing
	case "horizon-exceeded":
		*o = HorizonExceeded
	default:
		return fmt.Errorf("unknown outcome %q", b)
	}
	return nil
}

// Schedule is the full ledger of a single debt.
type Schedule struct {
	DebtID  string        `json:"debt_id"`
	Outcome Outcome       `json:"outcome"`
	Entries []LedgerEntry `json:"entries"`
}

// Last returns the last ledger entry and false when the ledger is empty.
func (s Schedule) Last() (LedgerEntry, bool) {
	if len(s.Entries) == 0 {
		return LedgerEntry{}, false
	}
	return s.Entries[len(s.Entries)-1], true
}

// EntryAt returns the entry for a 1-based month index.
func (s Schedule) EntryAt(month int) (LedgerEntry, bool) {
	// Entries are contiguous from month 1.
	i := month - 1
	if i < 0 || i >= len(s.Entries) {
		return LedgerEntry{}, false
	}
	return s.Entries[i], true
}

// BalanceAfter is the debt's balance after a 1-based month, given its
// starting balance. Months past the end of the ledger keep the last balance,
// which is zero for a paid-off debt.
func (s Schedule) BalanceAfter(start decimal.Decimal, month int) decimal.Decimal {
	if e, ok := s.EntryAt(month); ok {
		return e.EndBalance
	}
	last, ok := s.Last()
	if !ok {
		if s.Outcome == PaidOff {
			return decimal.Zero
		}
		return start
	}
	return last.EndBalance
}

// RedistributionEvent records a paid-off debt's minimum payment moving to the
// next debt in priority order, starting in Month.
type RedistributionEvent struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Month  int             `json:"month"`
}

// Allocation is the output of one multi-debt simulation run.
type Allocation struct {
	Strategy       Strategy              `json:"-"`
	Order          []string              `json:"order"`
	MonthlyBudget  decimal.Decimal       `json:"monthly_budget"`
	Anchor         time.Time             `json:"anchor"`
	Horizon        int                   `json:"horizon"`
	Schedules      []Schedule            `json:"schedules"` // in priority order
	Events         []RedistributionEvent `json:"redistributions"`
	UnspentFunding decimal.Decimal       `json:"unspent_funding"`
}

// Schedule returns the schedule for a debt ID.
func (a Allocation) Schedule(id string) (Schedule, bool) {
	for _, s := range a.Schedules {
		if s.DebtID == id {
			return s, true
		}
	}
	return Schedule{}, false
}

// Months returns the number of simulated months across all debts.
func (a Allocation) Months() int {
	n := 0
	for _, s := range a.Schedules {
		if len(s.Entries) > n {
			n = len(s.Entries)
		}
	}
	return n
}

// PaymentsInMonth sums every debt's payment for a 1-based month.
func (a Allocation) PaymentsInMonth(month int) decimal.Decimal {
	total := decimal.Zero
	for _, s := range a.Schedules {
		if e, ok := s.EntryAt(month); ok {
			total = total.Add(e.Payment)
		}
	}
	return total
}
