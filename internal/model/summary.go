package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Months is a payoff duration. Never marks a debt that does not reach zero.
type Months int

// Never is the sentinel for "never pays off".
const Never Months = -1

// IsNever reports whether m is the Never sentinel.
func (m Months) IsNever() bool {
	return m < 0
}

func (m Months) String() string {
	if m.IsNever() {
		return "never"
	}
	return strconv.Itoa(int(m))
}

// MarshalJSON encodes Never as null so consumers cannot mistake it for a count.
func (m Months) MarshalJSON() ([]byte, error) {
	if m.IsNever() {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(m))), nil
}

// UnmarshalJSON reads null back as Never.
func (m *Months) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Never
		return nil
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("months: %w", err)
	}
	*m = Months(n)
	return nil
}

// DebtSummary aggregates one debt's ledger.
type DebtSummary struct {
	DebtID        string          `json:"debt_id"`
	Months        Months          `json:"months"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	PayoffDate    time.Time       `json:"payoff_date"` // zero when Months is Never
	Outcome       Outcome         `json:"outcome"`
	Ledger        []LedgerEntry   `json:"ledger,omitempty"`
}

// PlanSummary aggregates an allocation across all debts.
type PlanSummary struct {
	Strategy      string          `json:"strategy"`
	MonthlyBudget decimal.Decimal `json:"monthly_budget"`
	Debts         []DebtSummary   `json:"debts"`
	Months        Months          `json:"months"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	PayoffDate    time.Time       `json:"payoff_date"` // zero when Months is Never
	NeverDebts    []string        `json:"never_debts,omitempty"`
}

// DebtFree reports whether every debt reaches zero.
func (p PlanSummary) DebtFree() bool {
	return !p.Months.IsNever()
}

// Debt returns the summary for a debt ID.
func (p PlanSummary) Debt(id string) (DebtSummary, bool) {
	for _, d := range p.Debts {
		if d.DebtID == id {
			return d, true
		}
	}
	return DebtSummary{}, false
}

// Score rates an optimized plan against the minimum-payments baseline.
type Score struct {
	Interest float64 `json:"interest"` // 0-50
	Duration float64 `json:"duration"` // 0-30
	Behavior float64 `json:"behavior"` // 0-20
	Total    float64 `json:"total"`    // 0-100

	InterestSaved decimal.Decimal `json:"interest_saved"`
	MonthsSaved   int             `json:"months_saved"`
	BaselineNever bool            `json:"baseline_never,omitempty"`
}
