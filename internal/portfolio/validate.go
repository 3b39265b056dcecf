package portfolio

import (
	"fmt"
	"strings"
)

// ValidationError lists every problem found in a portfolio, not just the first.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid portfolio: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid portfolio (%d problems):\n  - %s",
		len(e.Problems), strings.Join(e.Problems, "\n  - "))
}

func (e *ValidationError) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Validate checks structural rules. A minimum payment below the monthly
// interest is allowed: the engine reports it as a never-paying debt. APRs
// above 100% are valid (payday and title loans).
func (p Portfolio) Validate() error {
	verr := &ValidationError{}

	if len(p.Debts) == 0 {
		verr.add("no debts")
	}

	seen := make(map[string]int, len(p.Debts))
	for i, d := range p.Debts {
		label := fmt.Sprintf("debt #%d", i+1)
		if d.ID != "" {
			label = fmt.Sprintf("debt %q", d.ID)
		}

		switch {
		case d.ID == "":
			verr.add("%s: missing id", label)
		case seen[d.ID] > 0:
			verr.add("%s: duplicate id (also debt #%d)", label, seen[d.ID])
		default:
			seen[d.ID] = i + 1
		}

		if d.Balance.IsNegative() {
			verr.add("%s: negative balance %s", label, d.Balance)
		}
		if d.APR.IsNegative() {
			verr.add("%s: negative apr %s", label, d.APR)
		}
		if d.MinimumPayment.IsNegative() {
			verr.add("%s: negative minimum payment %s", label, d.MinimumPayment)
		}
	}

	for i, f := range p.Fundings {
		label := fmt.Sprintf("funding #%d", i+1)
		if f.Date.IsZero() {
			verr.add("%s: missing date", label)
		}
		if !f.Amount.IsPositive() {
			verr.add("%s: amount must be positive, got %s", label, f.Amount)
		}
	}

	if p.MonthlyBudget != nil && p.MonthlyBudget.IsNegative() {
		verr.add("negative monthly budget %s", p.MonthlyBudget)
	}
	if p.OnTimePayments < 0 || p.TotalPayments < 0 || p.OnTimePayments > p.TotalPayments {
		verr.add("payment history: on_time_payments %d of total_payments %d", p.OnTimePayments, p.TotalPayments)
	}

	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}
