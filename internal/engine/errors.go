package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrUnfundablePlan is returned when the monthly budget cannot cover every
// minimum payment. No ledger is produced.
var ErrUnfundablePlan = errors.New("monthly budget does not cover minimum payments")

// UnfundableError carries the numbers behind ErrUnfundablePlan.
type UnfundableError struct {
	Budget   decimal.Decimal
	Minimums decimal.Decimal
}

func (e *UnfundableError) Error() string {
	return fmt.Sprintf("%s: budget %s < minimums %s",
		ErrUnfundablePlan, e.Budget.StringFixed(MoneyPlaces), e.Minimums.StringFixed(MoneyPlaces))
}

// Unwrap lets errors.Is match ErrUnfundablePlan.
func (e *UnfundableError) Unwrap() error {
	return ErrUnfundablePlan
}

// Shortfall is how much the budget must grow to fund the plan.
func (e *UnfundableError) Shortfall() decimal.Decimal {
	return e.Minimums.Sub(e.Budget)
}

// ErrDuplicateDebt is returned when two debts share an ID.
var ErrDuplicateDebt = errors.New("duplicate debt id")
