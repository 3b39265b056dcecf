// Package model defines the value types shared by the payoff engine and its consumers.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Debt is one liability as entered by the user. The engine never mutates it;
// simulations work on their own copy of the balance.
type Debt struct {
	ID              string          `json:"id" toml:"id"`
	Name            string          `json:"name,omitempty" toml:"name,omitempty"`
	Balance         decimal.Decimal `json:"balance" toml:"balance"`
	APR             decimal.Decimal `json:"apr" toml:"apr"` // annual percentage, 19.99 = 19.99%
	MinimumPayment  decimal.Decimal `json:"minimum_payment" toml:"minimum_payment"`
	NextPaymentDate time.Time       `json:"next_payment_date,omitempty" toml:"next_payment_date,omitempty"`
	Category        string          `json:"category,omitempty" toml:"category,omitempty"`
}

// Label returns the display name, falling back to the ID.
func (d Debt) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// OneTimeFunding is a lump sum applied once, in the calendar month of Date.
type OneTimeFunding struct {
	Date    time.Time       `json:"date" toml:"date"`
	Amount  decimal.Decimal `json:"amount" toml:"amount"`
	Applied bool            `json:"applied,omitempty" toml:"applied,omitempty"`
	Note    string          `json:"note,omitempty" toml:"note,omitempty"`
}

// Strategy selects how surplus money is prioritized across debts.
type Strategy int

const (
	// Avalanche pays the highest APR first.
	Avalanche Strategy = iota
	// Snowball pays the smallest balance first.
	Snowball
	// Custom is accepted as an identifier but currently ordered like Avalanche.
	Custom
)

// Strategies lists the strategies a user can pick.
var Strategies = []Strategy{Avalanche, Snowball}

func (s Strategy) String() string {
	switch s {
	case Snowball:
		return "snowball"
	case Custom:
		return "custom"
	default:
		return "avalanche"
	}
}

// ParseStrategy maps an identifier to a Strategy. The boolean is false when
// the identifier is not recognized; the returned Strategy is then Avalanche.
func ParseStrategy(id string) (Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "avalanche":
		return Avalanche, true
	case "snowball":
		return Snowball, true
	case "custom":
		return Custom, true
	default:
		return Avalanche, false
	}
}

// Less reports whether a is paid before b under s. It is a strict total order
// as long as debt IDs are unique.
func (s Strategy) Less(a, b Debt) bool {
	switch s {
	case Snowball:
		if c := a.Balance.Cmp(b.Balance); c != 0 {
			return c < 0
		}
		if c := a.APR.Cmp(b.APR); c != 0 {
			return c > 0
		}
	default:
		if c := a.APR.Cmp(b.APR); c != 0 {
			return c > 0
		}
		if c := a.Balance.Cmp(b.Balance); c != 0 {
			return c < 0
		}
	}
	return a.ID < b.ID
}
