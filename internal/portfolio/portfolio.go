// Package portfolio loads and validates the debts file that feeds a plan.
package portfolio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/model"
)

// Portfolio is the user's debts plus the optional plan settings stored with them.
type Portfolio struct {
	Strategy      string                 `json:"strategy,omitempty" toml:"strategy,omitempty"`
	MonthlyBudget *decimal.Decimal       `json:"monthly_budget,omitempty" toml:"monthly_budget,omitempty"`
	Anchor        time.Time              `json:"anchor,omitempty" toml:"anchor,omitempty"`
	Debts         []model.Debt           `json:"debts" toml:"debt"`
	Fundings      []model.OneTimeFunding `json:"fundings,omitempty" toml:"funding,omitempty"`

	// payment history feeding the behavior score
	OnTimePayments int `json:"on_time_payments,omitempty" toml:"on_time_payments,omitempty"`
	TotalPayments  int `json:"total_payments,omitempty" toml:"total_payments,omitempty"`
}

// Format is a portfolio file encoding.
type Format int

const (
	TOML Format = iota
	JSON
)

// FormatOf picks the encoding from a file extension. Anything but .json is TOML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return TOML
}

// ErrNotFound is returned by Load when the portfolio file does not exist.
var ErrNotFound = errors.New("portfolio file not found")

// Load reads, normalizes and validates a portfolio file.
func Load(path string) (Portfolio, error) {
	f, err := os.Open(path) //nolint:gosec // user-chosen portfolio path
	if err != nil {
		if os.IsNotExist(err) {
			return Portfolio{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Portfolio{}, fmt.Errorf("opening portfolio: %w", err)
	}
	defer f.Close()

	p, err := Decode(f, FormatOf(path))
	if err != nil {
		return Portfolio{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Decode parses a portfolio, rounds its amounts to cents and validates it.
func Decode(r io.Reader, format Format) (Portfolio, error) {
	var p Portfolio
	switch format {
	case JSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return p, fmt.Errorf("parsing portfolio: %w", err)
		}
	default:
		if _, err := toml.NewDecoder(r).Decode(&p); err != nil {
			return p, fmt.Errorf("parsing portfolio: %w", err)
		}
	}

	p.Normalize()
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Save writes the portfolio in the format implied by the path.
func Save(path string, p Portfolio) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating portfolio dir: %w", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, p, FormatOf(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing portfolio: %w", err)
	}
	return nil
}

// Encode writes p to w.
func Encode(w io.Writer, p Portfolio, format Format) error {
	if format == JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	return toml.NewEncoder(w).Encode(p)
}

// Normalize trims identifiers and rounds every amount to cents.
func (p *Portfolio) Normalize() {
	p.Strategy = strings.TrimSpace(p.Strategy)
	if p.MonthlyBudget != nil {
		b := p.MonthlyBudget.Round(2)
		p.MonthlyBudget = &b
	}
	for i := range p.Debts {
		d := &p.Debts[i]
		d.ID = strings.TrimSpace(d.ID)
		d.Name = strings.TrimSpace(d.Name)
		d.Category = strings.TrimSpace(d.Category)
		d.Balance = d.Balance.Round(2)
		d.MinimumPayment = d.MinimumPayment.Round(2)
	}
	for i := range p.Fundings {
		p.Fundings[i].Amount = p.Fundings[i].Amount.Round(2)
	}
}

// Debt returns the debt with the given ID.
func (p Portfolio) Debt(id string) (model.Debt, bool) {
	for _, d := range p.Debts {
		if d.ID == id {
			return d, true
		}
	}
	return model.Debt{}, false
}

// TotalBalance sums every debt's balance.
func (p Portfolio) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, d := range p.Debts {
		total = total.Add(d.Balance)
	}
	return total
}

// Clone returns a deep copy of the slices so concurrent runs cannot share them.
func (p Portfolio) Clone() Portfolio {
	c := p
	c.Debts = append([]model.Debt(nil), p.Debts...)
	c.Fundings = append([]model.OneTimeFunding(nil), p.Fundings...)
	if p.MonthlyBudget != nil {
		b := *p.MonthlyBudget
		c.MonthlyBudget = &b
	}
	return c
}
