// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/model"
)

// FormatMoney formats an amount with comma grouping and two decimals.
// No currency symbol is added; e.g. 1234567.5 -> "1,234,567.50".
func FormatMoney(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()
	return fmt.Sprintf("%s%s.%02d", sign, humanize.Comma(whole.IntPart()), cents)
}

// FormatMoneyShort drops the cents for amounts of 1,000 and above.
// e.g. 15234.10 -> "15.2K", 980.4 -> "980.40"
func FormatMoneyShort(d decimal.Decimal) string {
	f := d.Abs().InexactFloat64()
	switch {
	case f >= 1_000_000:
		return fmt.Sprintf("%.1fM", d.InexactFloat64()/1_000_000)
	case f >= 1_000:
		return fmt.Sprintf("%.1fK", d.InexactFloat64()/1_000)
	default:
		return FormatMoney(d)
	}
}

// FormatRate formats an APR percentage, e.g. 19.99 -> "19.99%".
func FormatRate(apr decimal.Decimal) string {
	return apr.StringFixed(2) + "%"
}

// FormatMonths renders a payoff duration; model.Never renders as "never".
// e.g. 7 -> "7 mo", 27 -> "2y 3m"
func FormatMonths(m model.Months) string {
	if m.IsNever() {
		return "never"
	}
	n := int(m)
	if n < 12 {
		return strconv.Itoa(n) + " mo"
	}
	years, rest := n/12, n%12
	if rest == 0 {
		return fmt.Sprintf("%dy", years)
	}
	return fmt.Sprintf("%dy %dm", years, rest)
}

// FormatDate formats a payment date; the zero time renders as "never".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("Jan 2006")
}

// FormatDay formats a ledger date.
func FormatDay(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatNumber adds comma separators to an integer.
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatScore formats a score component against its weight, e.g. "32.5/50".
func FormatScore(v, weight float64) string {
	return fmt.Sprintf("%.1f/%.0f", v, weight)
}

// FormatDelta formats a saving with sign. Positive means money kept.
func FormatDelta(saved decimal.Decimal) string {
	if saved.IsNegative() {
		return "-" + FormatMoney(saved.Neg())
	}
	return "+" + FormatMoney(saved)
}

// FormatAgo renders a past time relative to now, e.g. "3 hours ago".
func FormatAgo(t time.Time) string {
	return humanize.Time(t)
}
