package engine

import (
	"time"

	"github.com/theirongolddev/payoff/internal/model"
)

// AddMonths moves t forward n calendar months, clamping the day to the end of
// the target month (Jan 31 + 1 = Feb 28/29) instead of overflowing like
// time.AddDate.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// AnchorDate returns the latest NextPaymentDate among debts, or fallback when
// none is set. Callers pass their own notion of "now" as fallback.
func AnchorDate(debts []model.Debt, fallback time.Time) time.Time {
	var anchor time.Time
	for _, d := range debts {
		if d.NextPaymentDate.After(anchor) {
			anchor = d.NextPaymentDate
		}
	}
	if anchor.IsZero() {
		return fallback
	}
	return anchor
}

// monthIndexOf returns the 1-based simulation month whose payment date falls
// in the same calendar month as t, or 0 when t is before the anchor month.
func monthIndexOf(anchor, t time.Time) int {
	diff := (t.Year()-anchor.Year())*12 + int(t.Month()) - int(anchor.Month())
	if diff < 0 {
		return 0
	}
	return diff + 1
}
