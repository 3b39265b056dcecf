package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/model"
)

// SummaryTable lays out per-debt payoff metrics followed by the overall row.
// labels maps debt IDs to display names; missing IDs print as-is.
func SummaryTable(sum model.PlanSummary, labels map[string]string) Table {
	t := Table{
		Headers: []string{"Debt", "Payoff", "Months", "Interest", "Total Paid", "Outcome"},
	}
	for _, d := range sum.Debts {
		name := d.DebtID
		if l, ok := labels[d.DebtID]; ok && l != "" {
			name = l
		}
		t.Rows = append(t.Rows, []string{
			name,
			FormatDate(d.PayoffDate),
			FormatMonths(d.Months),
			FormatMoney(d.TotalInterest),
			FormatMoney(d.TotalPaid),
			d.Outcome.String(),
		})
	}
	t.Rows = append(t.Rows,
		[]string{"---"},
		[]string{
			"All debts",
			FormatDate(sum.PayoffDate),
			FormatMonths(sum.Months),
			FormatMoney(sum.TotalInterest),
			FormatMoney(sum.TotalPaid),
			"",
		},
	)
	return t
}

// LedgerTable lays out one debt's month-by-month ledger. Payments that
// include a one-time contribution are marked with "*".
func LedgerTable(title string, s model.Schedule) Table {
	t := Table{
		Title:   title,
		Headers: []string{"#", "Date", "Payment", "Interest", "Principal", "Extra", "Freed", "Balance"},
		Left:    2,
	}
	var paid, interest, principal, extra, freed decimal.Decimal
	for _, e := range s.Entries {
		paid = paid.Add(e.Payment)
		interest = interest.Add(e.Interest)
		principal = principal.Add(e.Principal)
		extra = extra.Add(e.Extra.Add(e.OneTime))
		freed = freed.Add(e.Redistributed)

		pay := FormatMoney(e.Payment)
		if e.HasOneTime() {
			pay = "*" + pay
		}
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(e.Month),
			FormatDay(e.Date),
			pay,
			FormatMoney(e.Interest),
			FormatMoney(e.Principal),
			FormatMoney(e.Extra.Add(e.OneTime)),
			FormatMoney(e.Redistributed),
			FormatMoney(e.EndBalance),
		})
	}
	if len(s.Entries) > 0 {
		t.Footer = []string{"", "Total", FormatMoney(paid), FormatMoney(interest),
			FormatMoney(principal), FormatMoney(extra), FormatMoney(freed), ""}
	}
	return t
}

// EventsTable lists redistribution events.
func EventsTable(events []model.RedistributionEvent, labels map[string]string) Table {
	name := func(id string) string {
		if l, ok := labels[id]; ok && l != "" {
			return l
		}
		return id
	}
	t := Table{
		Title:   "Freed minimums",
		Headers: []string{"Month", "From", "To", "Amount"},
		Left:    3,
	}
	for _, ev := range events {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(ev.Month),
			name(ev.From),
			name(ev.To),
			FormatMoney(ev.Amount),
		})
	}
	return t
}

var ledgerCSVHeader = []string{
	"debt_id", "month", "date", "start_balance", "interest", "payment", "principal",
	"minimum", "extra", "redistributed", "one_time", "end_balance", "final",
}

// WriteLedgerCSV dumps ledgers as plain CSV with unformatted amounts.
func WriteLedgerCSV(w io.Writer, schedules []model.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerCSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, s := range schedules {
		for _, e := range s.Entries {
			rec := []string{
				s.DebtID,
				strconv.Itoa(e.Month),
				FormatDay(e.Date),
				e.StartBalance.StringFixed(2),
				e.Interest.StringFixed(2),
				e.Payment.StringFixed(2),
				e.Principal.StringFixed(2),
				e.Minimum.StringFixed(2),
				e.Extra.StringFixed(2),
				e.Redistributed.StringFixed(2),
				e.OneTime.StringFixed(2),
				e.EndBalance.StringFixed(2),
				strconv.FormatBool(e.Final),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("writing csv row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
