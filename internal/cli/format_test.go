package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/model"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"7.5", "7.50"},
		{"43.845", "43.85"},
		{"1234567.5", "1,234,567.50"},
		{"-1200.1", "-1,200.10"},
		{"999.999", "1,000.00"},
	}
	for _, tt := range tests {
		got := FormatMoney(decimal.RequireFromString(tt.in))
		if got != tt.want {
			t.Errorf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMonths(t *testing.T) {
	tests := []struct {
		in   model.Months
		want string
	}{
		{model.Never, "never"},
		{0, "0 mo"},
		{7, "7 mo"},
		{12, "1y"},
		{27, "2y 3m"},
	}
	for _, tt := range tests {
		if got := FormatMonths(tt.in); got != tt.want {
			t.Errorf("FormatMonths(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(time.Time{}); got != "never" {
		t.Fatalf("FormatDate(zero) = %q", got)
	}
	if got := FormatDate(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)); got != "Mar 2026" {
		t.Fatalf("FormatDate = %q", got)
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(decimal.RequireFromString("1520.4")); got != "+1,520.40" {
		t.Fatalf("FormatDelta = %q", got)
	}
	if got := FormatDelta(decimal.RequireFromString("-3")); got != "-3.00" {
		t.Fatalf("FormatDelta = %q", got)
	}
}

func TestWriteLedgerCSV(t *testing.T) {
	d := decimal.RequireFromString
	s := model.Schedule{
		DebtID: "visa",
		Entries: []model.LedgerEntry{{
			Month: 1, Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			StartBalance: d("100"), Interest: d("1"), Payment: d("101"), Principal: d("100"),
			Minimum: d("30"), Extra: d("71"), EndBalance: decimal.Zero, Final: true,
		}},
	}

	var buf bytes.Buffer
	if err := WriteLedgerCSV(&buf, []model.Schedule{s}); err != nil {
		t.Fatalf("WriteLedgerCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	want := "visa,1,2025-01-15,100.00,1.00,101.00,100.00,30.00,71.00,0.00,0.00,0.00,true"
	if lines[1] != want {
		t.Fatalf("row = %q\nwant  %q", lines[1], want)
	}
}

func TestSummaryTableMarksNever(t *testing.T) {
	sum := model.PlanSummary{
		Months: model.Never,
		Debts: []model.DebtSummary{
			{DebtID: "a", Months: 5, PayoffDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)},
			{DebtID: "b", Months: model.Never, Outcome: model.NonAmortizing},
		},
	}
	tbl := SummaryTable(sum, map[string]string{"a": "Card A"})
	if tbl.Rows[0][0] != "Card A" || tbl.Rows[1][0] != "b" {
		t.Fatalf("labels = %q, %q", tbl.Rows[0][0], tbl.Rows[1][0])
	}
	if tbl.Rows[1][2] != "never" || tbl.Rows[1][5] != "non-amortizing" {
		t.Fatalf("never row = %v", tbl.Rows[1])
	}
	last := tbl.Rows[len(tbl.Rows)-1]
	if last[1] != "never" || last[2] != "never" {
		t.Fatalf("overall row = %v", last)
	}

	out := RenderTable(tbl)
	if !strings.Contains(out, "Card A") || !strings.Contains(out, "All debts") {
		t.Fatalf("rendered table missing rows:\n%s", out)
	}
}

func TestLedgerTableFooterTotals(t *testing.T) {
	d := decimal.RequireFromString
	s := model.Schedule{
		DebtID: "visa",
		Entries: []model.LedgerEntry{
			{Month: 1, Payment: d("60"), Interest: d("2"), Principal: d("58"), Extra: d("10"), EndBalance: d("42")},
			{Month: 2, Payment: d("42.70"), Interest: d("0.70"), Principal: d("42"), OneTime: d("5"), Redistributed: d("1.50"), Final: true},
		},
	}

	tbl := LedgerTable("Visa", s)
	want := []string{"", "Total", "102.70", "2.70", "100.00", "15.00", "1.50", ""}
	if strings.Join(tbl.Footer, "|") != strings.Join(want, "|") {
		t.Fatalf("footer = %q\nwant     %q", tbl.Footer, want)
	}
	if out := RenderTable(tbl); !strings.Contains(out, "Total") || !strings.Contains(out, "102.70") {
		t.Fatalf("footer not rendered:\n%s", out)
	}

	if empty := LedgerTable("none", model.Schedule{}); empty.Footer != nil {
		t.Fatalf("empty ledger footer = %q", empty.Footer)
	}
}

func TestRenderTableAlignsWideRunes(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Debt", "Amount"},
		Rows:    [][]string{{"Card · A", "1.00"}, {"---"}, {"Loan", "20.00"}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	width := len([]rune(lines[0]))
	for i, l := range lines {
		if n := len([]rune(l)); n != width {
			t.Fatalf("line %d is %d runes wide, want %d:\n%s", i, n, width, out)
		}
	}
}
