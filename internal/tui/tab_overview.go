package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/pipeline"
	"github.com/theirongolddev/payoff/internal/tui/components"
	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// progressWindow is how far ahead the per-debt progress bars look.
const progressWindow = 12

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	res := a.result
	sum := res.Summary
	var b strings.Builder

	balance := decimal.Zero
	for _, d := range res.Request.Debts {
		balance = balance.Add(d.Balance)
	}

	debtFree := components.Metric{Label: "Debt-free", Value: cli.FormatDate(sum.PayoffDate), Note: cli.FormatMonths(sum.Months)}
	if sum.Months.IsNever() {
		debtFree.Value = "never"
		debtFree.Note = fmt.Sprintf("%d debt(s) never clear", len(sum.NeverDebts))
		debtFree.Color = t.Bad
	}

	interest := components.Metric{Label: "Total interest", Value: cli.FormatMoney(sum.TotalInterest)}
	if a.comparison != nil {
		if s := res.Score(a.comparison.Baseline.Summary); !s.BaselineNever {
			interest.Note = "saves " + cli.FormatMoney(s.InterestSaved) + " vs minimums"
		}
	}

	budgetNote := "minimums " + cli.FormatMoney(engine.MinimumTotal(res.Request.Debts))
	if a.budget != nil {
		budgetNote = "what-if · " + budgetNote
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Balance", Value: cli.FormatMoney(balance), Note: fmt.Sprintf("%d debts", len(res.Request.Debts))},
		{Label: "Monthly budget", Value: cli.FormatMoney(sum.MonthlyBudget), Note: budgetNote},
		debtFree,
		interest,
	}, cw))
	b.WriteString("\n")

	values, labels := balanceTrajectory(res)
	chartH := 8
	if a.isCompactLayout() {
		chartH = 6
	}
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Remaining balance · %s", sum.Strategy),
		components.BalanceChart(values, labels, t.Accent, components.CardInnerWidth(cw), chartH),
		cw,
	))
	b.WriteString("\n")

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Next 12 months", a.renderDebtProgress(cw), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Notes", a.renderPlanNotes(), cw))
		return b.String()
	}

	halves := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Next 12 months", a.renderDebtProgress(halves[0]), halves[0]),
		components.ContentCard("Notes", a.renderPlanNotes(), halves[1]),
	}))
	return b.String()
}

func (a App) renderDebtProgress(outerW int) string {
	res := a.result
	labels := res.Labels()
	innerW := components.CardInnerWidth(outerW)

	labelW := 14
	noteW := 10
	barW := max(innerW-labelW-noteW-8, 8)

	byID := make(map[string]model.Debt, len(res.Request.Debts))
	for _, d := range res.Request.Debts {
		byID[d.ID] = d
	}

	var rows []string
	for _, s := range res.Allocation.Schedules {
		ds, _ := res.Summary.Debt(s.DebtID)
		note := cli.FormatDate(ds.PayoffDate)
		if ds.Months.IsNever() {
			note = "never"
		}
		pct := retiredShare(s, byID[s.DebtID].Balance, progressWindow)
		rows = append(rows, components.PayoffBar(labels[s.DebtID], pct, note, labelW, barW))
	}
	return strings.Join(rows, "\n")
}

func (a App) renderPlanNotes() string {
	t := theme.Active
	res := a.result
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface)

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s\n", labelStyle.Render("Strategy:         "), valueStyle.Render(res.Summary.Strategy))
	fmt.Fprintf(&b, "%s%s\n", labelStyle.Render("First payment:    "), valueStyle.Render(cli.FormatDay(res.Anchor)))
	fmt.Fprintf(&b, "%s%s\n", labelStyle.Render("Total paid:       "), valueStyle.Render(cli.FormatMoney(res.Summary.TotalPaid)))
	fmt.Fprintf(&b, "%s%s", labelStyle.Render("Rollovers:        "), valueStyle.Render(fmt.Sprintf("%d", len(res.Allocation.Events))))

	for _, w := range res.Warnings() {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render("! " + w))
	}
	return b.String()
}

// balanceTrajectory returns the plan's remaining balance per month as chart
// values, labelling the first month and every January.
func balanceTrajectory(res *pipeline.Result) ([]float64, []string) {
	traj := res.Trajectory()
	values := make([]float64, len(traj))
	labels := make([]string, len(traj))
	for m, bal := range traj {
		values[m] = bal.InexactFloat64()
		if m == 0 {
			labels[m] = res.Allocation.Anchor.Format("Jan 2006")
			continue
		}
		if date := engine.AddMonths(res.Allocation.Anchor, m-1); date.Month() == time.January {
			labels[m] = date.Format("2006")
		}
	}
	return values, labels
}

// retiredShare is the fraction of a debt's starting balance paid off by
// month m.
func retiredShare(s model.Schedule, start decimal.Decimal, m int) float64 {
	if !start.IsPositive() {
		return 1
	}
	remaining := s.BalanceAfter(start, m)
	share := decimal.NewFromInt(1).Sub(remaining.Div(start)).InexactFloat64()
	return min(max(share, 0), 1)
}
