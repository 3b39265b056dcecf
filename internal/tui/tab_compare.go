package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/tui/components"
	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderCompareTab(cw int) string {
	var b strings.Builder
	b.WriteString(components.ContentCard("Strategies vs minimum payments", a.renderComparison(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Rollovers · "+a.result.Summary.Strategy, a.renderEvents(), cw))
	return b.String()
}

func (a App) renderComparison() string {
	t := theme.Active
	c := a.comparison
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	bestStyle := lipgloss.NewStyle().Foreground(t.Good).Background(t.Surface).Bold(true)

	if c == nil {
		return mutedStyle.Render("Comparison unavailable for this budget.")
	}

	const layout = "%-11s %9s %9s %12s %12s %7s %9s %9s %9s %7s"
	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf(layout,
		"Strategy", "Months", "Debt-free", "Interest", "Saved", "Faster",
		"Interest", "Duration", "Behavior", "Score")))

	base := c.Baseline.Summary
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf(layout,
		"minimums", cli.FormatMonths(base.Months), cli.FormatDate(base.PayoffDate),
		cli.FormatMoney(base.TotalInterest), "", "", "", "", "", "")))

	for i, run := range c.Runs {
		sum := run.Result.Summary
		s := run.Score

		saved, faster := cli.FormatDelta(s.InterestSaved), fmt.Sprintf("%d mo", s.MonthsSaved)
		if s.BaselineNever {
			saved, faster = "n/a", "n/a"
		}

		name := sum.Strategy
		style := rowStyle
		if i == c.Best {
			name = "◆ " + name
			style = bestStyle
		}

		b.WriteString("\n")
		b.WriteString(style.Render(fmt.Sprintf(layout,
			name,
			cli.FormatMonths(sum.Months),
			cli.FormatDate(sum.PayoffDate),
			cli.FormatMoney(sum.TotalInterest),
			saved,
			faster,
			cli.FormatScore(s.Interest, engine.InterestWeight),
			cli.FormatScore(s.Duration, engine.DurationWeight),
			cli.FormatScore(s.Behavior, engine.BehaviorWeight),
			fmt.Sprintf("%.0f", s.Total),
		)))
	}

	if c.Baseline.Summary.Months.IsNever() {
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render("Paying only the minimums never clears every debt, so savings are not comparable."))
	}
	return b.String()
}

func (a App) renderEvents() string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)

	events := a.result.Allocation.Events
	if len(events) == 0 {
		return mutedStyle.Render("No minimum payments are freed up in this plan.")
	}

	labels := a.result.Labels()
	anchor := a.result.Allocation.Anchor
	rows := make([]string, len(events))
	for i, ev := range events {
		rows[i] = rowStyle.Render(fmt.Sprintf("%-9s ", cli.FormatDate(engine.AddMonths(anchor, ev.Month-1)))) +
			accentStyle.Render(cli.FormatMoney(ev.Amount)) +
			rowStyle.Render(fmt.Sprintf("/mo from %s to %s", labels[ev.From], labels[ev.To]))
	}
	return strings.Join(rows, "\n")
}

// scoreSummary is the one-line score shown in the settings info card.
func scoreSummary(s model.Score) string {
	return fmt.Sprintf("%.0f / 100 (interest %.0f, duration %.0f, behavior %.0f)",
		s.Total, s.Interest, s.Duration, s.Behavior)
}
