package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/tui/components"
	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// scheduleState tracks the schedule tab: which ledger is shown and its
// scroll position. Index len(schedules) is the all-debts monthly total.
type scheduleState struct {
	debt int
	view viewport.Model
}

// scheduleChrome is the card border, title, selector and header rows.
const scheduleChrome = 5

type ledgerColumn struct {
	title string
	width int
	value func(e model.LedgerEntry) string
	full  bool // hidden in the compact layout
}

var ledgerColumns = []ledgerColumn{
	{"Mo", 4, func(e model.LedgerEntry) string { return fmt.Sprintf("%d", e.Month) }, false},
	{"Date", 9, func(e model.LedgerEntry) string { return cli.FormatDate(e.Date) }, false},
	{"Payment", 11, func(e model.LedgerEntry) string { return cli.FormatMoney(e.Payment) }, false},
	{"Interest", 10, func(e model.LedgerEntry) string { return cli.FormatMoney(e.Interest) }, false},
	{"Principal", 11, func(e model.LedgerEntry) string { return cli.FormatMoney(e.Principal) }, false},
	{"Minimum", 10, func(e model.LedgerEntry) string { return cli.FormatMoney(e.Minimum) }, true},
	{"Extra", 10, func(e model.LedgerEntry) string { return cli.FormatMoney(e.Extra) }, false},
	{"Rollover", 10, func(e model.LedgerEntry) string { return cli.FormatMoney(e.Redistributed) }, true},
	{"One-time", 10, func(e model.LedgerEntry) string { return cli.FormatMoney(e.OneTime) }, true},
	{"Balance", 12, func(e model.LedgerEntry) string { return cli.FormatMoney(e.EndBalance) }, false},
}

func (a App) scheduleCount() int {
	if a.result == nil {
		return 0
	}
	return len(a.result.Allocation.Schedules) + 1
}

func (a App) scheduleViewHeight() int {
	return max(a.height-2-scheduleChrome, 3)
}

// syncSchedule sizes the viewport and refreshes its content. It runs after
// every resize, plan and debt switch.
func (a *App) syncSchedule() {
	if n := a.scheduleCount(); a.sched.debt >= n {
		a.sched.debt = max(n-1, 0)
	}
	a.sched.view.Width = components.CardInnerWidth(a.contentWidth())
	a.sched.view.Height = a.scheduleViewHeight()
	a.sched.view.SetContent(strings.Join(a.scheduleLines(), "\n"))
}

func (a App) updateScheduleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	n := a.scheduleCount()
	switch msg.String() {
	case "[", "h":
		if n > 0 {
			a.sched.debt = (a.sched.debt - 1 + n) % n
			a.syncSchedule()
			a.sched.view.GotoTop()
		}
		return a, nil, true
	case "]", "l":
		if n > 0 {
			a.sched.debt = (a.sched.debt + 1) % n
			a.syncSchedule()
			a.sched.view.GotoTop()
		}
		return a, nil, true
	case "g", "home":
		a.sched.view.GotoTop()
		return a, nil, true
	case "G", "end":
		a.sched.view.GotoBottom()
		return a, nil, true
	case "j", "k", "up", "down", "pgup", "pgdown", "ctrl+d", "ctrl+u":
		var cmd tea.Cmd
		a.sched.view, cmd = a.sched.view.Update(msg)
		return a, cmd, true
	}
	return a, nil, false
}

func (a App) visibleColumns() []ledgerColumn {
	if !a.isCompactLayout() {
		return ledgerColumns
	}
	var cols []ledgerColumn
	for _, c := range ledgerColumns {
		if !c.full {
			cols = append(cols, c)
		}
	}
	return cols
}

func (a App) scheduleLines() []string {
	if a.result == nil {
		return nil
	}
	schedules := a.result.Allocation.Schedules
	if a.sched.debt >= len(schedules) {
		return a.totalLines()
	}

	t := theme.Active
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	fundStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	finalStyle := lipgloss.NewStyle().Foreground(t.Good).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	s := schedules[a.sched.debt]
	cols := a.visibleColumns()
	lines := make([]string, 0, len(s.Entries)+1)
	for _, e := range s.Entries {
		style := rowStyle
		switch {
		case e.Final:
			style = finalStyle
		case e.HasOneTime():
			style = fundStyle
		}
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = c.value(e)
		}
		lines = append(lines, style.Render(formatRow(cells, cols)))
	}

	switch s.Outcome {
	case model.NonAmortizing:
		lines = append(lines, mutedStyle.Render("Payments never exceed the monthly interest; this debt does not pay off."))
	case model.HorizonExceeded:
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("Still owed after %d months.", a.result.Allocation.Horizon)))
	}
	return lines
}

func (a App) totalLines() []string {
	t := theme.Active
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	clearStyle := lipgloss.NewStyle().Foreground(t.Good).Background(t.Surface)

	alloc := a.result.Allocation
	labels := a.result.Labels()
	start := make(map[string]decimal.Decimal, len(a.result.Request.Debts))
	for _, d := range a.result.Request.Debts {
		start[d.ID] = d.Balance
	}

	months := alloc.Months()
	lines := make([]string, 0, months)
	for m := 1; m <= months; m++ {
		interest, principal, remaining := decimal.Zero, decimal.Zero, decimal.Zero
		var cleared []string
		for _, s := range alloc.Schedules {
			if e, ok := s.EntryAt(m); ok {
				interest = interest.Add(e.Interest)
				principal = principal.Add(e.Principal)
				if e.Final {
					cleared = append(cleared, labels[s.DebtID])
				}
			}
			remaining = remaining.Add(s.BalanceAfter(start[s.DebtID], m))
		}

		row := fmt.Sprintf("%4d  %-9s %11s %10s %11s %12s",
			m,
			cli.FormatDate(engine.AddMonths(alloc.Anchor, m-1)),
			cli.FormatMoney(alloc.PaymentsInMonth(m)),
			cli.FormatMoney(interest),
			cli.FormatMoney(principal),
			cli.FormatMoney(remaining),
		)
		line := rowStyle.Render(row)
		if len(cleared) > 0 {
			line += clearStyle.Render("  paid off " + strings.Join(cleared, ", "))
		}
		lines = append(lines, line)
	}
	return lines
}

func formatRow(cells []string, cols []ledgerColumn) string {
	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteString(" ")
		}
		if i < 2 {
			fmt.Fprintf(&b, "%-*s", c.width, cells[i])
		} else {
			fmt.Fprintf(&b, "%*s", c.width, cells[i])
		}
	}
	return b.String()
}

func (a App) renderScheduleTab(cw int) string {
	t := theme.Active
	schedules := a.result.Allocation.Schedules
	labels := a.result.Labels()

	activeStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	names := make([]string, 0, len(schedules)+1)
	for _, s := range schedules {
		names = append(names, labels[s.DebtID])
	}
	names = append(names, "All debts")

	var selector strings.Builder
	selector.WriteString(mutedStyle.Render("[ "))
	for i, name := range names {
		if i > 0 {
			selector.WriteString(mutedStyle.Render(" · "))
		}
		if i == a.sched.debt {
			selector.WriteString(activeStyle.Render(name))
		} else {
			selector.WriteString(mutedStyle.Render(name))
		}
	}
	selector.WriteString(mutedStyle.Render(" ]"))

	var header string
	if a.sched.debt >= len(schedules) {
		header = fmt.Sprintf("%4s  %-9s %11s %10s %11s %12s", "Mo", "Date", "Payment", "Interest", "Principal", "Balance")
	} else {
		cols := a.visibleColumns()
		titles := make([]string, len(cols))
		for i, c := range cols {
			titles[i] = c.title
		}
		header = formatRow(titles, cols)
	}

	title := "Ledger"
	if a.sched.debt < len(schedules) {
		title = fmt.Sprintf("Ledger · priority %d of %d", a.sched.debt+1, len(schedules))
	}
	body := selector.String() + "\n" + headStyle.Render(header) + "\n" + a.sched.view.View()
	return components.ContentCard(title, body, cw)
}
