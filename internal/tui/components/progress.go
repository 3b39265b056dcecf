package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders a plain block progress bar with percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := int(pct * float64(width))

	filledStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		pctStyle.Render(fmt.Sprintf(" %.0f%%", pct*100))
}

// ColorForShare colors how much of a debt the plan has paid down by a point
// in time: the closer to done, the greener.
func ColorForShare(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 1:
		return t.Good
	case pct >= 0.5:
		return t.Accent
	case pct > 0:
		return t.Warn
	default:
		return t.Bad
	}
}

// PayoffBar renders one debt's row: name, a progress bar of the share of its
// balance retired, and a trailing note such as the payoff date.
func PayoffBar(label string, pct float64, note string, labelW, barWidth int) string {
	t := theme.Active
	pct = clamp01(pct)
	color := ColorForShare(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	noteStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	if r := []rune(label); len(r) > labelW {
		label = string(r[:labelW-1]) + "…"
	}

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		space +
		bar.ViewAs(pct) +
		space +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100)) +
		space + space +
		noteStyle.Render(note)
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
