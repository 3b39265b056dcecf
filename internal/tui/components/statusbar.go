package components

import (
	"strings"

	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar. info is shown on the right,
// e.g. the portfolio file and plan age; busy shows a re-planning marker.
func RenderStatusBar(width int, info string, busy bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " [?]help  [+/-]budget  [r]eload  [q]uit"
	right := info
	if busy {
		right = "planning… " + right
	}
	right += " "

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return style.Render(left + strings.Repeat(" ", padding) + right)
}
