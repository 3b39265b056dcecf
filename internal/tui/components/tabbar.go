package components

import (
	"strings"

	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Schedule", Key: 's', KeyPos: 0},
	{Name: "Compare", Key: 'c', KeyPos: 0},
	{Name: "Settings", Key: 'x', KeyPos: -1},
}

// TabVisualWidth returns the rendered width of a tab, including padding and
// the "[k]" hint shown on inactive tabs whose key is not in the name.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2
	if !active && tab.KeyPos < 0 {
		w += 3
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceBright).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pad := inactiveStyle.Render(" ")

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts[i] = activeStyle.Render(tab.Name)
			continue
		}
		var rendered string
		if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
			rendered = inactiveStyle.Render(tab.Name[:tab.KeyPos]) +
				keyStyle.Render(string(tab.Name[tab.KeyPos])) +
				inactiveStyle.Render(tab.Name[tab.KeyPos+1:])
		} else {
			rendered = inactiveStyle.Render(tab.Name) +
				dimStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimStyle.Render("]")
		}
		parts[i] = pad + rendered + pad
	}

	bar := strings.Join(parts, dimStyle.Render("│"))
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(bar)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
