package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	goodStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	badStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string // a row of just "---" draws a separator
	Footer  []string   // optional totals row, drawn bold under a rule
	Widths  []int      // optional column widths, auto-calculated if nil
	Left    int        // number of leading left-aligned columns; defaults to 1
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == "---"
}

// columnWidths sizes every column to its widest cell. Cells are measured in
// terminal cells so "·" and other multi-byte runes count once.
func (t Table) columnWidths() []int {
	numCols := len(t.Headers)
	if numCols == 0 {
		for _, row := range t.Rows {
			if !isSeparator(row) {
				numCols = len(row)
				break
			}
		}
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	measure := func(row []string) {
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		if !isSeparator(row) {
			measure(row)
		}
	}
	measure(t.Footer)
	return widths
}

// RenderTable renders a bordered table with headers, rows and an optional footer.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	widths := t.columnWidths()
	left := t.Left
	if left <= 0 {
		left = 1
	}

	var b strings.Builder

	rule := func(l, mid, r string) {
		b.WriteString(dimStyle.Render(l))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < len(widths)-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(r))
		b.WriteString("\n")
	}

	line := func(row []string, style lipgloss.Style, alignAll bool) {
		b.WriteString(dimStyle.Render("│"))
		for i, w := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pad := strings.Repeat(" ", max(0, w-lipgloss.Width(cell)))
			if alignAll || i < left {
				b.WriteString(style.Render(" " + cell + pad + " "))
			} else {
				b.WriteString(style.Render(" " + pad + cell + " "))
			}
			if i < len(widths)-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		line(t.Headers, headerStyle, true)
		rule("├", "┼", "┤")
	}
	for _, row := range t.Rows {
		if isSeparator(row) {
			rule("├", "┼", "┤")
			continue
		}
		line(row, valueStyle, false)
	}
	if len(t.Footer) > 0 {
		rule("├", "┼", "┤")
		line(t.Footer, headerStyle, false)
	}
	rule("╰", "┴", "╯")

	return b.String()
}

// RenderProgressBar renders a progress bar for paid-down principal.
func RenderProgressBar(paid, total decimal.Decimal, width int) string {
	if !total.IsPositive() {
		return ""
	}

	pct := paid.Div(total).InexactFloat64()
	if pct > 1 {
		pct = 1
	}
	if pct < 0 {
		pct = 0
	}

	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s", goodStyle.Render(bar), FormatPercent(pct))
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		max = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / max * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderHorizontalBar renders a labelled horizontal bar chart entry.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	if maxValue <= 0 {
		return fmt.Sprintf("  %s", label)
	}
	barLen := int(value / maxValue * float64(maxWidth))
	if barLen < 0 {
		barLen = 0
	}
	bar := strings.Repeat("█", barLen)
	return fmt.Sprintf("  %-12s %s", label, goodStyle.Render(bar))
}

// RenderWarning renders a one-line warning, e.g. a strategy fallback notice.
func RenderWarning(msg string) string {
	return warnStyle.Render("  ! " + msg)
}

// RenderError renders a one-line error, e.g. an unfundable budget.
func RenderError(msg string) string {
	return badStyle.Render("  x " + msg)
}

// RenderMuted renders secondary text.
func RenderMuted(msg string) string {
	return mutedStyle.Render(msg)
}
