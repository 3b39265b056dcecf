package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := peakOf(values)
	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = min(max(idx, 0), len(sparkBlocks)-1)
		buf.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// Downsample reduces values to at most n points. Each bucket keeps its first
// value so a declining balance curve keeps its starting height.
func Downsample(values []float64, labels []string, n int) ([]float64, []string) {
	if n <= 0 || len(values) <= n {
		return values, labels
	}
	outV := make([]float64, n)
	var outL []string
	if len(labels) == len(values) {
		outL = make([]string, n)
	}
	for i := 0; i < n; i++ {
		src := i * len(values) / n
		outV[i] = values[src]
		if outL != nil {
			outL[i] = labels[src]
		}
	}
	return outV, outL
}

// BalanceChart renders a column chart of remaining balance per month. width
// and height are the inner dimensions; columns are one cell wide with no gap
// so long plans still fit.
func BalanceChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}
	t := theme.Active

	peak := peakOf(values)
	step := tickStep(peak)
	ceiling := math.Ceil(peak/step) * step

	yLabelW := max(len(formatAxis(ceiling))+1, 4)
	plotW := width - yLabelW - 1
	values, labels = Downsample(values, labels, plotW)

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for row := height; row >= 1; row-- {
		top := ceiling * float64(row) / float64(height)
		bottom := ceiling * float64(row-1) / float64(height)

		label := ""
		if row == height {
			label = formatAxis(ceiling)
		} else if row == (height+1)/2 {
			label = formatAxis(top)
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, label)))
		b.WriteString(axisStyle.Render("│"))

		var line strings.Builder
		for _, v := range values {
			switch {
			case v >= top:
				line.WriteRune('█')
			case v > bottom:
				idx := int((v - bottom) / (top - bottom) * float64(len(sparkBlocks)))
				idx = min(max(idx, 0), len(sparkBlocks)-1)
				line.WriteRune(sparkBlocks[idx])
			default:
				line.WriteRune(' ')
			}
		}
		b.WriteString(barStyle.Render(line.String()))
		if pad := plotW - len(values); pad > 0 {
			b.WriteString(blank.Render(strings.Repeat(" ", pad)))
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", len(values))))

	if len(labels) == len(values) {
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(axisLabels(labels, len(values))))
	}
	return b.String()
}

// axisLabels spreads labels along an axis of n cells without overlap, always
// keeping the first one.
func axisLabels(labels []string, n int) string {
	buf := []rune(strings.Repeat(" ", n))
	next := 0
	for i, lbl := range labels {
		if i < next || lbl == "" {
			continue
		}
		r := []rune(lbl)
		if i+len(r) > n {
			break
		}
		copy(buf[i:], r)
		next = i + len(r) + 2
	}
	return strings.TrimRight(string(buf), " ")
}

func peakOf(values []float64) float64 {
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		return 1
	}
	return peak
}

// tickStep picks a round axis step targeting about five ticks.
func tickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatAxis(v float64) string {
	switch {
	case v >= 1e6:
		return trimZero(fmt.Sprintf("%.1f", v/1e6)) + "M"
	case v >= 1e3:
		return trimZero(fmt.Sprintf("%.1f", v/1e3)) + "k"
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
