package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/payoff/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRow(t *testing.T) {
	for _, tc := range []struct{ total, n int }{{100, 3}, {80, 4}, {7, 2}, {5, 5}} {
		widths := LayoutRow(tc.total, tc.n)
		if len(widths) != tc.n {
			t.Fatalf("LayoutRow(%d, %d) len = %d", tc.total, tc.n, len(widths))
		}
		sum := 0
		for _, w := range widths {
			sum += w
		}
		if sum != tc.total {
			t.Fatalf("LayoutRow(%d, %d) sums to %d", tc.total, tc.n, sum)
		}
		if widths[0] < widths[len(widths)-1] {
			t.Fatalf("remainder should go to the first cards: %v", widths)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowPadsShortCards(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	if shortLines >= tallLines {
		t.Fatal("short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}

	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("line %d has no styling under the short card: %q", i, lines[i])
		}
	}

	want := lipgloss.Width(tallCard) + lipgloss.Width(shortCard)
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Errorf("line %d width = %d, want %d", i, w, want)
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Balance", Value: "13,450.00"},
		{Label: "Debt-free", Value: "Mar 2027", Note: "24 mo"},
		{Label: "Interest", Value: "1,203.77", Color: theme.Active.Bad},
	}, 90)
	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 90 {
			t.Fatalf("line %d width = %d, want 90", i, w)
		}
	}
}

func TestDownsampleKeepsBucketStart(t *testing.T) {
	values := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	labels := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}

	v, l := Downsample(values, labels, 5)
	if len(v) != 5 || len(l) != 5 {
		t.Fatalf("got %d values, %d labels", len(v), len(l))
	}
	if v[0] != 10 || v[4] != 2 || l[1] != "c" {
		t.Fatalf("unexpected samples %v %v", v, l)
	}

	same, _ := Downsample(values, nil, 20)
	if len(same) != len(values) {
		t.Fatal("short series should be returned as is")
	}
}

func TestBalanceChartFitsWidth(t *testing.T) {
	values := make([]float64, 120)
	labels := make([]string, 120)
	for i := range values {
		values[i] = float64(12000 - i*100)
		labels[i] = "Jan"
	}
	chart := BalanceChart(values, labels, theme.Active.Accent, 60, 8)
	for i, line := range strings.Split(chart, "\n") {
		if w := lipgloss.Width(line); w > 60 {
			t.Fatalf("line %d width %d exceeds 60", i, w)
		}
	}
	if !strings.Contains(chart, "█") {
		t.Fatal("chart has no full blocks")
	}
}

func TestAxisLabelsDoNotOverlap(t *testing.T) {
	got := axisLabels([]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}, 6)
	if got != "Jan" {
		t.Fatalf("axisLabels = %q, want %q", got, "Jan")
	}
	got = axisLabels([]string{"Jan", "", "", "", "", "Jun", "", "", "", ""}, 10)
	if got != "Jan  Jun" {
		t.Fatalf("axisLabels = %q", got)
	}
}

func TestFormatAxis(t *testing.T) {
	tests := map[float64]string{
		500:     "500",
		2000:    "2k",
		2500:    "2.5k",
		1000000: "1M",
	}
	for in, want := range tests {
		if got := formatAxis(in); got != want {
			t.Errorf("formatAxis(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestTabVisualWidthMatchesRender(t *testing.T) {
	for active := range Tabs {
		bar := RenderTabBar(active, 200)
		want := 0
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
			if i < len(Tabs)-1 {
				want++
			}
		}
		trimmed := strings.TrimRight(stripANSI(bar), " ")
		if got := lipgloss.Width(trimmed); got > want || got < want-1 {
			t.Fatalf("active=%d rendered width %d, want %d", active, got, want)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if TabIdxByKey('x') != 3 || TabIdxByKey('o') != 0 || TabIdxByKey('z') != -1 {
		t.Fatal("unexpected tab key mapping")
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
