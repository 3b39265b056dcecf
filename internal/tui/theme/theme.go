// Package theme defines color themes for the payoff dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceBright lipgloss.Color // Selected row
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // Focused card
	TextDim       lipgloss.Color // Hints, axis labels
	TextMuted     lipgloss.Color // Labels
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color
	Good          lipgloss.Color // paid off, interest saved
	Warn          lipgloss.Color // fallback strategy, leftover funding
	Bad           lipgloss.Color // never pays off, unfundable
	Series        []lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme - warm, paper-inspired dark theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	Good:          lipgloss.Color("#879A39"),
	Warn:          lipgloss.Color("#DA702C"),
	Bad:           lipgloss.Color("#D14D41"),
	Series: []lipgloss.Color{
		"#4385BE", "#DA702C", "#879A39", "#CE5D97", "#D0A215", "#24837B",
	},
}

// CatppuccinMocha is a warm pastel theme with soft, soothing colors.
var CatppuccinMocha = Theme{
	Name:          "catppuccin-mocha",
	Background:    lipgloss.Color("#1E1E2E"),
	Surface:       lipgloss.Color("#313244"),
	SurfaceBright: lipgloss.Color("#585B70"),
	Border:        lipgloss.Color("#585B70"),
	BorderAccent:  lipgloss.Color("#89B4FA"),
	TextDim:       lipgloss.Color("#6C7086"),
	TextMuted:     lipgloss.Color("#A6ADC8"),
	TextPrimary:   lipgloss.Color("#CDD6F4"),
	Accent:        lipgloss.Color("#89B4FA"),
	AccentBright:  lipgloss.Color("#B4D0FB"),
	Good:          lipgloss.Color("#A6E3A1"),
	Warn:          lipgloss.Color("#FAB387"),
	Bad:           lipgloss.Color("#F38BA8"),
	Series: []lipgloss.Color{
		"#89B4FA", "#FAB387", "#A6E3A1", "#F5C2E7", "#F9E2AF", "#94E2D5",
	},
}

// TokyoNight is a cool blue/purple theme inspired by Tokyo city lights.
var TokyoNight = Theme{
	Name:          "tokyo-night",
	Background:    lipgloss.Color("#1A1B26"),
	Surface:       lipgloss.Color("#24283B"),
	SurfaceBright: lipgloss.Color("#414868"),
	Border:        lipgloss.Color("#565F89"),
	BorderAccent:  lipgloss.Color("#7AA2F7"),
	TextDim:       lipgloss.Color("#565F89"),
	TextMuted:     lipgloss.Color("#A9B1D6"),
	TextPrimary:   lipgloss.Color("#C0CAF5"),
	Accent:        lipgloss.Color("#7AA2F7"),
	AccentBright:  lipgloss.Color("#A9C1FF"),
	Good:          lipgloss.Color("#9ECE6A"),
	Warn:          lipgloss.Color("#FF9E64"),
	Bad:           lipgloss.Color("#F7768E"),
	Series: []lipgloss.Color{
		"#7AA2F7", "#FF9E64", "#9ECE6A", "#BB9AF7", "#E0AF68", "#7DCFFF",
	},
}

// Terminal uses ANSI 16 colors only - maximum compatibility.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	Good:          lipgloss.Color("2"),
	Warn:          lipgloss.Color("3"),
	Bad:           lipgloss.Color("1"),
	Series:        []lipgloss.Color{"4", "3", "2", "5", "11", "6"},
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// SeriesColor returns the color for the i-th debt, cycling the palette.
func (t Theme) SeriesColor(i int) lipgloss.Color {
	if len(t.Series) == 0 {
		return t.Accent
	}
	return t.Series[i%len(t.Series)]
}
