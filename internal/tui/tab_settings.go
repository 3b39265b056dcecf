package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/tui/components"
	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const (
	settingsFieldPortfolio = iota
	settingsFieldStrategy
	settingsFieldBudget
	settingsFieldHorizon
	settingsFieldTheme
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := loadConfigOrDefault()
	a.settings.editing = true
	a.settings.saved = false

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldPortfolio:
		ti.Placeholder = "~/.config/payoff/portfolio.toml"
		ti.SetValue(cfg.General.Portfolio)
	case settingsFieldStrategy:
		ti.Placeholder = "avalanche or snowball"
		ti.SetValue(cfg.General.Strategy)
	case settingsFieldBudget:
		ti.Placeholder = "750 (leave empty for minimums only)"
		if cfg.General.MonthlyBudget != nil {
			ti.SetValue(cfg.General.MonthlyBudget.StringFixed(2))
		}
	case settingsFieldHorizon:
		ti.Placeholder = "600 (months)"
		ti.SetValue(strconv.Itoa(cfg.General.Horizon))
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		replan := a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		if replan && a.settings.saved {
			return a.replan()
		}
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates and persists the edited field. It reports whether
// the plan must be recomputed.
func (a *App) settingsSave() bool {
	cfg := loadConfigOrDefault()
	val := strings.TrimSpace(a.settings.input.Value())
	replan := true

	switch a.settings.cursor {
	case settingsFieldPortfolio:
		cfg.General.Portfolio = val
	case settingsFieldStrategy:
		if _, ok := model.ParseStrategy(val); !ok {
			a.settings.saveErr = fmt.Errorf("unknown strategy %q", val)
			return false
		}
		cfg.General.Strategy = val
	case settingsFieldBudget:
		if val == "" {
			cfg.General.MonthlyBudget = nil
			break
		}
		d, err := decimal.NewFromString(val)
		if err != nil || d.IsNegative() {
			a.settings.saveErr = fmt.Errorf("invalid budget %q", val)
			return false
		}
		d = d.Round(2)
		cfg.General.MonthlyBudget = &d
		a.budget = nil
	case settingsFieldHorizon:
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			a.settings.saveErr = fmt.Errorf("invalid horizon %q", val)
			return false
		}
		cfg.General.Horizon = n
	case settingsFieldTheme:
		found := false
		for _, name := range theme.Names() {
			if name == val {
				found = true
				break
			}
		}
		if !found {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return false
		}
		cfg.Appearance.Theme = val
		theme.SetActive(val)
		replan = false
	}

	a.settings.saveErr = config.Save(cfg)
	return replan
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := loadConfigOrDefault()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	goodStyle := lipgloss.NewStyle().Foreground(t.Good).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	fields := []struct{ label, value string }{
		{"Portfolio", config.PortfolioPath(cfg)},
		{"Strategy", cfg.General.Strategy},
		{"Monthly budget", config.BudgetString(cfg)},
		{"Horizon", fmt.Sprintf("%d months", config.HorizonOrDefault(cfg, 600))},
		{"Theme", cfg.Appearance.Theme},
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-16s ", f.label)))
			form.WriteString(a.settings.input.View())
			form.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			line := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(fmt.Sprintf("%-16s ", f.label+":")) +
				selectedStyle.Render(f.value)
			form.WriteString(line)
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			form.WriteString(valueStyle.Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-16s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		form.WriteString("\n")
		form.WriteString(lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface).
			Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		form.WriteString("\n")
		form.WriteString(goodStyle.Render("Saved"))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var info strings.Builder
	info.WriteString(labelStyle.Render("Config file:   ") + valueStyle.Render(config.ConfigPath()) + "\n")
	info.WriteString(labelStyle.Render("History:       ") + valueStyle.Render(config.HistoryPath()) + "\n")
	info.WriteString(labelStyle.Render("Debts loaded:  ") + valueStyle.Render(cli.FormatNumber(int64(len(a.req.Debts)))))
	if a.result != nil && a.comparison != nil {
		info.WriteString("\n")
		info.WriteString(labelStyle.Render("Plan score:    ") +
			valueStyle.Render(scoreSummary(a.result.Score(a.comparison.Baseline.Summary))))
	}

	return components.ContentCard("Settings", form.String(), cw) + "\n" +
		components.ContentCard("General", info.String(), cw)
}
