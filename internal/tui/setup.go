package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
)

// SetupValues holds the answers of the first-run form.
type SetupValues struct {
	Portfolio string
	Strategy  string
	Budget    string // empty: sum of minimums
	Theme     string
}

// SetupValuesFrom pre-fills the form from an existing config.
func SetupValuesFrom(cfg config.Config) SetupValues {
	v := SetupValues{
		Portfolio: config.PortfolioPath(cfg),
		Strategy:  cfg.General.Strategy,
		Theme:     cfg.Appearance.Theme,
	}
	if cfg.General.MonthlyBudget != nil {
		v.Budget = cfg.General.MonthlyBudget.StringFixed(2)
	}
	return v
}

// NewSetupForm builds the setup form writing into vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	strategies := make([]huh.Option[string], len(model.Strategies))
	for i, s := range model.Strategies {
		strategies[i] = huh.NewOption(s.String(), s.String())
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to payoff").
				Description("Plan how a monthly budget pays down your debts.\nAnswers are saved to "+config.ConfigPath()),
			huh.NewInput().
				Title("Portfolio file").
				Description("TOML or JSON file listing your debts").
				Value(&vals.Portfolio),
			huh.NewSelect[string]().
				Title("Default strategy").
				Options(strategies...).
				Value(&vals.Strategy),
			huh.NewInput().
				Title("Monthly budget").
				Description("Leave empty to pay only the minimums").
				Placeholder("e.g. 750").
				Validate(validateBudget).
				Value(&vals.Budget),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.Theme),
		),
	)
}

func validateBudget(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("not a number: %q", s)
	}
	if d.IsNegative() {
		return fmt.Errorf("budget cannot be negative")
	}
	return nil
}

// Apply copies the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	if err := validateBudget(v.Budget); err != nil {
		return err
	}
	cfg.General.Portfolio = strings.TrimSpace(v.Portfolio)
	if v.Strategy != "" {
		cfg.General.Strategy = v.Strategy
	}
	cfg.General.MonthlyBudget = nil
	if b := strings.TrimSpace(v.Budget); b != "" {
		d := decimal.RequireFromString(b).Round(2)
		cfg.General.MonthlyBudget = &d
	}
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
	return nil
}

func (a *App) saveSetupConfig() error {
	cfg := loadConfigOrDefault()
	if err := a.setupVals.Apply(&cfg); err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)
	return config.Save(cfg)
}
