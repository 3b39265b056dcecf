package cmd

import (
	"fmt"
	"io"

	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/tui"
	"github.com/theirongolddev/payoff/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var flagTUIStep string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&flagTUIStep, "step", "50", "Budget change per +/- key press")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	step, err := decimal.NewFromString(flagTUIStep)
	if err != nil || !step.IsPositive() {
		return fmt.Errorf("--step must be a positive amount")
	}

	// Log lines would corrupt the alternate screen.
	log.SetOutput(io.Discard)

	app := tui.NewApp(tui.Options{
		Load:       reloadRequest,
		Portfolio:  portfolioPath(),
		BudgetStep: step,
		NeedSetup:  !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
