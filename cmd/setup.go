package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/portfolio"
	"github.com/theirongolddev/payoff/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	vals := tui.SetupValuesFrom(cfg)

	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	// Save the file values, not the env-overridden ones.
	fileCfg, err := config.LoadFile(config.ConfigPath())
	if err != nil {
		return err
	}
	if err := vals.Apply(&fileCfg); err != nil {
		return err
	}
	if err := config.Save(fileCfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())

	path := config.PortfolioPath(fileCfg)
	if p, err := portfolio.Load(path); err == nil {
		fmt.Printf("  Portfolio: %d debts, %s total\n", len(p.Debts), p.TotalBalance().StringFixed(2))
	} else {
		fmt.Printf("  Portfolio: %v\n", err)
		if errors.Is(err, portfolio.ErrNotFound) {
			fmt.Println("  Create it with one [[debt]] table per debt (id, name, balance, apr, minimum_payment).")
		}
	}
	fmt.Println("  Run `payoff setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
