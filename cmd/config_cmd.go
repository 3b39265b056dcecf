package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/payoff/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Portfolio:      %s\n", portfolioPath())
	if _, err := os.Stat(portfolioPath()); err != nil {
		fmt.Println("                    (file not found)")
	}
	fmt.Printf("    Strategy:       %s\n", cfg.General.Strategy)
	fmt.Printf("    Monthly budget: %s\n", config.BudgetString(cfg))
	fmt.Printf("    Horizon:        %d months\n", cfg.General.Horizon)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Schedule:      %s\n", cfg.Daemon.Schedule)
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Printf("  History: %s\n", config.HistoryPath())
	fmt.Printf("  Environment overrides: %s, %s, %s, %s\n",
		config.EnvPortfolio, config.EnvStrategy, config.EnvBudget, config.EnvLogLevel)
	fmt.Println()

	fmt.Println("  Run `payoff setup` to reconfigure.")
	return nil
}
