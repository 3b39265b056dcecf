// Package cmd implements the payoff CLI commands.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/pipeline"
	"github.com/theirongolddev/payoff/internal/portfolio"
	"github.com/theirongolddev/payoff/internal/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagPortfolio string
	flagStrategy  string
	flagBudget    string
	flagHorizon   int
	flagQuiet     bool
	flagNoHistory bool
	flagJSON      bool
	flagLogLevel  string
)

var (
	cfg = config.DefaultConfig()
	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "payoff",
	Short: "Debt payoff planner",
	Long: "Plan how a fixed monthly budget pays down your debts: avalanche or snowball\n" +
		"ordering, freed minimums rolled into the next debt, one-time contributions,\n" +
		"and a score against paying only the minimums.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runPlan,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagPortfolio, "portfolio", "f", "", "Portfolio file (TOML or JSON)")
	rootCmd.PersistentFlags().StringVarP(&flagStrategy, "strategy", "s", "", "Strategy: avalanche or snowball")
	rootCmd.PersistentFlags().StringVarP(&flagBudget, "budget", "b", "", "Monthly budget (overrides portfolio and config)")
	rootCmd.PersistentFlags().IntVar(&flagHorizon, "horizon", 0, "Simulation horizon in months")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Do not record runs in the history database")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig reads the config file and builds the logger before any command runs.
func loadConfig(_ *cobra.Command, _ []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	if flagLogLevel != "" {
		c.Log.Level = flagLogLevel
	}
	l, err := newLogger(c.Log)
	if err != nil {
		return err
	}
	cfg, log = c, l
	return nil
}

func newLogger(lc config.LogConfig) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	l.SetLevel(level)

	switch strings.ToLower(lc.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("log format %q: want text or json", lc.Format)
	}
	return l, nil
}

// portfolioPath is the --portfolio flag or the configured default.
func portfolioPath() string {
	if flagPortfolio != "" {
		return flagPortfolio
	}
	return config.PortfolioPath(cfg)
}

// loadRequest is the shared data loading path used by all plan commands.
// The budget comes from --budget, then the portfolio, then config and
// environment, then the sum of minimums.
func loadRequest() (pipeline.Request, error) {
	path := portfolioPath()
	p, err := portfolio.Load(path)
	if err != nil {
		if errors.Is(err, portfolio.ErrNotFound) {
			return pipeline.Request{}, fmt.Errorf("%w (run `payoff setup` or pass --portfolio)", err)
		}
		return pipeline.Request{}, err
	}

	req := pipeline.FromPortfolio(p, cfg.General.Strategy, cfg.General.MonthlyBudget,
		config.HorizonOrDefault(cfg, engine.DefaultHorizon))

	if flagStrategy != "" {
		req.Strategy = flagStrategy
	}
	if flagBudget != "" {
		b, err := parseMoney(flagBudget)
		if err != nil {
			return req, fmt.Errorf("--budget: %w", err)
		}
		req.MonthlyBudget = b
	}
	if flagHorizon > 0 {
		req.Horizon = flagHorizon
	}

	log.WithFields(logrus.Fields{
		"portfolio": path,
		"debts":     len(req.Debts),
		"strategy":  req.Strategy,
		"budget":    req.MonthlyBudget.StringFixed(2),
	}).Debug("loaded portfolio")
	return req, nil
}

// reloadRequest re-reads config before loading, so edits made in the
// dashboard settings take effect on the next reload.
func reloadRequest() (pipeline.Request, error) {
	if c, err := config.Load(); err == nil {
		cfg = c
	}
	return loadRequest()
}

func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return d, fmt.Errorf("not a number: %q", s)
	}
	if d.IsNegative() {
		return d, fmt.Errorf("must not be negative: %s", s)
	}
	return engine.RoundMoney(d), nil
}

// openHistory opens the run history, or returns nil with --no-history.
// A history that cannot be opened is logged and skipped.
func openHistory() *store.History {
	if flagNoHistory {
		return nil
	}
	h, err := store.Open(config.HistoryPath())
	if err != nil {
		log.WithError(err).Warn("run history unavailable")
		return nil
	}
	return h
}

// recordRun writes res to the history and notes when nothing changed.
func recordRun(res *pipeline.Result) {
	h := openHistory()
	if h == nil {
		return
	}
	defer h.Close()

	rec, err := pipeline.Record(h, res, "cli")
	if err != nil {
		log.WithError(err).Warn("recording run")
		return
	}
	log.WithField("run_id", rec.Run.ID).Debug("run recorded")
	if rec.Unchanged() && !flagQuiet && !flagJSON {
		fmt.Fprintf(os.Stderr, "  Same inputs as run %s (%s)\n",
			shortID(rec.Previous.ID), cli.FormatAgo(rec.Previous.CreatedAt))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// explainError turns an unfundable plan into a readable message.
func explainError(err error) error {
	var unfundable *engine.UnfundableError
	if errors.As(err, &unfundable) {
		return fmt.Errorf("monthly budget %s does not cover the minimum payments of %s (short by %s)",
			cli.FormatMoney(unfundable.Budget),
			cli.FormatMoney(unfundable.Minimums),
			cli.FormatMoney(unfundable.Shortfall()))
	}
	return err
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, cli.RenderWarning(w))
	}
}
