package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagHistoryLimit int
	flagHistoryKeep  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded plan runs",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest runs",
	RunE:  runHistoryPrune,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "l", 20, "Number of runs to show")
	historyPruneCmd.Flags().IntVar(&flagHistoryKeep, "keep", 100, "Number of runs to keep")

	historyCmd.AddCommand(historyShowCmd, historyDeleteCmd, historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

func withHistory(fn func(h *store.History) error) error {
	h, err := store.Open(config.HistoryPath())
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer h.Close()
	return fn(h)
}

func runHistoryList(_ *cobra.Command, _ []string) error {
	return withHistory(func(h *store.History) error {
		runs, err := h.ListRuns(flagHistoryLimit)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(runs)
		}
		if len(runs) == 0 {
			fmt.Println("\n  No runs recorded yet. Run `payoff plan` first.")
			return nil
		}

		total, err := h.RunCount()
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Println(cli.RenderTitle(fmt.Sprintf("RUN HISTORY  %d of %d", len(runs), total)))
		fmt.Println()

		t := cli.Table{
			Headers: []string{"Run", "When", "Source", "Strategy", "Budget", "Debt-free", "Interest"},
			Left:    4,
		}
		for _, r := range runs {
			t.Rows = append(t.Rows, []string{
				shortID(r.ID),
				cli.FormatAgo(r.CreatedAt),
				r.Source,
				strategyLabel(r),
				cli.FormatMoney(r.MonthlyBudget),
				cli.FormatMonths(r.Months),
				cli.FormatMoney(r.TotalInterest),
			})
		}
		fmt.Print(cli.RenderTable(t))
		return nil
	})
}

func runHistoryShow(_ *cobra.Command, args []string) error {
	return withHistory(func(h *store.History) error {
		r, err := findRun(h, args[0])
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(r)
		}

		fmt.Println()
		fmt.Println(cli.RenderTitle("RUN " + shortID(r.ID)))
		fmt.Println()

		t := cli.Table{Headers: []string{"Field", "Value"}}
		t.Rows = [][]string{
			{"Recorded", r.CreatedAt.Local().Format("2006-01-02 15:04:05")},
			{"Source", r.Source},
			{"Strategy", strategyLabel(r)},
			{"Budget", cli.FormatMoney(r.MonthlyBudget)},
			{"---"},
			{"Debt-free", cli.FormatDate(r.PayoffDate)},
			{"Months", cli.FormatMonths(r.Months)},
			{"Interest", cli.FormatMoney(r.TotalInterest)},
			{"Total paid", cli.FormatMoney(r.TotalPaid)},
			{"Input hash", r.InputHash},
		}
		fmt.Print(cli.RenderTable(t))

		if len(r.Debts) > 0 {
			dt := cli.Table{Headers: []string{"Debt", "Payoff", "Months", "Interest", "Total Paid", "Outcome"}}
			for _, d := range r.Debts {
				dt.Rows = append(dt.Rows, []string{
					d.DebtID,
					cli.FormatDate(d.PayoffDate),
					cli.FormatMonths(d.Months),
					cli.FormatMoney(d.TotalInterest),
					cli.FormatMoney(d.TotalPaid),
					d.Outcome,
				})
			}
			fmt.Println()
			fmt.Print(cli.RenderTable(dt))
		}
		return nil
	})
}

func runHistoryDelete(_ *cobra.Command, args []string) error {
	return withHistory(func(h *store.History) error {
		r, err := findRun(h, args[0])
		if err != nil {
			return err
		}
		if err := h.DeleteRun(r.ID); err != nil {
			return err
		}
		fmt.Printf("  Deleted run %s\n", shortID(r.ID))
		return nil
	})
}

func runHistoryPrune(_ *cobra.Command, _ []string) error {
	if flagHistoryKeep < 0 {
		return errors.New("--keep must not be negative")
	}
	return withHistory(func(h *store.History) error {
		n, err := h.Prune(flagHistoryKeep)
		if err != nil {
			return err
		}
		fmt.Printf("  Removed %d run(s), kept the newest %d\n", n, flagHistoryKeep)
		return nil
	})
}

// findRun resolves a full run ID or a unique prefix of one.
func findRun(h *store.History, id string) (model.Run, error) {
	r, err := h.GetRun(id)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, store.ErrRunNotFound) {
		return r, err
	}

	runs, err := h.ListRuns(0)
	if err != nil {
		return model.Run{}, err
	}
	var match []model.Run
	for _, r := range runs {
		if strings.HasPrefix(r.ID, id) {
			match = append(match, r)
		}
	}
	switch len(match) {
	case 0:
		return model.Run{}, fmt.Errorf("%w: %s", store.ErrRunNotFound, id)
	case 1:
		return h.GetRun(match[0].ID)
	default:
		return model.Run{}, fmt.Errorf("run id %q is ambiguous (%d matches)", id, len(match))
	}
}

func strategyLabel(r model.Run) string {
	if r.FellBack {
		return fmt.Sprintf("%s (asked %s)", r.Strategy, r.RequestedStrategy)
	}
	return r.Strategy
}
