package cmd

import (
	"fmt"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/daemon"
	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/pipeline"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare avalanche, snowball and minimum payments",
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(_ *cobra.Command, _ []string) error {
	req, err := loadRequest()
	if err != nil {
		return err
	}

	c, err := pipeline.Compare(req)
	if err != nil {
		return explainError(err)
	}

	if flagJSON {
		return printJSON(daemon.NewScoreResponse(c))
	}

	base := c.Baseline.Summary

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("STRATEGIES  %s/mo", cli.FormatMoney(req.MonthlyBudget))))
	fmt.Println()

	t := cli.Table{
		Headers: []string{"Strategy", "Debt-free", "Months", "Interest", "Saved", "Faster", "Interest", "Duration", "Behavior", "Score"},
		Rows: [][]string{{
			"minimums",
			cli.FormatDate(base.PayoffDate),
			cli.FormatMonths(base.Months),
			cli.FormatMoney(base.TotalInterest),
			"", "", "", "", "", "",
		}, {"---"}},
	}
	for i, run := range c.Runs {
		sum, s := run.Result.Summary, run.Score
		name := sum.Strategy
		if i == c.Best {
			name += " *"
		}
		saved, faster := cli.FormatDelta(s.InterestSaved), fmt.Sprintf("%d mo", s.MonthsSaved)
		if s.BaselineNever {
			saved, faster = "n/a", "n/a"
		}
		t.Rows = append(t.Rows, []string{
			name,
			cli.FormatDate(sum.PayoffDate),
			cli.FormatMonths(sum.Months),
			cli.FormatMoney(sum.TotalInterest),
			saved,
			faster,
			cli.FormatScore(s.Interest, engine.InterestWeight),
			cli.FormatScore(s.Duration, engine.DurationWeight),
			cli.FormatScore(s.Behavior, engine.BehaviorWeight),
			fmt.Sprintf("%.0f", s.Total),
		})
	}
	fmt.Print(cli.RenderTable(t))

	// Interest bars
	maxInterest := base.TotalInterest.InexactFloat64()
	for _, run := range c.Runs {
		maxInterest = max(maxInterest, run.Result.Summary.TotalInterest.InexactFloat64())
	}
	fmt.Println()
	fmt.Println(cli.RenderHorizontalBar("minimums", base.TotalInterest.InexactFloat64(), maxInterest, 30))
	for _, run := range c.Runs {
		fmt.Println(cli.RenderHorizontalBar(run.Result.Summary.Strategy, run.Result.Summary.TotalInterest.InexactFloat64(), maxInterest, 30))
	}

	if base.Months.IsNever() {
		fmt.Println()
		fmt.Println(cli.RenderMuted("  Paying only the minimums never clears every debt, so savings are not comparable."))
	}
	fmt.Println()
	fmt.Printf("  Best: %s (* above)\n\n", c.BestRun().Result.Summary.Strategy)
	return nil
}
