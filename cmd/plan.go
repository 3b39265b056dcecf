package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/daemon"
	"github.com/theirongolddev/payoff/internal/pipeline"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var flagPlanLedgers bool

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Allocate the monthly budget and show the payoff plan",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().BoolVar(&flagPlanLedgers, "ledgers", false, "Include per-debt ledgers in --json output")
	rootCmd.AddCommand(planCmd)
}

func runPlan(_ *cobra.Command, _ []string) error {
	req, err := loadRequest()
	if err != nil {
		return err
	}

	res, err := pipeline.Run(req)
	if err != nil {
		return explainError(err)
	}
	recordRun(res)

	if flagJSON {
		return printJSON(daemon.NewPlanResponse(res, flagPlanLedgers))
	}

	sum := res.Summary
	labels := res.Labels()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PAYOFF PLAN  %s · %s/mo", sum.Strategy, cli.FormatMoney(sum.MonthlyBudget))))
	fmt.Println()

	fmt.Print(cli.RenderTable(debtsTable(res)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.SummaryTable(sum, labels)))

	if len(res.Allocation.Events) > 0 {
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.EventsTable(res.Allocation.Events, labels)))
	}

	traj := res.Trajectory()
	fmt.Println()
	fmt.Printf("  Balance     %s\n", cli.RenderSparkline(sampleTrajectory(traj, 48)))
	if len(traj) > 1 {
		year := min(12, len(traj)-1)
		fmt.Printf("  First year  %s\n", cli.RenderProgressBar(traj[0].Sub(traj[year]), traj[0], 30))
	}

	if !sum.DebtFree() {
		fmt.Println()
		fmt.Println(cli.RenderError(fmt.Sprintf("%d debt(s) never pay off at this budget", len(sum.NeverDebts))))
	}
	printWarnings(res.Warnings())
	fmt.Println()
	return nil
}

// debtsTable lists the debts in payment priority order.
func debtsTable(res *pipeline.Result) cli.Table {
	t := cli.Table{
		Title:   "Debts by priority",
		Headers: []string{"#", "Debt", "Balance", "APR", "Minimum"},
		Left:    2,
	}
	for i, id := range res.Ordering.IDs {
		for _, d := range res.Request.Debts {
			if d.ID != id {
				continue
			}
			t.Rows = append(t.Rows, []string{
				strconv.Itoa(i + 1),
				d.Label(),
				cli.FormatMoney(d.Balance),
				cli.FormatRate(d.APR),
				cli.FormatMoney(d.MinimumPayment),
			})
		}
	}
	return t
}

// sampleTrajectory thins a balance series to at most n points for the
// sparkline, always keeping the first and last.
func sampleTrajectory(traj []decimal.Decimal, n int) []float64 {
	if len(traj) == 0 {
		return nil
	}
	if len(traj) <= n {
		out := make([]float64, len(traj))
		for i, v := range traj {
			out[i] = v.InexactFloat64()
		}
		return out
	}
	out := make([]float64, n)
	for i := range out {
		idx := i * (len(traj) - 1) / (n - 1)
		out[i] = traj[idx].InexactFloat64()
	}
	return out
}
