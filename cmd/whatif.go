package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/pipeline"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagWhatIfFrom string
	flagWhatIfTo   string
	flagWhatIfStep string
)

var whatifCmd = &cobra.Command{
	Use:   "whatif",
	Short: "Sweep the monthly budget and compare outcomes",
	Long: "Run the plan at every budget from --from to --to in --step increments.\n" +
		"--from defaults to the sum of minimums and --to to twice the current budget.",
	RunE: runWhatIf,
}

// maxSweepPoints keeps an accidental tiny --step from queueing millions of runs.
const maxSweepPoints = 2000

func init() {
	whatifCmd.Flags().StringVar(&flagWhatIfFrom, "from", "", "Lowest budget")
	whatifCmd.Flags().StringVar(&flagWhatIfTo, "to", "", "Highest budget")
	whatifCmd.Flags().StringVar(&flagWhatIfStep, "step", "50", "Budget increment")
	rootCmd.AddCommand(whatifCmd)
}

// whatifPoint is the JSON form of one sweep point.
type whatifPoint struct {
	Budget        decimal.Decimal `json:"budget"`
	Months        *int            `json:"months"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	Score         float64         `json:"score"`
	Error         string          `json:"error,omitempty"`
}

func runWhatIf(_ *cobra.Command, _ []string) error {
	req, err := loadRequest()
	if err != nil {
		return err
	}

	from := engine.MinimumTotal(req.Debts)
	to := req.MonthlyBudget.Mul(decimal.NewFromInt(2))
	if flagWhatIfFrom != "" {
		if from, err = parseMoney(flagWhatIfFrom); err != nil {
			return fmt.Errorf("--from: %w", err)
		}
	}
	if flagWhatIfTo != "" {
		if to, err = parseMoney(flagWhatIfTo); err != nil {
			return fmt.Errorf("--to: %w", err)
		}
	}
	step, err := parseMoney(flagWhatIfStep)
	if err != nil || !step.IsPositive() {
		return errors.New("--step must be a positive amount")
	}

	budgets := pipeline.BudgetSteps(from, to, step)
	if len(budgets) > maxSweepPoints {
		return fmt.Errorf("%d budgets requested; raise --step (limit %d)", len(budgets), maxSweepPoints)
	}

	progressFn := func(current, total int) {
		if flagQuiet || flagJSON {
			return
		}
		if current%10 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Simulating [%d/%d]", current, total)
		}
	}

	start := time.Now()
	points := pipeline.Sweep(req, budgets, progressFn)
	if !flagQuiet && !flagJSON {
		fmt.Fprintf(os.Stderr, "\r  Simulated %d budgets in %s    \n", len(points), time.Since(start).Round(time.Millisecond))
	}
	log.WithField("points", len(points)).Debug("sweep finished")

	if flagJSON {
		out := make([]whatifPoint, len(points))
		for i, p := range points {
			out[i] = whatifPoint{Budget: p.Budget}
			if p.Err != nil {
				out[i].Error = p.Err.Error()
				continue
			}
			sum := p.Result.Summary
			if !sum.Months.IsNever() {
				n := int(sum.Months)
				out[i].Months = &n
			}
			out[i].TotalInterest = sum.TotalInterest
			out[i].Score = p.Score.Total
		}
		return printJSON(out)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("WHAT IF  %s, %s to %s", req.Strategy, cli.FormatMoney(from), cli.FormatMoney(to))))
	fmt.Println()

	t := cli.Table{
		Headers: []string{"Budget", "Debt-free", "Months", "Interest", "Score"},
	}
	var interest []float64
	for _, p := range points {
		if p.Err != nil {
			var unfundable *engine.UnfundableError
			if errors.As(p.Err, &unfundable) {
				t.Rows = append(t.Rows, []string{cli.FormatMoney(p.Budget), "unfundable", "", "short " + cli.FormatMoney(unfundable.Shortfall()), ""})
				continue
			}
			t.Rows = append(t.Rows, []string{cli.FormatMoney(p.Budget), "error", "", p.Err.Error(), ""})
			continue
		}
		sum := p.Result.Summary
		mark := ""
		if p.Budget.Equal(req.MonthlyBudget) {
			mark = " <"
		}
		t.Rows = append(t.Rows, []string{
			cli.FormatMoney(p.Budget) + mark,
			cli.FormatDate(sum.PayoffDate),
			cli.FormatMonths(sum.Months),
			cli.FormatMoneyShort(sum.TotalInterest),
			fmt.Sprintf("%.0f", p.Score.Total),
		})
		interest = append(interest, sum.TotalInterest.InexactFloat64())
	}
	fmt.Print(cli.RenderTable(t))

	if len(interest) > 1 {
		fmt.Println()
		fmt.Printf("  Interest  %s\n", cli.RenderSparkline(interest))
	}
	fmt.Println()
	return nil
}
