package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/pipeline"
	"github.com/theirongolddev/payoff/internal/portfolio"

	"github.com/spf13/cobra"
)

var (
	flagScheduleDebt    string
	flagSchedulePayment string
	flagScheduleCSV     bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Month-by-month ledger for each debt",
	Long: "Print the ledger of every debt in the plan, or of one debt with --debt.\n" +
		"With --payment the debt is amortized on its own at a fixed payment,\n" +
		"ignoring the rest of the portfolio.",
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&flagScheduleDebt, "debt", "", "Debt ID to show")
	scheduleCmd.Flags().StringVar(&flagSchedulePayment, "payment", "", "Fixed monthly payment (requires --debt)")
	scheduleCmd.Flags().BoolVar(&flagScheduleCSV, "csv", false, "Write the ledger as CSV to stdout")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(_ *cobra.Command, _ []string) error {
	req, err := loadRequest()
	if err != nil {
		return err
	}

	var (
		schedules []model.Schedule
		labels    = make(map[string]string, len(req.Debts))
		anchor    = req.ResolvedAnchor()
	)
	for _, d := range req.Debts {
		labels[d.ID] = d.Label()
	}

	switch {
	case flagSchedulePayment != "":
		if flagScheduleDebt == "" {
			return fmt.Errorf("--payment requires --debt")
		}
		debt, ok := portfolio.Portfolio{Debts: req.Debts}.Debt(flagScheduleDebt)
		if !ok {
			return fmt.Errorf("no debt with id %q", flagScheduleDebt)
		}
		payment, err := parseMoney(flagSchedulePayment)
		if err != nil {
			return fmt.Errorf("--payment: %w", err)
		}
		schedules = []model.Schedule{engine.Amortize(debt, payment, req.Horizon, anchor)}

	default:
		res, err := pipeline.Run(req)
		if err != nil {
			return explainError(err)
		}
		schedules = res.Allocation.Schedules
		if flagScheduleDebt != "" {
			s, ok := res.Allocation.Schedule(flagScheduleDebt)
			if !ok {
				return fmt.Errorf("no debt with id %q", flagScheduleDebt)
			}
			schedules = []model.Schedule{s}
		}
	}

	if flagScheduleCSV {
		return cli.WriteLedgerCSV(os.Stdout, schedules)
	}
	if flagJSON {
		return printJSON(schedules)
	}

	fmt.Println()
	for _, s := range schedules {
		sum := engine.SummarizeSchedule(s)
		title := fmt.Sprintf("%s · %s · %s interest", labels[s.DebtID], cli.FormatMonths(sum.Months), cli.FormatMoney(sum.TotalInterest))
		fmt.Print(cli.RenderTable(cli.LedgerTable(title, s)))

		switch s.Outcome {
		case model.NonAmortizing:
			fmt.Println(cli.RenderError("payments never exceed the monthly interest; this debt does not pay off"))
		case model.HorizonExceeded:
			fmt.Println(cli.RenderWarning(fmt.Sprintf("still owed after %d months", len(s.Entries))))
		}
		fmt.Println()
	}
	return nil
}
