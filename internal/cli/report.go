package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"trading-journal/internal/analysis/passive"
)

// addReportCommands adds the passive pattern report.
func addReportCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newReportCmd(app))
}

func newReportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Analyze your trading history for behavioral patterns",
		Long: `Mine your recent closed trades for rushing after losses, sizing up
after losses, holding losers too long, and your best and worst hours,
weekdays and symbols.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			report, err := app.Service.PassiveReport(ctx, app.Config.Journal.UserID)
			if err != nil {
				output.Error("Failed to build report: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}
			printReport(output, report)
			return nil
		},
	}
}

func printReport(output *Output, r *passive.Report) {
	output.Bold("Behavioral Report")
	output.Printf("  Trades:        %d (%d closed)\n", r.TotalTrades, r.ClosedTrades)
	if r.ClosedTrades == 0 {
		output.Println()
		output.Info("Close some trades to see your patterns.")
		return
	}
	output.Printf("  Win rate:      %s\n", FormatConfidence(r.WinRate))
	if r.ProfitFactor != nil {
		output.Printf("  Profit factor: %.2f\n", *r.ProfitFactor)
	}
	output.Printf("  Avg P&L:       %s\n", output.PnL(r.AvgPnLPct))
	output.Printf("  Max drawdown:  %.2f%%\n", r.MaxDrawdownPct)
	output.Printf("  Risk score:    %s\n", output.RiskScore(r.RiskScore))
	output.Println()

	output.Bold("Patterns")
	if in := r.Interval; in.Status.Applicable() {
		output.Printf("  Next entry after a loss: %s, after a win: %s\n",
			FormatMinutes(in.AvgAfterLossMinutes), FormatMinutes(in.AvgAfterWinMinutes))
		printFlag(output, in.RushingAfterLoss, "Rushing back in after losses")
	} else {
		output.Dim("  Entry intervals: %s", in.Status)
	}
	if sz := r.Sizing; sz.Status.Applicable() {
		output.Printf("  Size after a loss: %.2fx, after a win: %.2fx\n", sz.AvgRatioAfterLoss, sz.AvgRatioAfterWin)
		printFlag(output, sz.RevengePattern, fmt.Sprintf("Sizing up after losses (%s)", sz.Severity))
	} else {
		output.Dim("  Position sizing: %s", sz.Status)
	}
	if h := r.Hold; h.Status.Applicable() {
		output.Printf("  Winners held %s, losers held %s\n",
			FormatMinutes(h.AvgWinningMinutes), FormatMinutes(h.AvgLosingMinutes))
		printFlag(output, h.LossAversion, "Holding losers much longer than winners")
	} else {
		output.Dim("  Hold times: %s", h.Status)
	}
	output.Println()

	if tm := r.Time; tm.Status.Applicable() {
		output.Bold("Timing")
		printBucket(output, "Best hour", tm.BestHour)
		printBucket(output, "Worst hour", tm.WorstHour)
		printBucket(output, "Best day", tm.BestDay)
		printBucket(output, "Worst day", tm.WorstDay)
		output.Println()
	}

	if sym := r.Symbol; sym.Status.Applicable() && len(sym.Symbols) > 0 {
		output.Bold("Symbols")
		table := NewTable(output, "Symbol", "Trades", "Win rate", "Avg P&L", "Sharpe")
		for _, s := range sym.Symbols {
			sharpe := "-"
			if s.Sharpe != nil {
				sharpe = fmt.Sprintf("%.2f", *s.Sharpe)
			}
			table.AddRow(
				s.Symbol,
				fmt.Sprintf("%d", s.Trades),
				FormatConfidence(s.WinRate),
				output.PnL(s.AvgPnLPct),
				sharpe,
			)
		}
		table.Render()
		output.Println()
	}

	if len(r.Recommendations) > 0 {
		output.Bold("Recommendations")
		for _, rec := range r.Recommendations {
			output.Info("  → %s", rec)
		}
	}
}

func printFlag(output *Output, flagged bool, label string) {
	if flagged {
		output.Warning("  ⚠ %s", label)
	}
}

func printBucket(output *Output, label string, b *passive.Bucket) {
	if b == nil {
		return
	}
	output.Printf("  %-11s %s: %s win rate over %d trades, avg %s\n",
		label, b.Label, FormatConfidence(b.WinRate), b.Trades, output.PnL(b.AvgPnLPct))
}
