package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"trading-journal/internal/behavior"
	"trading-journal/internal/models"
)

// addTradeCommands adds trade journaling commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Record and review trades",
		Long:  "Record trades with notes. Every new trade is checked for behavioral risk.",
	}

	cmd.AddCommand(newTradeAddCmd(app))
	cmd.AddCommand(newTradeCloseCmd(app))
	cmd.AddCommand(newTradeListCmd(app))
	cmd.AddCommand(newTradeShowCmd(app))

	rootCmd.AddCommand(cmd)
}

func newTradeAddCmd(app *App) *cobra.Command {
	var (
		side     string
		price    float64
		qty      float64
		at       string
		note     string
		exit     float64
		exitAt   string
		evaluate bool
	)

	cmd := &cobra.Command{
		Use:   "add <symbol>",
		Short: "Record a trade and check it for behavioral risk",
		Example: `  journal trade add VNM --price 72.5 --qty 100 --note "Vào vội vì sợ lỡ sóng"
  journal trade add BTCUSDT --side short --price 64000 --qty 0.1 --at "2026-10-16 09:30"
  journal trade add FPT --price 120 --qty 50 --exit 118 --exit-at "2026-10-16 10:05"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			loc := app.Config.Location()
			now := app.Now()
			entryTime, err := parseTime(at, loc, now)
			if err != nil {
				return err
			}

			trade := models.Trade{
				UserID:     app.Config.Journal.UserID,
				Symbol:     strings.ToUpper(strings.TrimSpace(args[0])),
				Side:       models.TradeSide(strings.ToLower(side)),
				EntryPrice: price,
				Quantity:   qty,
				EntryTime:  entryTime,
				Notes:      note,
			}
			if cmd.Flags().Changed("exit") {
				exitTime, err := parseTime(exitAt, loc, now)
				if err != nil {
					return err
				}
				trade = trade.Close(exit, exitTime)
			}

			if err := app.Store.SaveTrade(ctx, &trade); err != nil {
				output.Error("Failed to save trade: %v", err)
				return err
			}

			if !evaluate {
				if output.IsJSON() {
					return output.JSON(trade)
				}
				output.Success("✓ Trade %s recorded", trade.ID)
				return nil
			}

			eval, err := app.Service.EvaluateTrade(ctx, trade)
			if output.IsJSON() {
				if jerr := output.JSON(evaluationView(eval)); jerr != nil {
					return jerr
				}
				return err
			}

			output.Success("✓ Trade %s recorded", trade.ID)
			output.Println()
			printEvaluation(output, eval)
			if err != nil {
				output.Warning("⚠ %v", err)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&side, "side", string(models.SideLong), "position side: long or short")
	cmd.Flags().Float64Var(&price, "price", 0, "entry price")
	cmd.Flags().Float64Var(&qty, "qty", 0, "position size")
	cmd.Flags().StringVar(&at, "at", "", "entry time (default: now)")
	cmd.Flags().StringVar(&note, "note", "", "trade note, Vietnamese or English")
	cmd.Flags().Float64Var(&exit, "exit", 0, "exit price for an already closed trade")
	cmd.Flags().StringVar(&exitAt, "exit-at", "", "exit time (default: now)")
	cmd.Flags().BoolVar(&evaluate, "evaluate", true, "check the trade for behavioral risk")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("qty")

	return cmd
}

func newTradeCloseCmd(app *App) *cobra.Command {
	var (
		price float64
		at    string
	)

	cmd := &cobra.Command{
		Use:     "close <trade-id>",
		Short:   "Close an open trade",
		Example: `  journal trade close 6f1c... --price 74.1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			exitTime, err := parseTime(at, app.Config.Location(), app.Now())
			if err != nil {
				return err
			}

			trade, err := app.Store.CloseTrade(ctx, args[0], price, exitTime)
			if err != nil {
				output.Error("Failed to close trade: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("✓ Trade %s closed at %s", trade.ID, FormatPrice(price))
			output.Printf("  P&L: %s\n", output.PnL(trade.PnLPercent()))
			if hold, ok := trade.HoldDuration(); ok {
				output.Printf("  Held: %s\n", FormatDuration(hold))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&price, "price", 0, "exit price")
	cmd.Flags().StringVar(&at, "at", "", "exit time (default: now)")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func newTradeListCmd(app *App) *cobra.Command {
	var (
		symbol   string
		openOnly bool
		from     string
		to       string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journaled trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			filter := models.TradeFilter{
				UserID:   app.Config.Journal.UserID,
				Symbol:   strings.ToUpper(symbol),
				OpenOnly: openOnly,
				Limit:    limit,
			}
			loc := app.Config.Location()
			if from != "" {
				t, err := parseTime(from, loc, app.Now())
				if err != nil {
					return err
				}
				filter.StartDate = t
			}
			if to != "" {
				t, err := parseTime(to, loc, app.Now())
				if err != nil {
					return err
				}
				filter.EndDate = t
			}

			trades, err := app.Store.GetTrades(ctx, filter)
			if err != nil {
				output.Error("Failed to fetch trades: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Info("No trades recorded.")
				return nil
			}

			times := app.times()
			table := NewTable(output, "ID", "Entry", "Symbol", "Side", "Qty", "Price", "Exit", "P&L", "Note")
			for _, t := range trades {
				exit, pnl := "-", "-"
				if t.IsClosed() {
					exit = FormatPrice(*t.ExitPrice)
					pnl = output.PnL(t.PnLPercent())
				}
				table.AddRow(
					t.ID,
					times.Format(t.EntryTime),
					t.Symbol,
					string(t.Side),
					FormatQuantity(t.Quantity),
					FormatPrice(t.EntryPrice),
					exit,
					pnl,
					Truncate(t.Notes, 30),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "only trades in this symbol")
	cmd.Flags().BoolVar(&openOnly, "open", false, "only open trades")
	cmd.Flags().StringVar(&from, "from", "", "entered at or after this time")
	cmd.Flags().StringVar(&to, "to", "", "entered at or before this time")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of trades")

	return cmd
}

func newTradeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show a trade with its note analysis and alerts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			trade, err := app.Store.GetTrade(ctx, args[0])
			if err != nil {
				return err
			}
			var analysis *models.AnalysisResult
			if r, err := app.Store.GetAnalysis(ctx, trade.ID); err == nil {
				analysis = &r
			}
			alerts, err := app.Store.GetAlerts(ctx, models.AlertFilter{TradeID: trade.ID})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"trade":    trade,
					"analysis": analysis,
					"alerts":   alerts,
				})
			}

			times := app.times()
			output.Bold("%s %s %s @ %s", trade.Symbol, trade.Side, FormatQuantity(trade.Quantity), FormatPrice(trade.EntryPrice))
			output.Printf("  ID:      %s\n", trade.ID)
			output.Printf("  Entry:   %s\n", times.Format(trade.EntryTime))
			if trade.IsClosed() {
				output.Printf("  Exit:    %s at %s\n", FormatPrice(*trade.ExitPrice), times.FormatPtr(trade.ExitTime))
				output.Printf("  P&L:     %s\n", output.PnL(trade.PnLPercent()))
			} else {
				output.Printf("  Status:  open\n")
			}
			if trade.Notes != "" {
				output.Printf("  Note:    %s\n", trade.Notes)
			}
			if analysis != nil {
				output.Println()
				printAnalysis(output, *analysis)
			}
			if len(alerts) > 0 {
				output.Println()
				printAlerts(output, times, alerts)
			}
			return nil
		},
	}
}

// evaluation is the JSON shape of a trade evaluation.
type evaluation struct {
	TradeID          string                 `json:"trade_id"`
	RiskScore        int                    `json:"risk_score"`
	HasCritical      bool                   `json:"has_critical"`
	HasHigh          bool                   `json:"has_high"`
	ShouldBlockTrade bool                   `json:"should_block_trade"`
	Alerts           []models.Alert         `json:"alerts"`
	Note             *models.AnalysisResult `json:"note,omitempty"`
	Degraded         []string               `json:"degraded,omitempty"`
}

func evaluationView(eval behavior.Evaluation) evaluation {
	v := evaluation{
		TradeID:          eval.Trade.ID,
		RiskScore:        eval.RiskScore,
		HasCritical:      eval.HasCritical,
		HasHigh:          eval.HasHigh,
		ShouldBlockTrade: eval.ShouldBlockTrade,
		Alerts:           eval.Alerts,
		Note:             eval.Note,
	}
	for _, err := range eval.Degraded {
		v.Degraded = append(v.Degraded, err.Error())
	}
	return v
}

func printEvaluation(output *Output, eval behavior.Evaluation) {
	if eval.Note != nil {
		printAnalysis(output, *eval.Note)
		output.Println()
	}

	output.Printf("Risk score: %s\n", output.RiskScore(eval.RiskScore))
	if len(eval.Alerts) == 0 {
		output.Success("✓ No behavioral alerts")
	}
	for _, a := range eval.Alerts {
		output.Printf("%s %s (%d)\n", output.Severity(a.Severity), a.Type, a.Score)
		for _, r := range a.Reasons {
			output.Printf("  - %s\n", r)
		}
		if a.Recommendation != "" {
			output.Info("  → %s", a.Recommendation)
		}
	}
	if eval.ShouldBlockTrade {
		output.Println()
		output.Error("✗ Consider standing aside: this trade carries critical behavioral risk")
	}
	for _, err := range eval.Degraded {
		output.Dim("  (%s)", err)
	}
}
