package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trading-journal/internal/models"
)

// addMarketCommands adds the market data commands that feed the FOMO
// detector.
func addMarketCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Record market candles used for FOMO checks",
	}

	cmd.AddCommand(newMarketRecordCmd(app))
	cmd.AddCommand(newMarketShowCmd(app))

	rootCmd.AddCommand(cmd)
}

func newMarketRecordCmd(app *App) *cobra.Command {
	var (
		at                          string
		open, high, low, closePrice float64
		volume                      float64
	)

	cmd := &cobra.Command{
		Use:     "record <symbol>",
		Short:   "Record one OHLCV candle",
		Example: `  journal market record VNM --at "2026-10-16 09:15" --open 70 --high 72.8 --low 69.9 --close 72.5`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			ts, err := parseTime(at, app.Config.Location(), app.Now())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("high") {
				high = max(open, closePrice)
			}
			if !cmd.Flags().Changed("low") {
				low = min(open, closePrice)
			}

			candle := models.Candle{
				Symbol:    strings.ToUpper(strings.TrimSpace(args[0])),
				Timestamp: ts,
				Open:      open,
				High:      high,
				Low:       low,
				Close:     closePrice,
				Volume:    volume,
			}
			if err := validateCandle(candle); err != nil {
				return err
			}
			if err := app.Store.SaveCandles(ctx, []models.Candle{candle}); err != nil {
				output.Error("Failed to save candle: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(candle)
			}
			output.Success("✓ %s candle recorded at %s", candle.Symbol, app.times().Format(candle.Timestamp))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "candle time (default: now)")
	cmd.Flags().Float64Var(&open, "open", 0, "open price")
	cmd.Flags().Float64Var(&high, "high", 0, "high price (default: max of open and close)")
	cmd.Flags().Float64Var(&low, "low", 0, "low price (default: min of open and close)")
	cmd.Flags().Float64Var(&closePrice, "close", 0, "close price")
	cmd.Flags().Float64Var(&volume, "volume", 0, "traded volume")
	_ = cmd.MarkFlagRequired("open")
	_ = cmd.MarkFlagRequired("close")

	return cmd
}

func validateCandle(c models.Candle) error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if c.Open <= 0 || c.Close <= 0 || c.Low <= 0 {
		return fmt.Errorf("prices must be positive")
	}
	if c.High < max(c.Open, c.Close) || c.Low > min(c.Open, c.Close) {
		return fmt.Errorf("high must be at least open and close, low at most")
	}
	if c.Volume < 0 {
		return fmt.Errorf("volume must not be negative")
	}
	return nil
}

func newMarketShowCmd(app *App) *cobra.Command {
	var lookback time.Duration

	cmd := &cobra.Command{
		Use:   "show <symbol>",
		Short: "Show recent candles and the FOMO context they give",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			symbol := strings.ToUpper(strings.TrimSpace(args[0]))
			now := app.Now()
			candles, err := app.Store.GetCandles(ctx, symbol, now.Add(-lookback), now)
			if err != nil {
				return err
			}

			var change, high *float64
			if v, err := app.Store.PriceChange(ctx, symbol, now, lookback); err == nil {
				change = &v
			}
			if v, err := app.Store.LocalHigh(ctx, symbol, now, lookback); err == nil {
				high = &v
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":           symbol,
					"candles":          candles,
					"price_change_pct": change,
					"local_high":       high,
				})
			}
			if len(candles) == 0 {
				output.Info("No %s candles in the last %s.", symbol, FormatDuration(lookback))
				return nil
			}

			times := app.times()
			table := NewTable(output, "Time", "Open", "High", "Low", "Close", "Volume")
			for _, c := range candles {
				table.AddRow(
					times.Format(c.Timestamp),
					FormatPrice(c.Open),
					FormatPrice(c.High),
					FormatPrice(c.Low),
					FormatPrice(c.Close),
					FormatQuantity(c.Volume),
				)
			}
			table.Render()
			output.Println()
			if change != nil {
				output.Printf("  Change: %s\n", output.PnL(*change))
			}
			if high != nil {
				output.Printf("  High:   %s\n", FormatPrice(*high))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&lookback, "lookback", time.Hour, "window to show")
	return cmd
}
