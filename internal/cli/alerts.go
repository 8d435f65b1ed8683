package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trading-journal/internal/models"
)

// addAlertCommands adds behavioral alert commands.
func addAlertCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Review behavioral alerts",
	}

	cmd.AddCommand(newAlertsListCmd(app))
	cmd.AddCommand(newAlertsAckCmd(app))

	rootCmd.AddCommand(cmd)
}

func newAlertsListCmd(app *App) *cobra.Command {
	var (
		tradeID   string
		alertType string
		all       bool
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List alerts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			typ, err := parseAlertType(alertType)
			if err != nil {
				return err
			}

			alerts, err := app.Store.GetAlerts(ctx, models.AlertFilter{
				UserID:         app.Config.Journal.UserID,
				TradeID:        tradeID,
				Type:           typ,
				Unacknowledged: !all,
				Limit:          limit,
			})
			if err != nil {
				output.Error("Failed to fetch alerts: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(alerts)
			}
			if len(alerts) == 0 {
				output.Success("✓ No open alerts")
				return nil
			}
			printAlerts(output, app.times(), alerts)
			return nil
		},
	}

	cmd.Flags().StringVar(&tradeID, "trade", "", "only alerts for this trade")
	cmd.Flags().StringVar(&alertType, "type", "", "fomo, revenge, tilt, overconfidence or overtrading")
	cmd.Flags().BoolVar(&all, "all", false, "include acknowledged alerts")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of alerts")

	return cmd
}

func newAlertsAckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ack <alert-id...>",
		Short: "Acknowledge alerts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.requireStore(); err != nil {
				return err
			}
			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			for _, id := range args {
				if err := app.Store.AcknowledgeAlert(ctx, id); err != nil {
					output.Error("Failed to acknowledge %s: %v", id, err)
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"acknowledged": args})
			}
			output.Success("✓ Acknowledged %d alert(s)", len(args))
			return nil
		},
	}
}

func parseAlertType(s string) (models.AlertType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "fomo":
		return models.AlertFOMO, nil
	case "revenge", "revenge_trading":
		return models.AlertRevenge, nil
	case "tilt":
		return models.AlertTilt, nil
	case "overconfidence":
		return models.AlertOverconfidence, nil
	case "overtrading":
		return models.AlertOvertrading, nil
	default:
		return "", fmt.Errorf("unknown alert type %q", s)
	}
}

func printAlerts(output *Output, times timeFormatter, alerts []models.Alert) {
	table := NewTable(output, "ID", "Time", "Type", "Severity", "Score", "Reason", "Ack")
	for _, a := range alerts {
		ack := ""
		if a.Acknowledged {
			ack = "✓"
		}
		table.AddRow(
			a.ID,
			times.Format(a.CreatedAt),
			string(a.Type),
			output.Severity(a.Severity),
			fmt.Sprintf("%d", a.Score),
			Truncate(summarizeReasons(a.Reasons), 50),
			ack,
		)
	}
	table.Render()
}

// summarizeReasons shows the first reason and how many more there are.
func summarizeReasons(reasons []string) string {
	switch len(reasons) {
	case 0:
		return "-"
	case 1:
		return reasons[0]
	default:
		return fmt.Sprintf("%s (+%d)", reasons[0], len(reasons)-1)
	}
}
