package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trading-journal/internal/config"
	"trading-journal/internal/logging"
	"trading-journal/internal/security"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-01"
)

// commandTimeout bounds every command's database and network work.
const commandTimeout = 30 * time.Second

// NewRootCmd creates the root command for the CLI. A journal that cannot
// be opened leaves only the commands that do not need it working.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app, err := NewApp(cfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize journal, some commands are unavailable")
		app = &App{Config: cfg, Logger: logger, Now: time.Now}
		if notes, nerr := newNoteEngine(cfg, logger); nerr == nil {
			app.Notes = notes
		}
	}
	return newRootCmd(app)
}

func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Trading journal with behavioral signal detection",
		Long: `Trading journal records trades and notes and watches them for
behavioral risk: FOMO, revenge trading, tilt, overconfidence and overtrading.

Notes may be written in Vietnamese or English.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/trading-journal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("no-color", !app.Config.UI.ColorEnabled, "disable colored output")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addAnalyzeCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addAlertCommands(rootCmd, app)
	addReportCommands(rootCmd, app)
	addMarketCommands(rootCmd, app)

	return rootCmd
}

// ConfigDirFromArgs returns the value of --config in args. The
// configuration and the logger are built before cobra parses flags.
func ConfigDirFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// DebugFromArgs reports whether --debug is among args.
func DebugFromArgs(args []string) bool {
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if arg == "--debug" || arg == "--debug=true" {
			return true
		}
	}
	return false
}

var errJournalUnavailable = errors.New("journal database is not available")

// requireStore fails commands that need the journal when it did not open.
func (a *App) requireStore() error {
	if a.Store == nil || a.Service == nil {
		return errJournalUnavailable
	}
	return nil
}

// commandContext bounds a command's work and carries the request logger,
// tagged with the user and the command being run.
func (a *App) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithUser(a.Logger, a.Config.Journal.UserID).With().
		Str("command", cmd.CommandPath()).
		Logger()
	return context.WithTimeout(logging.WithLogger(ctx, logger), commandTimeout)
}

func (a *App) times() timeFormatter {
	return newTimeFormatter(a.Config.Location(), a.Config.UI.TimeFormat)
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("Trading Journal v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate the journal configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path := config.ConfigPath(app.Config.Dir())
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": path})
			}
			output.Println(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Journal")
	output.Printf("  User:            %s\n", cfg.Journal.UserID)
	output.Printf("  Database:        %s\n", cfg.Journal.DBPath)
	output.Printf("  History limit:   %d\n", cfg.Journal.HistoryLimit)
	output.Printf("  Timezone:        %s\n", cfg.Journal.Timezone)
	output.Println()

	output.Bold("Note Analysis")
	output.Printf("  Classifier:      %s\n", cfg.NLP.Classifier)
	if cfg.NLP.Classifier == "openai" {
		output.Printf("  Model:           %s\n", cfg.NLP.Model)
		output.Printf("  API key:         %s\n", security.MaskCredential(cfg.Credentials.OpenAI.APIKey))
	}
	lexicon := cfg.NLP.LexiconFile
	if lexicon == "" {
		lexicon = "built-in"
	}
	output.Printf("  Lexicon:         %s\n", lexicon)
	output.Printf("  Negation window: %d tokens\n", cfg.NLP.NegationWindow)
	output.Println()

	d := cfg.Detectors
	output.Bold("Detectors")
	output.Printf("  FOMO move:       %.1f%%\n", d.FOMOPriceChangePct)
	output.Printf("  Revenge loss:    %.1f%% within %d min\n", d.RevengeLossPct, d.RevengeWindowMinutes)
	output.Printf("  Size increase:   %.2fx\n", d.SizeIncreaseRatio)
	output.Printf("  Tilt drawdown:   %.1f%%\n", d.TiltDrawdownPct)
	output.Printf("  Win streak:      %d\n", d.WinStreakLength)
	output.Printf("  Max trades/day:  %d\n", d.MaxTradesPerDay)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  File:            %s\n", cfg.Logging.FilePath)
}
