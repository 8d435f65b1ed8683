package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"trading-journal/internal/models"
)

// addAnalyzeCommands adds note analysis commands.
func addAnalyzeCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newAnalyzeCmd(app))
}

func newAnalyzeCmd(app *App) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "analyze <note...>",
		Short: "Analyze a trading note",
		Long: `Score a free-text trading note for sentiment, emotions and
discipline. The language is detected unless --lang is given.`,
		Example: `  journal analyze "Vào lệnh vì sợ lỡ cơ hội, không có kế hoạch"
  journal analyze --lang en "Followed my plan, stop loss at support"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Notes == nil {
				return errJournalUnavailable
			}

			hint, err := parseLanguage(lang)
			if err != nil {
				return err
			}

			ctx, cancel := app.commandContext(cmd)
			defer cancel()

			result := app.Notes.AnalyzeWithHint(ctx, strings.Join(args, " "), hint)
			if output.IsJSON() {
				return output.JSON(result)
			}
			printAnalysis(output, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "note language: vi or en (default: detect)")
	return cmd
}

func parseLanguage(s string) (models.Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "vi", "vietnamese":
		return models.LangVietnamese, nil
	case "en", "english":
		return models.LangEnglish, nil
	default:
		return "", fmt.Errorf("unsupported language %q (use vi or en)", s)
	}
}

func printAnalysis(output *Output, r models.AnalysisResult) {
	output.Bold("Note Analysis")
	output.Printf("  Language:   %s\n", r.Language)
	output.Printf("  Sentiment:  %s\n", FormatSentiment(r.SentimentScore, r.SentimentLabel))
	output.Printf("  Quality:    %.2f\n", r.QualityScore)
	output.Printf("  Emotions:   %s\n", FormatEmotions(r.Emotions))
	if len(r.BehavioralFlags) > 0 {
		output.Printf("  Flags:      %s\n", output.Red(strings.Join(r.BehavioralFlags, ", ")))
	}

	for _, e := range r.Emotions {
		if len(e.MatchedTerms) > 0 {
			output.Dim("  %s: %s", e.Type, strings.Join(e.MatchedTerms, ", "))
		}
	}

	if len(r.Warnings) > 0 {
		output.Println()
		for _, w := range r.Warnings {
			output.Warning("⚠ %s", w)
		}
	}
}
