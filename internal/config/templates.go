package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trading Journal Configuration

[journal]
# Trader whose journal the CLI works on
user_id = "default"
# SQLite database path; empty means journal.db next to this file
db_path = ""
# Number of recent trades fetched for each evaluation
history_limit = 200
# Time zone for hour-of-day and weekday statistics
timezone = "UTC"

[logging]
# Log level: debug, info, warn, error
level = "info"
# Log to stderr
console = false
# Log to a rotating file
file = true
# Empty means logs/journal.log next to this file
file_path = ""
max_size = 50
max_backups = 5
max_age = 30

[nlp]
# Optional sentiment classifier: "none" or "openai"
classifier = "none"
model = "gpt-4o-mini"
# Optional TOML keyword tables replacing the built-in ones
lexicon_file = ""
# Statistical language detection is trusted at or above this confidence
min_language_confidence = 0.5
# Emotion confidence per matched term (note language / other language)
confidence_per_match = 0.3
secondary_confidence_per_match = 0.2
# FOMO, REVENGE and MANIPULATION confidence is multiplied by this in the note language
critical_emotion_boost = 1.2
# A dangerous emotion becomes a behavioral flag above this confidence
flag_threshold = 0.3
# Tokens scanned before a term for a negation word (0 uses the default)
negation_window = 4

[detectors]
fomo_price_change_pct = 5.0
fomo_near_high_pct = 2.0
revenge_loss_pct = 2.0
revenge_window_minutes = 10
size_increase_ratio = 1.3
tilt_drawdown_pct = 5.0
tilt_min_session_trades = 5
tilt_session_win_rate = 0.3
max_trades_per_day = 10
win_streak_length = 3
# Price history window for the FOMO detector
market_lookback_minutes = 60
# Total time spent retrying a failing price lookup
market_retry_seconds = 2

[ui]
# Enable colored output
color_enabled = true
# Time format for tables
time_format = "2006-01-02 15:04"
`

const credentialsTemplate = `# Trading Journal Credentials
# WARNING: Keep this file secure! Do not commit to version control.

[openai]
api_key = ""
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	// Use restricted permissions for credentials file
	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}

	return nil
}
