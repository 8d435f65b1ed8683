// Package config provides configuration management for the trading journal.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // time zones resolve on hosts without zoneinfo

	"github.com/spf13/viper"

	apperrors "trading-journal/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Journal     JournalConfig  `mapstructure:"journal"`
	Logging     LoggingConfig  `mapstructure:"logging"`
	NLP         NLPConfig      `mapstructure:"nlp"`
	Detectors   DetectorConfig `mapstructure:"detectors"`
	UI          UIConfig       `mapstructure:"ui"`
	Credentials Credentials    `mapstructure:"-" json:"-"` // Loaded separately

	dir string
}

// JournalConfig holds journal-wide settings.
type JournalConfig struct {
	UserID       string `mapstructure:"user_id"`
	DBPath       string `mapstructure:"db_path"` // empty means journal.db in the config dir
	HistoryLimit int    `mapstructure:"history_limit"`
	Timezone     string `mapstructure:"timezone"` // IANA name for time-of-day buckets
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// NLPConfig holds note analysis configuration.
type NLPConfig struct {
	Classifier                  string  `mapstructure:"classifier"` // "none", "openai"
	Model                       string  `mapstructure:"model"`
	LexiconFile                 string  `mapstructure:"lexicon_file"`
	MinLanguageConfidence       float64 `mapstructure:"min_language_confidence"`
	ConfidencePerMatch          float64 `mapstructure:"confidence_per_match"`
	SecondaryConfidencePerMatch float64 `mapstructure:"secondary_confidence_per_match"`
	CriticalEmotionBoost        float64 `mapstructure:"critical_emotion_boost"`
	FlagThreshold               float64 `mapstructure:"flag_threshold"`
	NegationWindow              int     `mapstructure:"negation_window"`
}

// DetectorConfig holds the behavioral detector thresholds.
type DetectorConfig struct {
	FOMOPriceChangePct    float64 `mapstructure:"fomo_price_change_pct"`
	FOMONearHighPct       float64 `mapstructure:"fomo_near_high_pct"`
	RevengeLossPct        float64 `mapstructure:"revenge_loss_pct"`
	RevengeWindowMinutes  int     `mapstructure:"revenge_window_minutes"`
	SizeIncreaseRatio     float64 `mapstructure:"size_increase_ratio"`
	TiltDrawdownPct       float64 `mapstructure:"tilt_drawdown_pct"`
	TiltMinSessionTrades  int     `mapstructure:"tilt_min_session_trades"`
	TiltSessionWinRate    float64 `mapstructure:"tilt_session_win_rate"`
	MaxTradesPerDay       int     `mapstructure:"max_trades_per_day"`
	WinStreakLength       int     `mapstructure:"win_streak_length"`
	MarketLookbackMinutes int     `mapstructure:"market_lookback_minutes"`
	MarketRetrySeconds    int     `mapstructure:"market_retry_seconds"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	TimeFormat   string `mapstructure:"time_format"`
}

// Credentials holds API credentials.
type Credentials struct {
	OpenAI OpenAICredentials `mapstructure:"openai"`
}

// OpenAICredentials holds OpenAI API credentials.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trading-journal"
	}
	return filepath.Join(home, ".config", "trading-journal")
}

// ConfigPath returns the path of the main config file in configDir.
func ConfigPath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. Missing files
// are created from templates and then read.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{dir: configDir}

	// Load main config
	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, apperrors.Wrap(err, "loading config.toml")
	}

	// Load credentials
	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, apperrors.Wrap(err, "loading credentials.toml")
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)
	cfg.resolvePaths()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.Wrap(err, "validating config")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("journal.user_id", "default")
	v.SetDefault("journal.db_path", "")
	v.SetDefault("journal.history_limit", 200)
	v.SetDefault("journal.timezone", "UTC")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", false)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", "")
	v.SetDefault("logging.max_size", 50)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)

	v.SetDefault("nlp.classifier", "none")
	v.SetDefault("nlp.model", "gpt-4o-mini")
	v.SetDefault("nlp.lexicon_file", "")
	v.SetDefault("nlp.min_language_confidence", 0.5)
	v.SetDefault("nlp.confidence_per_match", 0.3)
	v.SetDefault("nlp.secondary_confidence_per_match", 0.2)
	v.SetDefault("nlp.critical_emotion_boost", 1.2)
	v.SetDefault("nlp.flag_threshold", 0.3)
	v.SetDefault("nlp.negation_window", 4)

	v.SetDefault("detectors.fomo_price_change_pct", 5.0)
	v.SetDefault("detectors.fomo_near_high_pct", 2.0)
	v.SetDefault("detectors.revenge_loss_pct", 2.0)
	v.SetDefault("detectors.revenge_window_minutes", 10)
	v.SetDefault("detectors.size_increase_ratio", 1.3)
	v.SetDefault("detectors.tilt_drawdown_pct", 5.0)
	v.SetDefault("detectors.tilt_min_session_trades", 5)
	v.SetDefault("detectors.tilt_session_win_rate", 0.3)
	v.SetDefault("detectors.max_trades_per_day", 10)
	v.SetDefault("detectors.win_streak_length", 3)
	v.SetDefault("detectors.market_lookback_minutes", 60)
	v.SetDefault("detectors.market_retry_seconds", 2)

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.time_format", "2006-01-02 15:04")
}

func loadConfigFile(configDir string, cfg *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !apperrors.As(err, &notFound) {
			return err
		}
		// Config file not found, create template and read it back
		if err := createTemplateConfig(configDir); err != nil {
			return err
		}
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}

	return v.Unmarshal(cfg)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if apperrors.As(err, &notFound) {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("JOURNAL_USER_ID"); v != "" {
		cfg.Journal.UserID = v
	}
	if v := os.Getenv("JOURNAL_DB_PATH"); v != "" {
		cfg.Journal.DBPath = v
	}
	if v := os.Getenv("JOURNAL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func (c *Config) resolvePaths() {
	if c.Journal.DBPath == "" {
		c.Journal.DBPath = filepath.Join(c.dir, "journal.db")
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = filepath.Join(c.dir, "logs", "journal.log")
	}
}

// Dir returns the directory the configuration was loaded from.
func (c *Config) Dir() string {
	return c.dir
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", apperrors.ErrConfigInvalid, fmt.Sprintf(format, args...))
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Journal.UserID == "" {
		return invalid("journal.user_id is required")
	}
	if c.Journal.HistoryLimit <= 0 {
		return invalid("journal.history_limit must be positive")
	}
	if _, err := time.LoadLocation(c.Journal.Timezone); err != nil {
		return invalid("journal.timezone %q: %v", c.Journal.Timezone, err)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("invalid log level: %s (must be debug, info, warn or error)", c.Logging.Level)
	}

	switch c.NLP.Classifier {
	case "", "none":
	case "openai":
		if c.Credentials.OpenAI.APIKey == "" {
			return invalid("nlp.classifier is openai but no OpenAI API key is set")
		}
	default:
		return invalid("invalid classifier: %s (must be 'none' or 'openai')", c.NLP.Classifier)
	}
	if !inUnit(c.NLP.MinLanguageConfidence) {
		return invalid("nlp.min_language_confidence must be between 0 and 1")
	}
	if c.NLP.ConfidencePerMatch <= 0 || c.NLP.ConfidencePerMatch > 1 {
		return invalid("nlp.confidence_per_match must be in (0, 1]")
	}
	if c.NLP.SecondaryConfidencePerMatch <= 0 || c.NLP.SecondaryConfidencePerMatch > 1 {
		return invalid("nlp.secondary_confidence_per_match must be in (0, 1]")
	}
	if c.NLP.CriticalEmotionBoost < 1 || c.NLP.CriticalEmotionBoost > 2 {
		return invalid("nlp.critical_emotion_boost must be between 1 and 2")
	}
	if !inUnit(c.NLP.FlagThreshold) {
		return invalid("nlp.flag_threshold must be between 0 and 1")
	}
	if c.NLP.NegationWindow < 0 || c.NLP.NegationWindow > 10 {
		return invalid("nlp.negation_window must be between 0 and 10")
	}

	d := c.Detectors
	if d.FOMOPriceChangePct <= 0 || d.FOMONearHighPct <= 0 || d.RevengeLossPct <= 0 || d.TiltDrawdownPct <= 0 {
		return invalid("detector percentage thresholds must be positive")
	}
	if d.SizeIncreaseRatio < 1 {
		return invalid("detectors.size_increase_ratio must be at least 1")
	}
	if !inUnit(d.TiltSessionWinRate) {
		return invalid("detectors.tilt_session_win_rate must be between 0 and 1")
	}
	if d.RevengeWindowMinutes <= 0 || d.MarketLookbackMinutes <= 0 {
		return invalid("detector windows must be positive")
	}
	if d.TiltMinSessionTrades <= 0 || d.WinStreakLength <= 0 || d.MaxTradesPerDay < 0 || d.MarketRetrySeconds < 0 {
		return invalid("detector counts must be positive")
	}

	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Journal.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
