package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"trading-journal/internal/analysis/passive"
	"trading-journal/internal/analysis/risk"
	"trading-journal/internal/analysis/rules"
	"trading-journal/internal/behavior"
	"trading-journal/internal/config"
	"trading-journal/internal/nlp"
	"trading-journal/internal/resilience"
	"trading-journal/internal/store"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   *store.SQLiteStore
	Notes   *nlp.Engine
	Service *behavior.Service
	Now     func() time.Time
}

// NewApp opens the journal database and wires the analysis pipeline from
// the configuration.
func NewApp(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Journal.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := store.NewSQLiteStore(cfg.Journal.DBPath)
	if err != nil {
		return nil, err
	}

	notes, err := newNoteEngine(cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	d := cfg.Detectors
	market := behavior.NewRetryingMarketData(db, time.Duration(d.MarketRetrySeconds)*time.Second)
	service := behavior.NewService(notes, db,
		behavior.WithMarketData(market),
		behavior.WithBaselines(db),
		behavior.WithAlertSink(db),
		behavior.WithAnalysisSink(db),
		behavior.WithRules(rules.NewEngine(rules.DefaultDetectors(detectorParams(d))...)),
		behavior.WithPassiveAnalyzer(passive.NewAnalyzer(passiveConfig(cfg))),
		behavior.WithComposer(risk.NewComposer()),
		behavior.WithHistoryLimit(cfg.Journal.HistoryLimit),
		behavior.WithMarketLookback(time.Duration(d.MarketLookbackMinutes)*time.Minute),
		behavior.WithLogger(logger),
	)

	logger.Debug().
		Str("db", cfg.Journal.DBPath).
		Str("classifier", cfg.NLP.Classifier).
		Msg("Journal initialized")

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   db,
		Notes:   notes,
		Service: service,
		Now:     time.Now,
	}, nil
}

// Close releases the journal database.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

func newNoteEngine(cfg *config.Config, logger zerolog.Logger) (*nlp.Engine, error) {
	engineCfg := nlp.DefaultEngineConfig()

	if cfg.NLP.LexiconFile != "" {
		path := cfg.NLP.LexiconFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Dir(), path)
		}
		lex, err := nlp.LoadLexicon(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load lexicon: %w", err)
		}
		engineCfg.Lexicon = lex
	}

	engineCfg.Detector = nlp.NewStatisticalDetector(cfg.NLP.MinLanguageConfidence)
	if cfg.NLP.Classifier == "openai" {
		breaker := resilience.NewCircuitBreaker("openai", resilience.DefaultCircuitBreakerConfig())
		engineCfg.Classifier = nlp.NewBreakerClassifier(
			nlp.NewOpenAIClassifier(cfg.Credentials.OpenAI.APIKey, cfg.NLP.Model), breaker, logger)
		logger.Debug().Str("model", cfg.NLP.Model).Msg("OpenAI sentiment classifier initialized")
	}
	engineCfg.NegationWindow = cfg.NLP.NegationWindow
	engineCfg.Scorer.ConfidencePerMatch = cfg.NLP.ConfidencePerMatch
	engineCfg.Scorer.SecondaryConfidencePerMatch = cfg.NLP.SecondaryConfidencePerMatch
	engineCfg.Scorer.CriticalBoost = cfg.NLP.CriticalEmotionBoost
	engineCfg.Scorer.FlagThreshold = cfg.NLP.FlagThreshold

	return nlp.NewEngine(engineCfg, logger), nil
}

func detectorParams(d config.DetectorConfig) rules.Params {
	p := rules.DefaultParams()
	p.FOMOPriceChangePct = d.FOMOPriceChangePct
	p.FOMONearHighPct = d.FOMONearHighPct
	p.RevengeLossPct = d.RevengeLossPct
	p.RevengeWindow = time.Duration(d.RevengeWindowMinutes) * time.Minute
	p.SizeIncreaseRatio = d.SizeIncreaseRatio
	p.TiltDrawdownPct = d.TiltDrawdownPct
	p.TiltMinSessionTrades = d.TiltMinSessionTrades
	p.TiltSessionWinRate = d.TiltSessionWinRate
	p.MaxTradesPerDay = d.MaxTradesPerDay
	p.WinStreakLength = d.WinStreakLength
	return p
}

func passiveConfig(cfg *config.Config) passive.Config {
	c := passive.DefaultConfig()
	c.RevengeSizeRatio = cfg.Detectors.SizeIncreaseRatio
	c.Location = cfg.Location()
	return c
}
