// Package nlp analyzes free-text trading notes for sentiment, emotions and
// discipline. Everything in it is stateless after construction and safe
// for concurrent use.
package nlp

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
	"trading-journal/internal/security"
)

// EngineConfig wires the components of an Engine. Zero fields fall back
// to defaults.
type EngineConfig struct {
	Lexicon        *Lexicon
	Detector       LanguageDetector
	Classifier     Classifier
	NegationWindow int
	Scorer         ScorerConfig
	Quality        QualityConfig
}

// DefaultEngineConfig returns the keyword-only configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Lexicon:        DefaultLexicon(),
		Detector:       NewStatisticalDetector(0.5),
		Classifier:     NopClassifier{},
		NegationWindow: DefaultNegationWindow,
		Scorer:         DefaultScorerConfig(),
		Quality:        DefaultQualityConfig(),
	}
}

// Engine runs the full note analysis pipeline.
type Engine struct {
	detector   LanguageDetector
	matcher    *Matcher
	scorer     *Scorer
	quality    *QualityScorer
	classifier Classifier
	logger     zerolog.Logger
}

// NewEngine creates an analysis engine.
func NewEngine(cfg EngineConfig, logger zerolog.Logger) *Engine {
	def := DefaultEngineConfig()
	if cfg.Lexicon == nil {
		cfg.Lexicon = def.Lexicon
	}
	if cfg.Detector == nil {
		cfg.Detector = def.Detector
	}
	if cfg.Classifier == nil {
		cfg.Classifier = def.Classifier
	}
	if cfg.NegationWindow <= 0 {
		cfg.NegationWindow = def.NegationWindow
	}
	if cfg.Scorer == (ScorerConfig{}) {
		cfg.Scorer = def.Scorer
	}
	if cfg.Quality == (QualityConfig{}) {
		cfg.Quality = def.Quality
	}

	matcher := NewMatcher(cfg.Lexicon, WithNegationWindow(cfg.NegationWindow))
	return &Engine{
		detector:   cfg.Detector,
		matcher:    matcher,
		scorer:     NewScorer(cfg.Scorer),
		quality:    NewQualityScorer(cfg.Quality, matcher),
		classifier: cfg.Classifier,
		logger:     logger.With().Str("component", "nlp").Logger(),
	}
}

// Analyze scores a note. Blank text yields the canonical empty result,
// never an error.
func (e *Engine) Analyze(ctx context.Context, text string) models.AnalysisResult {
	return e.AnalyzeWithHint(ctx, text, "")
}

// AnalyzeWithHint scores a note whose language the caller already knows.
// An unsupported hint is ignored and the language is detected instead.
func (e *Engine) AnalyzeWithHint(ctx context.Context, text string, hint models.Language) models.AnalysisResult {
	if strings.TrimSpace(text) == "" {
		return models.EmptyAnalysis()
	}
	start := time.Now()
	logger := logging.WithOperation(logging.FromContextOr(ctx, e.logger), "analyze_note")

	lang := hint
	if lang != models.LangVietnamese && lang != models.LangEnglish {
		lang = e.detector.Detect(text)
	}

	normalized := Normalize(text)
	matches := e.matcher.matchBilingual(normalized, lang)
	emotions := e.scorer.Emotions(matches)

	sentiment := e.scorer.Sentiment(matches)
	if res, err := e.classifier.Classify(ctx, text, lang); err == nil {
		sentiment = e.scorer.Blend(sentiment, res)
	} else if !apperrors.Is(err, apperrors.ErrClassifierUnavailable) {
		logger.Warn().Str("error", security.RedactError(err)).Msg("Sentiment classifier failed, using keywords only")
	}

	result := models.AnalysisResult{
		Language:        lang,
		SentimentScore:  sentiment,
		SentimentLabel:  e.scorer.Label(sentiment),
		Emotions:        emotions,
		BehavioralFlags: e.scorer.Flags(emotions),
		QualityScore:    e.quality.score(normalized, emotions),
		Warnings:        Warnings(lang, emotions),
	}

	logging.LogAnalysis(logger, result, time.Since(start))

	return result
}
