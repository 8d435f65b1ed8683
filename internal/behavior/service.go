// Package behavior runs the behavioral signal engine against the
// collaborators that supply trades, prices and baselines, and hands the
// resulting alerts to the sinks that persist them.
package behavior

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"trading-journal/internal/analysis/passive"
	"trading-journal/internal/analysis/risk"
	"trading-journal/internal/analysis/rules"
	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
	"trading-journal/internal/nlp"
)

const (
	DefaultHistoryLimit   = 200
	DefaultMarketLookback = time.Hour
)

// Inputs is everything a trade is evaluated against. Nil and zero fields
// mean the data was unavailable.
type Inputs struct {
	History  models.TradeHistory
	Note     *models.AnalysisResult
	Market   models.MarketContext
	Baseline *models.Baseline
}

// Evaluation is the outcome of evaluating one trade.
type Evaluation struct {
	risk.Assessment
	Trade   models.Trade
	Note    *models.AnalysisResult
	Results []rules.Result
	Report  *passive.Report
	// Degraded lists the collaborator failures whose terms were dropped.
	Degraded []error
}

// Service evaluates trades and notes.
type Service struct {
	notes    *nlp.Engine
	rules    *rules.Engine
	passive  *passive.Analyzer
	composer *risk.Composer

	trades    TradeSource
	market    MarketData
	baselines BaselineSource
	alerts    AlertSink
	analyses  AnalysisSink

	historyLimit int
	lookback     time.Duration
	logger       zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMarketData sets the market collaborator used by the FOMO terms.
func WithMarketData(m MarketData) Option {
	return func(s *Service) { s.market = m }
}

// WithBaselines sets the baseline collaborator.
func WithBaselines(b BaselineSource) Option {
	return func(s *Service) { s.baselines = b }
}

// WithAlertSink sets where raised alerts are saved.
func WithAlertSink(a AlertSink) Option {
	return func(s *Service) { s.alerts = a }
}

// WithAnalysisSink sets where note analyses are saved.
func WithAnalysisSink(a AnalysisSink) Option {
	return func(s *Service) { s.analyses = a }
}

// WithRules replaces the default detector set.
func WithRules(e *rules.Engine) Option {
	return func(s *Service) { s.rules = e }
}

// WithPassiveAnalyzer replaces the default passive analyzer.
func WithPassiveAnalyzer(a *passive.Analyzer) Option {
	return func(s *Service) { s.passive = a }
}

// WithComposer replaces the default composer.
func WithComposer(c *risk.Composer) Option {
	return func(s *Service) { s.composer = c }
}

// WithHistoryLimit sets how many recent trades are fetched per evaluation.
func WithHistoryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithMarketLookback sets the window for price change and local high.
func WithMarketLookback(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lookback = d
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a service. Only the note engine and the trade source
// are required.
func NewService(notes *nlp.Engine, trades TradeSource, opts ...Option) *Service {
	s := &Service{
		notes:        notes,
		rules:        rules.NewEngine(rules.DefaultDetectors(rules.DefaultParams())...),
		passive:      passive.NewAnalyzer(passive.DefaultConfig()),
		composer:     risk.NewComposer(),
		trades:       trades,
		historyLimit: DefaultHistoryLimit,
		lookback:     DefaultMarketLookback,
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeNote analyzes a single note.
func (s *Service) AnalyzeNote(ctx context.Context, text string) models.AnalysisResult {
	return s.notes.Analyze(ctx, text)
}

// Evaluate runs the detectors, the passive analyzer and the composer over
// a trade and an already fetched snapshot. It performs no I/O.
func (s *Service) Evaluate(trade models.Trade, in Inputs) Evaluation {
	rctx := rules.NewContext(trade, in.History)
	rctx.Note = in.Note
	rctx.Market = in.Market
	rctx.Baseline = in.Baseline

	results := s.rules.Evaluate(rctx)
	report := s.passive.Analyze(in.History)
	return Evaluation{
		Assessment: s.composer.Compose(trade, results, report),
		Trade:      trade,
		Note:       in.Note,
		Results:    results,
		Report:     report,
	}
}

// EvaluateTrade fetches the trader's recent history, market context,
// baseline and note analysis concurrently, evaluates the trade and saves
// the note analysis and alerts. A failing collaborator only drops its
// terms. The returned error reports persistence failures; the evaluation
// is valid even then.
func (s *Service) EvaluateTrade(ctx context.Context, trade models.Trade) (Evaluation, error) {
	logger := logging.WithTrade(logging.WithUser(s.loggerFor(ctx, "evaluate_trade"), trade.UserID), trade)

	var (
		mu       sync.Mutex
		degraded []error
		history  []models.Trade
		change   *float64
		high     *float64
		baseline *models.Baseline
		note     *models.AnalysisResult
	)
	drop := func(collaborator, operation string, err error) {
		cerr := apperrors.NewCollaboratorError(collaborator, operation, err)
		logging.LogCollaboratorFailure(logger, collaborator, operation, err)
		mu.Lock()
		degraded = append(degraded, cerr)
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		trades, err := s.trades.RecentTrades(ctx, trade.UserID, s.historyLimit)
		if err != nil {
			drop("trades", "recent_trades", err)
			return nil
		}
		history = trades
		return nil
	})
	if s.market != nil {
		g.Go(func() error {
			v, err := s.market.PriceChange(ctx, trade.Symbol, trade.EntryTime, s.lookback)
			if err != nil {
				drop("market", "price_change", err)
				return nil
			}
			change = &v
			return nil
		})
		g.Go(func() error {
			v, err := s.market.LocalHigh(ctx, trade.Symbol, trade.EntryTime, s.lookback)
			if err != nil {
				drop("market", "local_high", err)
				return nil
			}
			high = &v
			return nil
		})
	}
	if s.baselines != nil {
		g.Go(func() error {
			b, err := s.baselines.Baseline(ctx, trade)
			if err != nil {
				drop("baseline", "baseline", err)
				return nil
			}
			if !b.IsZero() {
				baseline = &b
			}
			return nil
		})
	}
	if strings.TrimSpace(trade.Notes) != "" {
		g.Go(func() error {
			r := s.notes.Analyze(ctx, trade.Notes)
			note = &r
			return nil
		})
	}
	_ = g.Wait()

	eval := s.Evaluate(trade, Inputs{
		History:  models.NewTradeHistory(history),
		Note:     note,
		Market:   models.MarketContext{PriceChangePct: change, LocalHigh: high},
		Baseline: baseline,
	})
	eval.Degraded = degraded

	for _, a := range eval.Alerts {
		logging.LogAlert(logger, a)
	}
	return eval, s.persist(ctx, eval)
}

func (s *Service) persist(ctx context.Context, eval Evaluation) error {
	var errs []error
	if eval.Note != nil && s.analyses != nil {
		if err := s.analyses.SaveAnalysis(ctx, eval.Trade.ID, *eval.Note); err != nil {
			errs = append(errs, fmt.Errorf("failed to save note analysis: %w", err))
		}
	}
	if len(eval.Alerts) > 0 && s.alerts != nil {
		if err := s.alerts.SaveAlerts(ctx, eval.Alerts); err != nil {
			errs = append(errs, fmt.Errorf("failed to save alerts: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PassiveReport analyzes the trader's recent history.
func (s *Service) PassiveReport(ctx context.Context, userID string) (*passive.Report, error) {
	trades, err := s.trades.RecentTrades(ctx, userID, s.historyLimit)
	if err != nil {
		logging.LogCollaboratorFailure(logging.WithUser(s.loggerFor(ctx, "passive_report"), userID), "trades", "recent_trades", err)
		return nil, apperrors.NewCollaboratorError("trades", "recent_trades", err)
	}
	return s.passive.Analyze(models.NewTradeHistory(trades)), nil
}

// loggerFor prefers the request logger carried by ctx over the service's.
func (s *Service) loggerFor(ctx context.Context, operation string) zerolog.Logger {
	return logging.WithOperation(logging.FromContextOr(ctx, s.logger), operation)
}
