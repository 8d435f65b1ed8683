package behavior

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
	"trading-journal/internal/nlp"
)

var tenAM = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

type fakeTrades struct {
	trades []models.Trade
	err    error
}

func (f *fakeTrades) RecentTrades(_ context.Context, _ string, _ int) ([]models.Trade, error) {
	return f.trades, f.err
}

type fakeMarket struct {
	change, high float64
	err          error
}

func (f *fakeMarket) PriceChange(context.Context, string, time.Time, time.Duration) (float64, error) {
	return f.change, f.err
}

func (f *fakeMarket) LocalHigh(context.Context, string, time.Time, time.Duration) (float64, error) {
	return f.high, f.err
}

type fakeBaselines struct {
	baseline models.Baseline
	err      error
}

func (f *fakeBaselines) Baseline(context.Context, models.Trade) (models.Baseline, error) {
	return f.baseline, f.err
}

type fakeSink struct {
	mu       sync.Mutex
	alerts   []models.Alert
	analyses map[string]models.AnalysisResult
	err      error
}

func (f *fakeSink) SaveAlerts(_ context.Context, alerts []models.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, alerts...)
	return nil
}

func (f *fakeSink) SaveAnalysis(_ context.Context, tradeID string, r models.AnalysisResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.analyses == nil {
		f.analyses = map[string]models.AnalysisResult{}
	}
	f.analyses[tradeID] = r
	return nil
}

func newEngine() *nlp.Engine {
	return nlp.NewEngine(nlp.DefaultEngineConfig(), zerolog.Nop())
}

// revengeSetup is a 3% loss closed at 10:00 followed at 10:05 by a trade
// 1.5x the size with a FOMO note.
func revengeSetup() (models.Trade, []models.Trade) {
	a := models.Trade{ID: "a", UserID: "u1", Symbol: "BTC", Side: models.SideLong, EntryPrice: 100, Quantity: 2, EntryTime: tenAM.Add(-30 * time.Minute)}
	a = a.Close(97, tenAM)
	b := models.Trade{
		ID: "b", UserID: "u1", Symbol: "BTC", Side: models.SideLong, EntryPrice: 100, Quantity: 3,
		EntryTime: tenAM.Add(5 * time.Minute),
		Notes:     "BTC breakout! Phải vào ngay kẻo lỡ! All in luôn!",
	}
	return b, []models.Trade{a, b}
}

func TestEvaluateTrade_RevengeAndFOMO(t *testing.T) {
	trade, history := revengeSetup()
	sink := &fakeSink{}
	svc := NewService(newEngine(), &fakeTrades{trades: history},
		WithMarketData(&fakeMarket{change: 7, high: 150}),
		WithBaselines(&fakeBaselines{}),
		WithAlertSink(sink),
		WithAnalysisSink(sink),
	)

	eval, err := svc.EvaluateTrade(context.Background(), trade)
	require.NoError(t, err)
	assert.Empty(t, eval.Degraded)

	require.NotNil(t, eval.Note)
	assert.Equal(t, models.LangVietnamese, eval.Note.Language)
	assert.True(t, eval.Note.HasFlag(models.EmotionFOMO))

	require.Len(t, eval.Alerts, 2)
	assert.Equal(t, models.AlertRevenge, eval.Alerts[0].Type)
	assert.Equal(t, models.SeverityCritical, eval.Alerts[0].Severity)
	assert.Equal(t, models.AlertFOMO, eval.Alerts[1].Type)
	assert.Equal(t, 70, eval.Alerts[1].Score)
	assert.Equal(t, "b", eval.Alerts[0].TradeID)
	assert.Equal(t, "u1", eval.Alerts[0].UserID)
	assert.NotEmpty(t, eval.Alerts[0].ID)

	assert.GreaterOrEqual(t, eval.RiskScore, 80)
	assert.True(t, eval.ShouldBlockTrade)
	assert.Len(t, eval.Results, 5)
	require.NotNil(t, eval.Report)
	assert.Equal(t, 2, eval.Report.TotalTrades)

	assert.Len(t, sink.alerts, 2)
	assert.Contains(t, sink.analyses, "b")
}

func TestEvaluateTrade_CollaboratorsFail(t *testing.T) {
	trade, _ := revengeSetup()
	down := errors.New("connection refused")
	svc := NewService(newEngine(), &fakeTrades{err: down},
		WithMarketData(&fakeMarket{err: down}),
		WithBaselines(&fakeBaselines{err: down}),
	)

	eval, err := svc.EvaluateTrade(context.Background(), trade)
	require.NoError(t, err)

	require.Len(t, eval.Degraded, 4)
	for _, e := range eval.Degraded {
		var cerr *apperrors.CollaboratorError
		require.True(t, errors.As(e, &cerr))
		assert.ErrorIs(t, e, down)
	}

	fomo := eval.Results[0]
	assert.Equal(t, models.AlertFOMO, fomo.Type)
	assert.Equal(t, 30, fomo.Score, "only the note term survives")
	assert.Empty(t, eval.Alerts)
	assert.Zero(t, eval.RiskScore)
}

func TestEvaluateTrade_PersistFailure(t *testing.T) {
	trade, history := revengeSetup()
	sink := &fakeSink{err: errors.New("disk full")}
	svc := NewService(newEngine(), &fakeTrades{trades: history}, WithAlertSink(sink), WithAnalysisSink(sink))

	eval, err := svc.EvaluateTrade(context.Background(), trade)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save alerts")
	assert.Contains(t, err.Error(), "failed to save note analysis")
	assert.NotEmpty(t, eval.Alerts)
}

func TestEvaluateTrade_ZeroBaselineIgnored(t *testing.T) {
	trade, history := revengeSetup()
	trade.Notes = ""
	svc := NewService(newEngine(), &fakeTrades{trades: history}, WithBaselines(&fakeBaselines{}))

	eval, err := svc.EvaluateTrade(context.Background(), trade)
	require.NoError(t, err)
	assert.Nil(t, eval.Note)
	// Revenge sizing falls back to the history average of 2.
	assert.Equal(t, 100, eval.Results[1].Score)
}

func TestEvaluate_Pure(t *testing.T) {
	trade, history := revengeSetup()
	svc := NewService(newEngine(), &fakeTrades{})

	eval := svc.Evaluate(trade, Inputs{History: models.NewTradeHistory(history)})
	require.Len(t, eval.Alerts, 1)
	assert.Equal(t, models.AlertRevenge, eval.Alerts[0].Type)
	assert.Zero(t, eval.Results[0].Score)

	change := 9.0
	eval = svc.Evaluate(trade, Inputs{
		History: models.NewTradeHistory(history),
		Market:  models.MarketContext{PriceChangePct: &change},
	})
	assert.Equal(t, 40, eval.Results[0].Score)
}

func TestPassiveReport(t *testing.T) {
	_, history := revengeSetup()

	report, err := NewService(newEngine(), &fakeTrades{trades: history}).PassiveReport(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalTrades)
	assert.Equal(t, 1, report.ClosedTrades)

	_, err = NewService(newEngine(), &fakeTrades{err: errors.New("boom")}).PassiveReport(context.Background(), "u1")
	var cerr *apperrors.CollaboratorError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "trades", cerr.Collaborator)
}

func TestAnalyzeNote(t *testing.T) {
	svc := NewService(newEngine(), &fakeTrades{})
	r := svc.AnalyzeNote(context.Background(), "   ")
	assert.Equal(t, models.EmptyAnalysis(), r)
}

type flakyMarket struct {
	calls     atomic.Int32
	failTimes int32
	err       error
}

func (f *flakyMarket) PriceChange(context.Context, string, time.Time, time.Duration) (float64, error) {
	if f.calls.Add(1) <= f.failTimes {
		return 0, f.err
	}
	return 6, nil
}

func (f *flakyMarket) LocalHigh(ctx context.Context, symbol string, at time.Time, lookback time.Duration) (float64, error) {
	return f.PriceChange(ctx, symbol, at, lookback)
}

func TestRetryingMarketData(t *testing.T) {
	flaky := &flakyMarket{failTimes: 2, err: errors.New("timeout")}
	m := NewRetryingMarketData(flaky, 5*time.Second)

	v, err := m.PriceChange(context.Background(), "BTC", tenAM, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
	assert.EqualValues(t, 3, flaky.calls.Load())

	missing := &flakyMarket{failTimes: 100, err: apperrors.ErrMarketDataUnavailable}
	m = NewRetryingMarketData(missing, 5*time.Second)
	_, err = m.LocalHigh(context.Background(), "BTC", tenAM, time.Hour)
	assert.ErrorIs(t, err, apperrors.ErrMarketDataUnavailable)
	assert.EqualValues(t, 1, missing.calls.Load())
}

func TestRetryingMarketData_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	flaky := &flakyMarket{failTimes: 100, err: errors.New("timeout")}

	_, err := NewRetryingMarketData(flaky, time.Minute).PriceChange(ctx, "BTC", tenAM, time.Hour)
	assert.Error(t, err)
	assert.EqualValues(t, 1, flaky.calls.Load())
}

func TestEvaluate_UnsavedTradesKeepHistory(t *testing.T) {
	trade, history := revengeSetup()
	trade.ID = ""
	history = []models.Trade{history[0]}
	history[0].ID = ""
	svc := NewService(newEngine(), &fakeTrades{})

	eval := svc.Evaluate(trade, Inputs{History: models.NewTradeHistory(history)})
	require.Len(t, eval.Alerts, 1)
	assert.Equal(t, models.AlertRevenge, eval.Alerts[0].Type)
	assert.Equal(t, models.SeverityCritical, eval.Alerts[0].Severity)
}

func TestEvaluateTrade_LogsThroughContextLogger(t *testing.T) {
	trade, history := revengeSetup()
	svc := NewService(newEngine(), &fakeTrades{trades: history}, WithBaselines(&fakeBaselines{}))

	var buf bytes.Buffer
	ctx := logging.WithLogger(context.Background(), zerolog.New(&buf).With().Str("command", "journal trade add").Logger())
	eval, err := svc.EvaluateTrade(ctx, trade)
	require.NoError(t, err)
	require.NotEmpty(t, eval.Alerts)

	out := buf.String()
	assert.Contains(t, out, `"message":"Alert raised"`)
	assert.Contains(t, out, `"operation":"evaluate_trade"`)
	assert.Contains(t, out, `"command":"journal trade add"`)
	assert.Contains(t, out, `"trade_id":"b"`)
}
