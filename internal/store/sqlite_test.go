package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/behavior"
	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

var (
	_ JournalStore            = (*SQLiteStore)(nil)
	_ behavior.TradeSource    = (*SQLiteStore)(nil)
	_ behavior.MarketData     = (*SQLiteStore)(nil)
	_ behavior.BaselineSource = (*SQLiteStore)(nil)
	_ behavior.AlertSink      = (*SQLiteStore)(nil)
	_ behavior.AnalysisSink   = (*SQLiteStore)(nil)
)

var clock = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"), WithClock(func() time.Time { return clock }))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func openTrade(id, user string, entry time.Time, qty float64) *models.Trade {
	return &models.Trade{
		ID:         id,
		UserID:     user,
		Symbol:     "BTC",
		Side:       models.SideLong,
		EntryPrice: 100,
		Quantity:   qty,
		EntryTime:  entry,
		Notes:      "theo plan",
	}
}

func TestSaveAndGetTrade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tr := openTrade("", "u1", clock.Add(-time.Hour), 2)
	require.NoError(t, s.SaveTrade(ctx, tr))
	require.NotEmpty(t, tr.ID)

	got, err := s.GetTrade(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, models.SideLong, got.Side)
	assert.True(t, got.EntryTime.Equal(tr.EntryTime))
	assert.Equal(t, "theo plan", got.Notes)
	assert.False(t, got.IsClosed())
	assert.Nil(t, got.ExitTime)

	_, err = s.GetTrade(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrTradeNotFound)
}

func TestSaveTrade_Invalid(t *testing.T) {
	s := newTestStore(t)
	bad := openTrade("x", "u1", clock, 0)

	err := s.SaveTrade(context.Background(), bad)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTrade)
	var verr *apperrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCloseTrade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveTrade(ctx, openTrade("t1", "u1", clock.Add(-time.Hour), 2)))

	closed, err := s.CloseTrade(ctx, "t1", 97, clock)
	require.NoError(t, err)
	assert.InDelta(t, -6, *closed.PnL, 1e-9)
	assert.InDelta(t, -3, *closed.PnLPct, 1e-9)

	got, err := s.GetTrade(ctx, "t1")
	require.NoError(t, err)
	require.True(t, got.IsClosed())
	assert.True(t, got.ExitTime.Equal(clock))
	assert.True(t, got.IsLoss())

	_, err = s.CloseTrade(ctx, "t1", 99, clock)
	assert.ErrorIs(t, err, apperrors.ErrTradeAlreadyClosed)

	_, err = s.CloseTrade(ctx, "nope", 99, clock)
	assert.ErrorIs(t, err, apperrors.ErrTradeNotFound)

	require.NoError(t, s.SaveTrade(ctx, openTrade("t2", "u1", clock, 1)))
	_, err = s.CloseTrade(ctx, "t2", 101, clock.Add(-time.Minute))
	assert.ErrorIs(t, err, apperrors.ErrInvalidTrade)
}

func TestGetTrades_FiltersAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"c", "a", "d", "b"} {
		// entries: c=08:00 a=09:00 d=10:00 b=11:00
		require.NoError(t, s.SaveTrade(ctx, openTrade(id, "u1", clock.Add(time.Duration(i-4)*time.Hour), 1)))
	}
	other := openTrade("z", "u2", clock, 1)
	other.Symbol = "ETH"
	require.NoError(t, s.SaveTrade(ctx, other))
	_, err := s.CloseTrade(ctx, "a", 105, clock.Add(-150*time.Minute))
	require.NoError(t, err)

	ids := func(trades []models.Trade) []string {
		var out []string
		for _, t := range trades {
			out = append(out, t.ID)
		}
		return out
	}

	all, err := s.GetTrades(ctx, models.TradeFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "d", "b"}, ids(all))

	recent, err := s.RecentTrades(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b"}, ids(recent))

	open, err := s.GetTrades(ctx, models.TradeFilter{UserID: "u1", OpenOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d", "b"}, ids(open))

	ranged, err := s.GetTrades(ctx, models.TradeFilter{StartDate: clock.Add(-3 * time.Hour), EndDate: clock.Add(-2 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d"}, ids(ranged))

	eth, err := s.GetTrades(ctx, models.TradeFilter{Symbol: "ETH"})
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, ids(eth))
}

func alert(id, trade string, typ models.AlertType, score int, at time.Time) models.Alert {
	return models.Alert{
		ID:             id,
		UserID:         "u1",
		TradeID:        trade,
		Type:           typ,
		Severity:       models.SeverityHigh,
		Score:          score,
		Reasons:        []string{"Previous trade lost 3.0%", "Entered 5 minutes after closing a loss"},
		Recommendation: "Stop trading for at least 30 minutes.",
		CreatedAt:      at,
	}
}

func TestSaveAlerts_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveAlerts(ctx, []models.Alert{
		alert("a1", "t1", models.AlertRevenge, 70, clock),
		alert("a2", "t1", models.AlertFOMO, 60, clock),
	}))
	require.NoError(t, s.SaveAlerts(ctx, []models.Alert{
		alert("a3", "t1", models.AlertRevenge, 90, clock.Add(time.Minute)),
	}))
	require.NoError(t, s.SaveAlerts(ctx, nil))

	got, err := s.GetAlerts(ctx, models.AlertFilter{TradeID: "t1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].ID, "same instant sorts by score")
	assert.Equal(t, 70, got[0].Score)
	assert.Equal(t, models.SeverityHigh, got[0].Severity)
	assert.Len(t, got[0].Reasons, 2)
	assert.True(t, got[0].CreatedAt.Equal(clock))
}

func TestAcknowledgeAlert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveAlerts(ctx, []models.Alert{
		alert("a1", "t1", models.AlertRevenge, 70, clock),
		alert("a2", "t2", models.AlertTilt, 80, clock.Add(time.Minute)),
	}))

	require.NoError(t, s.AcknowledgeAlert(ctx, "a1"))
	assert.ErrorIs(t, s.AcknowledgeAlert(ctx, "missing"), apperrors.ErrAlertNotFound)

	pending, err := s.GetAlerts(ctx, models.AlertFilter{UserID: "u1", Unacknowledged: true})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "a2", pending[0].ID)

	revenge, err := s.GetAlerts(ctx, models.AlertFilter{Type: models.AlertRevenge})
	require.NoError(t, err)
	require.Len(t, revenge, 1)
	assert.True(t, revenge[0].Acknowledged)

	limited, err := s.GetAlerts(ctx, models.AlertFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "a2", limited[0].ID)
}

func TestAnalysisPersistence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetAnalysis(ctx, "t1")
	assert.ErrorIs(t, err, apperrors.ErrDataNotFound)

	first := models.EmptyAnalysis()
	require.NoError(t, s.SaveAnalysis(ctx, "t1", first))

	second := models.EmptyAnalysis()
	second.Language = models.LangVietnamese
	second.Emotions = []models.Emotion{{Type: models.EmotionFOMO, Confidence: 0.6, MatchedTerms: []string{"phải vào ngay", "all in"}}}
	second.BehavioralFlags = []string{"FOMO"}
	second.QualityScore = 0.32
	require.NoError(t, s.SaveAnalysis(ctx, "t1", second))

	got, err := s.GetAnalysis(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func candle(at time.Time, open, high, close float64) models.Candle {
	return models.Candle{Symbol: "BTC", Timestamp: at, Open: open, High: high, Low: open - 1, Close: close, Volume: 10}
}

func TestMarketContext(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveCandles(ctx, []models.Candle{
		candle(clock.Add(-90*time.Minute), 90, 95, 94),
		candle(clock.Add(-50*time.Minute), 100, 103, 102),
		candle(clock.Add(-20*time.Minute), 102, 108, 106),
		candle(clock.Add(-5*time.Minute), 106, 107, 105),
		candle(clock.Add(5*time.Minute), 105, 120, 119),
	}))

	change, err := s.PriceChange(ctx, "BTC", clock, time.Hour)
	require.NoError(t, err)
	assert.InDelta(t, 5, change, 1e-9)

	high, err := s.LocalHigh(ctx, "BTC", clock, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 108.0, high)

	candles, err := s.GetCandles(ctx, "BTC", clock.Add(-time.Hour), clock)
	require.NoError(t, err)
	assert.Len(t, candles, 3)

	_, err = s.PriceChange(ctx, "ETH", clock, time.Hour)
	assert.ErrorIs(t, err, apperrors.ErrMarketDataUnavailable)
	_, err = s.LocalHigh(ctx, "BTC", clock.Add(-3*time.Hour), time.Hour)
	assert.ErrorIs(t, err, apperrors.ErrMarketDataUnavailable)
}

func TestBaseline(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	candidate := openTrade("cand", "u1", clock, 9)

	b, err := s.Baseline(ctx, *candidate)
	require.NoError(t, err)
	assert.True(t, b.IsZero())

	day1 := clock.Add(-48 * time.Hour)
	day2 := clock.Add(-24 * time.Hour)
	for i, tr := range []*models.Trade{
		openTrade("a", "u1", day1, 1),
		openTrade("b", "u1", day1.Add(10*time.Minute), 2),
		openTrade("c", "u1", day1.Add(time.Hour), 3),
		openTrade("d", "u1", day2, 2),
		openTrade("old", "u1", clock.Add(-40*24*time.Hour), 50),
		openTrade("other", "u2", day2, 50),
		openTrade("later", "u1", clock.Add(time.Hour), 50),
		candidate,
	} {
		require.NoError(t, s.SaveTrade(ctx, tr), "trade %d", i)
	}

	b, err = s.Baseline(ctx, *candidate)
	require.NoError(t, err)
	assert.Equal(t, 4, b.SampleSize)
	assert.InDelta(t, 2, b.AvgQuantity, 1e-9)
	assert.InDelta(t, 2, b.AvgTradesPerDay, 1e-9)
	assert.InDelta(t, 4.0/3.0, b.AvgTradesPerHour, 1e-9)
}

func TestBaseline_AnchoredOnTradeEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// A backdated trade sees only what came before it, not the store clock's window.
	past := clock.Add(-60 * 24 * time.Hour)
	require.NoError(t, s.SaveTrade(ctx, openTrade("p1", "u1", past.Add(-2*time.Hour), 4)))
	require.NoError(t, s.SaveTrade(ctx, openTrade("p2", "u1", past.Add(-time.Hour), 6)))
	require.NoError(t, s.SaveTrade(ctx, openTrade("now", "u1", clock.Add(-time.Hour), 100)))

	b, err := s.Baseline(ctx, *openTrade("", "u1", past, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, b.SampleSize)
	assert.InDelta(t, 5, b.AvgQuantity, 1e-9)
}
