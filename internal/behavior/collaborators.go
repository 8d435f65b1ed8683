package behavior

import (
	"context"
	"time"

	"trading-journal/internal/models"
)

// TradeSource returns a trader's most recent trades, oldest first.
type TradeSource interface {
	RecentTrades(ctx context.Context, userID string, limit int) ([]models.Trade, error)
}

// MarketData supplies price context for a symbol over the lookback that
// ends at the given instant. Implementations return
// errors.ErrMarketDataUnavailable when they hold no data for the window.
type MarketData interface {
	PriceChange(ctx context.Context, symbol string, at time.Time, lookback time.Duration) (float64, error)
	LocalHigh(ctx context.Context, symbol string, at time.Time, lookback time.Duration) (float64, error)
}

// BaselineSource supplies a trader's usual activity levels measured
// before the given trade. The trade itself never counts toward its own
// baseline.
type BaselineSource interface {
	Baseline(ctx context.Context, trade models.Trade) (models.Baseline, error)
}

// AlertSink persists alerts. Saving the same trade and type twice keeps
// the first alert.
type AlertSink interface {
	SaveAlerts(ctx context.Context, alerts []models.Alert) error
}

// AnalysisSink persists the analysis of a trade's note, replacing any
// earlier one.
type AnalysisSink interface {
	SaveAnalysis(ctx context.Context, tradeID string, result models.AnalysisResult) error
}
