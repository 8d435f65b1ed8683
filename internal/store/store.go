// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"trading-journal/internal/models"
)

// JournalStore defines the interface for journal persistence. It serves
// every collaborator the behavior service consumes.
type JournalStore interface {
	// Trades
	SaveTrade(ctx context.Context, trade *models.Trade) error
	CloseTrade(ctx context.Context, id string, exitPrice float64, exitTime time.Time) (models.Trade, error)
	GetTrade(ctx context.Context, id string) (models.Trade, error)
	GetTrades(ctx context.Context, filter models.TradeFilter) ([]models.Trade, error)
	RecentTrades(ctx context.Context, userID string, limit int) ([]models.Trade, error)

	// Alerts
	SaveAlerts(ctx context.Context, alerts []models.Alert) error
	GetAlerts(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error)
	AcknowledgeAlert(ctx context.Context, id string) error

	// Note analyses
	SaveAnalysis(ctx context.Context, tradeID string, result models.AnalysisResult) error
	GetAnalysis(ctx context.Context, tradeID string) (models.AnalysisResult, error)

	// Market data
	SaveCandles(ctx context.Context, candles []models.Candle) error
	GetCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error)
	PriceChange(ctx context.Context, symbol string, at time.Time, lookback time.Duration) (float64, error)
	LocalHigh(ctx context.Context, symbol string, at time.Time, lookback time.Duration) (float64, error)

	// Baselines
	Baseline(ctx context.Context, trade models.Trade) (models.Baseline, error)

	// Lifecycle
	Close() error
}

// BaselineWindow is how far back a trader's baseline looks.
const BaselineWindow = 30 * 24 * time.Hour
