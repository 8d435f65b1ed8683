package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/models"
)

// SaveCandles saves candles to the database, replacing any candle with
// the same symbol and timestamp.
func (s *SQLiteStore) SaveCandles(ctx context.Context, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (symbol, timestamp, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return apperrors.Wrap(err, "failed to prepare statement")
	}
	defer stmt.Close()

	for _, c := range candles {
		_, err := stmt.ExecContext(ctx, c.Symbol, c.Timestamp.UTC(), c.Open, c.High, c.Low, c.Close, c.Volume)
		if err != nil {
			return apperrors.Wrap(err, "failed to insert candle")
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, "failed to commit transaction")
	}

	return nil
}

// GetCandles retrieves candles in [from, to], oldest first.
func (s *SQLiteStore) GetCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, timestamp, open, high, low, close, volume
		FROM candles
		WHERE symbol = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`, symbol, from.UTC(), to.UTC())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query candles")
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Symbol, &c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan candle")
		}
		c.Timestamp = c.Timestamp.UTC()
		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candles: %w", err)
	}

	return candles, nil
}

func (s *SQLiteStore) window(ctx context.Context, symbol string, at time.Time, lookback time.Duration) ([]models.Candle, error) {
	candles, err := s.GetCandles(ctx, symbol, at.Add(-lookback), at)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, apperrors.NewDataError("candles", symbol,
			fmt.Sprintf("no candles in the %s before %s", lookback, at.UTC().Format(time.RFC3339)),
			apperrors.ErrMarketDataUnavailable)
	}
	return candles, nil
}

// PriceChange returns the percentage move from the first candle's open to
// the last candle's close within the lookback ending at at.
func (s *SQLiteStore) PriceChange(ctx context.Context, symbol string, at time.Time, lookback time.Duration) (float64, error) {
	candles, err := s.window(ctx, symbol, at, lookback)
	if err != nil {
		return 0, err
	}
	first, last := candles[0], candles[len(candles)-1]
	if first.Open == 0 {
		return 0, apperrors.NewDataError("candles", symbol, "zero open price", apperrors.ErrMarketDataUnavailable)
	}
	return (last.Close - first.Open) / first.Open * 100, nil
}

// LocalHigh returns the highest high within the lookback ending at at.
func (s *SQLiteStore) LocalHigh(ctx context.Context, symbol string, at time.Time, lookback time.Duration) (float64, error) {
	var high sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(high) FROM candles WHERE symbol = ? AND timestamp >= ? AND timestamp <= ?
	`, symbol, at.Add(-lookback).UTC(), at.UTC()).Scan(&high)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to get local high")
	}
	if !high.Valid {
		return 0, apperrors.NewDataError("candles", symbol, "no candles in lookback", apperrors.ErrMarketDataUnavailable)
	}
	return high.Float64, nil
}

// ============================================================================
// Baseline Methods
// ============================================================================

// Baseline summarizes the trader's activity over the BaselineWindow that
// ends at trade's entry: the mean quantity, trades per active day and
// trades per active hour. Trades entered at or after the entry, and trade
// itself, are left out. A trader with no earlier trades in the window gets
// the zero baseline.
func (s *SQLiteStore) Baseline(ctx context.Context, trade models.Trade) (models.Baseline, error) {
	trades, err := s.GetTrades(ctx, models.TradeFilter{
		UserID:    trade.UserID,
		StartDate: trade.EntryTime.Add(-BaselineWindow),
		EndDate:   trade.EntryTime,
	})
	if err != nil {
		return models.Baseline{}, err
	}
	prior := trades[:0]
	for _, t := range trades {
		if t.EntryTime.Before(trade.EntryTime) && (trade.ID == "" || t.ID != trade.ID) {
			prior = append(prior, t)
		}
	}
	return computeBaseline(prior), nil
}

func computeBaseline(trades []models.Trade) models.Baseline {
	if len(trades) == 0 {
		return models.Baseline{}
	}
	days := make(map[string]struct{})
	hours := make(map[string]struct{})
	var qty float64
	for _, t := range trades {
		ts := t.EntryTime.UTC()
		days[ts.Format("2006-01-02")] = struct{}{}
		hours[ts.Format("2006-01-02T15")] = struct{}{}
		qty += t.Quantity
	}
	n := float64(len(trades))
	return models.Baseline{
		AvgQuantity:      qty / n,
		AvgTradesPerDay:  n / float64(len(days)),
		AvgTradesPerHour: n / float64(len(hours)),
		SampleSize:       len(trades),
	}
}
