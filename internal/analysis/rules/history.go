package rules

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"trading-journal/internal/models"
)

// averageQuantity prefers the trader's baseline and falls back to the mean
// of the recent trades. ok is false when neither exists.
func averageQuantity(ctx Context) (float64, bool) {
	if ctx.Baseline != nil && ctx.Baseline.AvgQuantity > 0 {
		return ctx.Baseline.AvgQuantity, true
	}
	if len(ctx.Recent) == 0 {
		return 0, false
	}
	qtys := make([]float64, len(ctx.Recent))
	for i, t := range ctx.Recent {
		qtys[i] = t.Quantity
	}
	avg := stat.Mean(qtys, nil)
	return avg, avg > 0
}

func lastTrade(trades []models.Trade) (models.Trade, bool) {
	if len(trades) == 0 {
		return models.Trade{}, false
	}
	return trades[len(trades)-1], true
}

func tradesSince(trades []models.Trade, since time.Time) []models.Trade {
	var out []models.Trade
	for _, t := range trades {
		if t.EntryTime.After(since) {
			out = append(out, t)
		}
	}
	return out
}

func closedOnly(trades []models.Trade) []models.Trade {
	var out []models.Trade
	for _, t := range trades {
		if t.IsClosed() {
			out = append(out, t)
		}
	}
	return out
}

func winRate(closed []models.Trade) float64 {
	if len(closed) == 0 {
		return 0
	}
	var wins int
	for _, t := range closed {
		if t.IsWin() {
			wins++
		}
	}
	return float64(wins) / float64(len(closed))
}

// historicalRate is trades per period over the span of the recent trades.
// ok is false when the span is shorter than one period.
func historicalRate(trades []models.Trade, now time.Time, period time.Duration) (float64, bool) {
	if len(trades) == 0 {
		return 0, false
	}
	span := now.Sub(trades[0].EntryTime)
	if span < period {
		return 0, false
	}
	return float64(len(trades)) / (float64(span) / float64(period)), true
}
