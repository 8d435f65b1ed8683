package behavior

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	apperrors "trading-journal/internal/errors"
)

// RetryingMarketData retries transient market lookups with exponential
// backoff. Missing data is not retried.
type RetryingMarketData struct {
	next       MarketData
	maxElapsed time.Duration
}

// NewRetryingMarketData wraps next. maxElapsed bounds the total time spent
// on one lookup.
func NewRetryingMarketData(next MarketData, maxElapsed time.Duration) *RetryingMarketData {
	return &RetryingMarketData{next: next, maxElapsed: maxElapsed}
}

// PriceChange implements MarketData.
func (r *RetryingMarketData) PriceChange(ctx context.Context, symbol string, at time.Time, lookback time.Duration) (float64, error) {
	return r.retry(ctx, func() (float64, error) {
		return r.next.PriceChange(ctx, symbol, at, lookback)
	})
}

// LocalHigh implements MarketData.
func (r *RetryingMarketData) LocalHigh(ctx context.Context, symbol string, at time.Time, lookback time.Duration) (float64, error) {
	return r.retry(ctx, func() (float64, error) {
		return r.next.LocalHigh(ctx, symbol, at, lookback)
	})
}

func (r *RetryingMarketData) retry(ctx context.Context, fn func() (float64, error)) (float64, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxElapsedTime = r.maxElapsed

	var out float64
	operation := func() error {
		v, err := fn()
		if err != nil {
			if apperrors.Is(err, apperrors.ErrMarketDataUnavailable) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = v
		return nil
	}
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return 0, err
	}
	return out, nil
}
