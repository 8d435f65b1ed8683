package nlp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	apperrors "trading-journal/internal/errors"
	"trading-journal/internal/logging"
	"trading-journal/internal/models"
	"trading-journal/internal/resilience"
)

// ClassifierResult is a pretrained model's polarity guess.
type ClassifierResult struct {
	Label      models.SentimentLabel
	Confidence float64
}

// Classifier is an optional contextual sentiment model. The keyword path
// works without one; a classifier only refines sentiment.
type Classifier interface {
	Classify(ctx context.Context, text string, lang models.Language) (ClassifierResult, error)
}

// NopClassifier is the absent classifier.
type NopClassifier struct{}

// Classify always reports ErrClassifierUnavailable.
func (NopClassifier) Classify(context.Context, string, models.Language) (ClassifierResult, error) {
	return ClassifierResult{}, apperrors.ErrClassifierUnavailable
}

// BreakerClassifier stops calling a failing classifier for a while so
// every note does not pay for a remote timeout. An open circuit reads as
// ErrClassifierUnavailable.
type BreakerClassifier struct {
	next    Classifier
	breaker *resilience.CircuitBreaker
	logger  zerolog.Logger
}

// NewBreakerClassifier guards next with breaker.
func NewBreakerClassifier(next Classifier, breaker *resilience.CircuitBreaker, logger zerolog.Logger) *BreakerClassifier {
	return &BreakerClassifier{next: next, breaker: breaker, logger: logger}
}

// Classify implements Classifier.
func (c *BreakerClassifier) Classify(ctx context.Context, text string, lang models.Language) (ClassifierResult, error) {
	res, err := resilience.ExecuteWithResult(ctx, c.breaker, func(ctx context.Context) (ClassifierResult, error) {
		return c.next.Classify(ctx, text, lang)
	})
	if apperrors.Is(err, resilience.ErrCircuitOpen) {
		stats := c.breaker.Stats()
		logger := logging.FromContextOr(ctx, c.logger)
		logger.Debug().
			Str("breaker", stats.Name).
			Str("state", string(stats.State)).
			Int64("requests", stats.TotalRequests).
			Int64("failures", stats.TotalFailures).
			Int64("rejected", stats.TotalRejected).
			Msg("Sentiment classifier skipped, circuit open")
		return ClassifierResult{}, fmt.Errorf("%w: %s circuit open", apperrors.ErrClassifierUnavailable, stats.Name)
	}
	return res, err
}
