package resilience

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/cidadaoai/sentinela/pkg/models"
)

// RetryConfig controls the backoff schedule (spec §4.2).
type RetryConfig struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	// JitterFraction is the +/- fraction of randomness applied to each
	// computed backoff (spec §4.2: +/-20%).
	JitterFraction float64
}

// DefaultRetryConfig matches the spec's stated defaults (spec §4.2): up to
// 3 attempts total, base 1s, exponential factor 2, capped at 10s, +/-20%
// jitter.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:    3,
	BaseBackoff:    time.Second,
	MaxBackoff:     10 * time.Second,
	JitterFraction: 0.2,
}

// Backoff computes the jittered delay before retry attempt n (1-indexed:
// n=1 is the delay before the first retry, following the initial attempt).
func (c RetryConfig) Backoff(n int) time.Duration {
	d := c.BaseBackoff
	for i := 1; i < n; i++ {
		d *= 2
		if d > c.MaxBackoff {
			d = c.MaxBackoff
			break
		}
	}
	if d > c.MaxBackoff {
		d = c.MaxBackoff
	}
	jitter := (rand.Float64()*2 - 1) * c.JitterFraction
	d = time.Duration(float64(d) * (1 + jitter))
	if d < 0 {
		d = 0
	}
	return d
}

// Do runs fn, retrying while the classified error is Retryable and attempts
// remain, sleeping Backoff(n) between attempts. ctx cancellation aborts the
// sleep and returns ctx.Err() wrapped in a Cancelled-classified error. Do
// never retries a nil error or a non-retryable ClassifiedError.
func Do(ctx context.Context, cfg RetryConfig, fn func(attempt int) (any, error)) (any, error, int) {
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := fn(attempt)
		if err == nil {
			return result, nil, attempt
		}
		lastErr = err

		kind := classify(err)
		if !kind.Retryable() || attempt == cfg.MaxAttempts {
			return nil, err, attempt
		}

		select {
		case <-ctx.Done():
			return nil, models.NewClassifiedError(models.ErrorKindCancelled, "", ctx.Err()), attempt
		case <-time.After(cfg.Backoff(attempt)):
		}
	}
	return nil, lastErr, cfg.MaxAttempts
}

func classify(err error) models.ErrorKind {
	var ce *models.ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return models.ErrorKindInternalError
}
