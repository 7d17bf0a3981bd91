package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cidadaoai/sentinela/pkg/models"
)

func TestBackoff_ExponentialWithCapAndJitter(t *testing.T) {
	cfg := RetryConfig{BaseBackoff: time.Second, MaxBackoff: 10 * time.Second, JitterFraction: 0.2, MaxAttempts: 5}

	for n, want := range map[int]time.Duration{1: time.Second, 2: 2 * time.Second, 3: 4 * time.Second} {
		d := cfg.Backoff(n)
		lo := time.Duration(float64(want) * 0.8)
		hi := time.Duration(float64(want) * 1.2)
		assert.GreaterOrEqualf(t, d, lo, "attempt %d", n)
		assert.LessOrEqualf(t, d, hi, "attempt %d", n)
	}

	// Large attempt counts must stay capped at MaxBackoff +/- jitter.
	d := cfg.Backoff(10)
	assert.LessOrEqual(t, d, time.Duration(float64(cfg.MaxBackoff)*1.2))
}

func TestDo_SucceedsWithoutRetryOnFirstSuccess(t *testing.T) {
	calls := 0
	result, err, attempts := Do(context.Background(), DefaultRetryConfig, func(int) (any, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientFailureThenSucceeds(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond, JitterFraction: 0}
	calls := 0
	result, err, attempts := Do(context.Background(), cfg, func(attempt int) (any, error) {
		calls++
		if attempt < 2 {
			return nil, models.NewClassifiedError(models.ErrorKindTransientFailure, "boom", nil)
		}
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", result)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 2, calls)
}

func TestDo_NonRetryableFailsImmediately(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
	calls := 0
	_, err, attempts := Do(context.Background(), cfg, func(int) (any, error) {
		calls++
		return nil, models.NewClassifiedError(models.ErrorKindInvalidRequest, "bad", nil)
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsMaxAttempts(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
	calls := 0
	_, err, attempts := Do(context.Background(), cfg, func(int) (any, error) {
		calls++
		return nil, models.NewClassifiedError(models.ErrorKindTimeout, "slow", nil)
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, BaseBackoff: time.Hour, MaxBackoff: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err, _ := Do(ctx, cfg, func(int) (any, error) {
		return nil, models.NewClassifiedError(models.ErrorKindTimeout, "slow", nil)
	})
	require.Error(t, err)
	var ce *models.ClassifiedError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, models.ErrorKindCancelled, ce.Kind)
}
