package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerRegistry_TripsAfterConsecutiveFailures(t *testing.T) {
	cfg := BreakerConfig{FailureThreshold: 3, CooldownPeriod: 50 * time.Millisecond, HalfOpenMaxProbes: 1}
	reg := NewBreakerRegistry(cfg)

	boom := errors.New("boom")
	for i := 0; i < 3; i++ {
		_, err := reg.Execute("ep1", func() (any, error) { return nil, boom })
		require.Error(t, err)
	}

	assert.Equal(t, BreakerOpen, reg.State("ep1"))

	_, err := reg.Execute("ep1", func() (any, error) { return "should not run", nil })
	require.Error(t, err, "breaker open must short-circuit without calling fn")
}

func TestBreakerRegistry_HalfOpenAfterCooldownThenCloses(t *testing.T) {
	cfg := BreakerConfig{FailureThreshold: 2, CooldownPeriod: 20 * time.Millisecond, HalfOpenMaxProbes: 1}
	reg := NewBreakerRegistry(cfg)

	boom := errors.New("boom")
	for i := 0; i < 2; i++ {
		_, _ = reg.Execute("ep1", func() (any, error) { return nil, boom })
	}
	require.Equal(t, BreakerOpen, reg.State("ep1"))

	time.Sleep(30 * time.Millisecond)

	result, err := reg.Execute("ep1", func() (any, error) { return "recovered", nil })
	require.NoError(t, err)
	assert.Equal(t, "recovered", result)
	assert.Equal(t, BreakerClosed, reg.State("ep1"))
}

func TestBreakerRegistry_PerEndpointIsolation(t *testing.T) {
	reg := NewBreakerRegistry(BreakerConfig{FailureThreshold: 1, CooldownPeriod: time.Hour, HalfOpenMaxProbes: 1})
	boom := errors.New("boom")

	_, _ = reg.Execute("ep-a", func() (any, error) { return nil, boom })
	assert.Equal(t, BreakerOpen, reg.State("ep-a"))
	assert.Equal(t, BreakerClosed, reg.State("ep-b"), "unrelated endpoint must be unaffected")
}

func TestBreakerRegistry_UnknownEndpointDefaultsToClosed(t *testing.T) {
	reg := NewBreakerRegistry(DefaultBreakerConfig)
	assert.Equal(t, BreakerClosed, reg.State("never-called"))
}
