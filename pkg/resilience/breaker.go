// Package resilience provides the three cross-cutting fault-tolerance
// primitives the federation executor wraps every API call in (spec §4.2):
// a per-endpoint circuit breaker, a per-endpoint token-bucket rate limiter,
// and a jittered exponential-backoff retry loop.
package resilience

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig configures one endpoint's circuit breaker (spec §4.2).
type BreakerConfig struct {
	// FailureThreshold is the consecutive-failure count that trips the
	// breaker from Closed to Open.
	FailureThreshold uint32
	// CooldownPeriod is how long the breaker stays Open before allowing a
	// single HalfOpen probe request through.
	CooldownPeriod time.Duration
	// HalfOpenMaxProbes bounds concurrent probe requests let through while
	// HalfOpen.
	HalfOpenMaxProbes uint32
}

// DefaultBreakerConfig matches the spec's stated defaults (spec §4.2):
// 5 consecutive failures trips the breaker, 30s cooldown, 1 probe at a time.
var DefaultBreakerConfig = BreakerConfig{
	FailureThreshold:  5,
	CooldownPeriod:    30 * time.Second,
	HalfOpenMaxProbes: 1,
}

// BreakerState mirrors gobreaker's three states under the vocabulary the
// spec uses (spec §3/§4.2).
type BreakerState string

const (
	BreakerClosed   BreakerState = "Closed"
	BreakerOpen     BreakerState = "Open"
	BreakerHalfOpen BreakerState = "HalfOpen"
)

// BreakerRegistry lazily creates and holds one circuit breaker per endpoint
// id, so every caller shares the same breaker state for a given endpoint
// (spec §4.2: breaker state is per-endpoint, not per-call).
type BreakerRegistry struct {
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
	cfg      BreakerConfig
}

// NewBreakerRegistry builds a registry that lazily instantiates breakers
// using cfg for every endpoint it first sees.
func NewBreakerRegistry(cfg BreakerConfig) *BreakerRegistry {
	return &BreakerRegistry{breakers: make(map[string]*gobreaker.CircuitBreaker), cfg: cfg}
}

func (r *BreakerRegistry) breakerFor(endpointID string) *gobreaker.CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[endpointID]; ok {
		return b
	}
	settings := gobreaker.Settings{
		Name:        endpointID,
		MaxRequests: r.cfg.HalfOpenMaxProbes,
		Timeout:     r.cfg.CooldownPeriod,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= r.cfg.FailureThreshold
		},
	}
	b := gobreaker.NewCircuitBreaker(settings)
	r.breakers[endpointID] = b
	return b
}

// Execute runs fn through the named endpoint's breaker. When the breaker is
// Open, fn is never called and ErrCircuitOpen-classified failure is
// returned by the caller (see pkg/apiclient, which maps this to
// models.ErrorKindCircuitOpen).
func (r *BreakerRegistry) Execute(endpointID string, fn func() (any, error)) (any, error) {
	return r.breakerFor(endpointID).Execute(fn)
}

// State reports the current breaker state for an endpoint, defaulting to
// Closed for an endpoint that has never been called.
func (r *BreakerRegistry) State(endpointID string) BreakerState {
	r.mu.Lock()
	b, ok := r.breakers[endpointID]
	r.mu.Unlock()
	if !ok {
		return BreakerClosed
	}
	switch b.State() {
	case gobreaker.StateOpen:
		return BreakerOpen
	case gobreaker.StateHalfOpen:
		return BreakerHalfOpen
	default:
		return BreakerClosed
	}
}
