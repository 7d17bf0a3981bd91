package resilience

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// LimiterRegistry lazily creates and holds one token-bucket rate limiter
// per endpoint id, built from the endpoint's registry-declared
// RatePerMinute (spec §4.2).
type LimiterRegistry struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLimiterRegistry builds an empty registry.
func NewLimiterRegistry() *LimiterRegistry {
	return &LimiterRegistry{limiters: make(map[string]*rate.Limiter)}
}

// limiterFor returns the limiter for endpointID, creating one sized to
// ratePerMinute (burst equal to one second's worth of tokens, minimum 1) the
// first time it's requested.
func (r *LimiterRegistry) limiterFor(endpointID string, ratePerMinute int) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.limiters[endpointID]; ok {
		return l
	}
	perSecond := rate.Limit(float64(ratePerMinute) / 60.0)
	burst := ratePerMinute / 60
	if burst < 1 {
		burst = 1
	}
	l := rate.NewLimiter(perSecond, burst)
	r.limiters[endpointID] = l
	return l
}

// Wait blocks until a token for endpointID is available or ctx is done,
// creating the endpoint's limiter on first use.
func (r *LimiterRegistry) Wait(ctx context.Context, endpointID string, ratePerMinute int) error {
	return r.limiterFor(endpointID, ratePerMinute).Wait(ctx)
}
