// Package apiclient defines the uniform contract every federated data
// source is invoked through (spec §3/§4.2), plus a deterministic stub used
// by tests and an HTTP reference implementation.
package apiclient

import (
	"context"

	"github.com/cidadaoai/sentinela/pkg/models"
)

// APIClient is the Go-side interface federation stages call through. A
// single APIClient implementation may serve many endpoints (distinguished
// by endpoint.ID); callers never assume a 1:1 client-to-endpoint mapping.
type APIClient interface {
	// Invoke calls the given endpoint's capability with params and returns
	// either a RawResult or a *models.ClassifiedError. Invoke never panics
	// and never returns a bare, unclassified error.
	Invoke(ctx context.Context, endpoint models.APIEndpoint, capability models.Capability, params map[string]any) (models.RawResult, error)
}
