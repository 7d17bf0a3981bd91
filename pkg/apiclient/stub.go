package apiclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cidadaoai/sentinela/pkg/models"
)

// StubResponse is one scripted response for StubClient keyed by endpoint id.
type StubResponse struct {
	Payload map[string]any
	Err     error
	// Delay simulates network latency; honored via context so callers can
	// exercise timeout behavior deterministically.
	Delay time.Duration
}

// StubClient is a deterministic APIClient test double. Responses are
// scripted per endpoint id; calling Invoke for an unscripted endpoint
// returns a NotFound-classified error so tests fail loudly instead of
// hanging. Safe for concurrent use by the federation executor's goroutines.
type StubClient struct {
	mu        sync.Mutex
	responses map[string][]StubResponse
	calls     map[string]int
}

// NewStubClient builds a StubClient with the given per-endpoint response
// queues. Each call to Invoke for an endpoint pops the next scripted
// response; the last scripted response repeats once its queue is
// exhausted.
func NewStubClient(responses map[string][]StubResponse) *StubClient {
	return &StubClient{responses: responses, calls: make(map[string]int)}
}

func (s *StubClient) Invoke(ctx context.Context, endpoint models.APIEndpoint, _ models.Capability, _ map[string]any) (models.RawResult, error) {
	s.mu.Lock()
	queue, ok := s.responses[endpoint.ID]
	if !ok || len(queue) == 0 {
		s.mu.Unlock()
		return models.RawResult{}, models.NewClassifiedError(models.ErrorKindNotFound,
			fmt.Sprintf("no stub response scripted for endpoint %q", endpoint.ID), nil)
	}
	idx := s.calls[endpoint.ID]
	if idx >= len(queue) {
		idx = len(queue) - 1
	}
	resp := queue[idx]
	s.calls[endpoint.ID] = idx + 1
	s.mu.Unlock()

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-ctx.Done():
			return models.RawResult{}, models.NewClassifiedError(models.ErrorKindCancelled, "", ctx.Err())
		}
	}

	if resp.Err != nil {
		return models.RawResult{}, resp.Err
	}
	return models.RawResult{SourceEndpointID: endpoint.ID, FetchedAt: time.Now(), Payload: resp.Payload}, nil
}

// CallCount returns how many times Invoke was called for endpointID.
func (s *StubClient) CallCount(endpointID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpointID]
}
