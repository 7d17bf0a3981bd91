// Package storage implements the InvestigationRepository port (spec §1:
// "a simple repository port is assumed"): an in-memory adapter for tests
// and the default path, and a Postgres reference adapter in
// pkg/storage/postgres.
package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/cidadaoai/sentinela/pkg/models"
)

// ErrNotFound is returned by Get when no result exists for the given id.
var ErrNotFound = errors.New("storage: investigation not found")

// InvestigationRepository persists terminal InvestigationResults, keyed by
// their ULID. Report rendering and long-term query patterns are out of
// scope (spec §1) — this is intentionally a minimal save/get port.
type InvestigationRepository interface {
	Save(ctx context.Context, result *models.InvestigationResult) error
	Get(ctx context.Context, investigationID string) (*models.InvestigationResult, error)
}

// InMemoryRepository is a process-local InvestigationRepository backed by
// a mutex-guarded map. It is the default adapter and what tests use in
// place of Postgres.
type InMemoryRepository struct {
	mu      sync.RWMutex
	results map[string]models.InvestigationResult
}

// NewInMemoryRepository builds an empty InMemoryRepository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{results: make(map[string]models.InvestigationResult)}
}

// Save stores a copy of result, keyed by its InvestigationID.
func (r *InMemoryRepository) Save(_ context.Context, result *models.InvestigationResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[result.InvestigationID] = *result
	return nil
}

// Get returns a copy of the stored result, or ErrNotFound.
func (r *InMemoryRepository) Get(_ context.Context, investigationID string) (*models.InvestigationResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.results[investigationID]
	if !ok {
		return nil, ErrNotFound
	}
	return &result, nil
}
