package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cidadaoai/sentinela/pkg/models"
	"github.com/cidadaoai/sentinela/pkg/storage"
)

// Repository is the Postgres implementation of
// storage.InvestigationRepository, storing each InvestigationResult as one
// JSONB row keyed by its ULID.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wraps an already-connected pool. Use NewPool to build one.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save upserts result by InvestigationID.
func (r *Repository) Save(ctx context.Context, result *models.InvestigationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("postgres: marshal result: %w", err)
	}

	const query = `
		INSERT INTO investigation_results (investigation_id, status, result)
		VALUES ($1, $2, $3)
		ON CONFLICT (investigation_id) DO UPDATE
		SET status = EXCLUDED.status, result = EXCLUDED.result`

	if _, err := r.pool.Exec(ctx, query, result.InvestigationID, string(result.Status), payload); err != nil {
		return fmt.Errorf("postgres: save %s: %w", result.InvestigationID, err)
	}
	return nil
}

// Get looks up a result by its ULID, returning storage.ErrNotFound when
// absent.
func (r *Repository) Get(ctx context.Context, investigationID string) (*models.InvestigationResult, error) {
	const query = `SELECT result FROM investigation_results WHERE investigation_id = $1`

	var payload []byte
	err := r.pool.QueryRow(ctx, query, investigationID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get %s: %w", investigationID, err)
	}

	var result models.InvestigationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal %s: %w", investigationID, err)
	}
	return &result, nil
}

var _ storage.InvestigationRepository = (*Repository)(nil)
