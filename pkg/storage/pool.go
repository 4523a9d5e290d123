// Package storage is the type-aware, transactional persistence layer
// (spec.md §4.5): normalized tables for the six high-value items, a JSONB
// fallback table for everything else, and the FDD/Section status/lineage
// columns that drive the scheduler's terminal-state transitions.
//
// Grounded on the teacher's pkg/core/store: db.go's pgxpool wiring,
// analysis_repo.go/fsap_cache.go's ON CONFLICT upsert pattern for JSONB
// columns. Unlike store.InitDB, NewPool is not a package-level
// sync.Once singleton — spec.md §9 requires the scheduler to hold its own
// shared resources explicitly rather than reach through package state, and
// a pool built per pipeline instance makes that possible in tests too.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool opens a pgx connection pool against dbURL. Callers own its
// lifecycle and must Close it.
func NewPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}
	return pool, nil
}
