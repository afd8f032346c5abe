package postgres

import (
	"context"
	"fmt"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// SourceStore implements storage.SourceStore using PostgreSQL.
type SourceStore struct {
	pool *Pool
}

// NewSourceStore creates a new SourceStore.
func NewSourceStore(pool *Pool) *SourceStore {
	return &SourceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SourceStore = (*SourceStore)(nil)

// Ensure returns the source with the given name, creating it if missing.
// The no-op DO UPDATE makes RETURNING yield the existing row on conflict.
func (s *SourceStore) Ensure(ctx context.Context, name string) (*domain.Source, error) {
	if name == "" {
		return nil, storage.ErrInvalidInput
	}

	var src domain.Source
	err := s.pool.QueryRow(ctx, `
		INSERT INTO sources (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name
	`, name).Scan(&src.ID, &src.Name)
	if err != nil {
		return nil, fmt.Errorf("ensure source: %w", err)
	}
	return &src, nil
}

// GetByName retrieves a source. Returns ErrNotFound if not exists.
func (s *SourceStore) GetByName(ctx context.Context, name string) (*domain.Source, error) {
	var src domain.Source
	err := s.pool.QueryRow(ctx,
		`SELECT id, name FROM sources WHERE name = $1`, name,
	).Scan(&src.ID, &src.Name)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get source by name: %w", err)
	}
	return &src, nil
}
