package postgres

import (
	"context"
	"fmt"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// AliasStore implements storage.AliasStore using PostgreSQL.
type AliasStore struct {
	pool *Pool
}

// NewAliasStore creates a new AliasStore.
func NewAliasStore(pool *Pool) *AliasStore {
	return &AliasStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AliasStore = (*AliasStore)(nil)

// Insert adds an alias. Returns ErrDuplicateKey if (scope, context, source_variant) exists.
func (s *AliasStore) Insert(ctx context.Context, a *domain.NameAlias) error {
	if !a.Scope.IsValid() {
		return storage.ErrInvalidInput
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO name_aliases (scope, context, canonical_name, source_variant)
		VALUES ($1, $2, $3, $4)
	`, a.Scope.String(), a.Context, a.CanonicalName, a.SourceVariant)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert alias: %w", err)
	}
	return nil
}

// ListAll retrieves every alias, ordered by scope, context, source_variant.
func (s *AliasStore) ListAll(ctx context.Context) ([]*domain.NameAlias, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT scope, context, canonical_name, source_variant
		FROM name_aliases
		ORDER BY scope ASC, context ASC, source_variant ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	defer rows.Close()

	var result []*domain.NameAlias
	for rows.Next() {
		var (
			a     domain.NameAlias
			scope string
		)
		if err := rows.Scan(&scope, &a.Context, &a.CanonicalName, &a.SourceVariant); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		a.Scope = domain.AliasScope(scope)
		result = append(result, &a)
	}
	return result, rows.Err()
}
