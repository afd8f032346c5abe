package postgres

import (
	"context"
	"fmt"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// MarketCatalogStore implements storage.MarketCatalogStore using PostgreSQL.
type MarketCatalogStore struct {
	pool *Pool
}

// NewMarketCatalogStore creates a new MarketCatalogStore.
func NewMarketCatalogStore(pool *Pool) *MarketCatalogStore {
	return &MarketCatalogStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MarketCatalogStore = (*MarketCatalogStore)(nil)

// InsertGroup adds a group. Returns ErrDuplicateKey if id exists.
func (s *MarketCatalogStore) InsertGroup(ctx context.Context, g *domain.MarketGroup) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO groups (id, name) VALUES ($1, $2)`, g.ID, g.Name)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

// InsertOutcome adds an outcome. Returns ErrDuplicateKey if id exists.
func (s *MarketCatalogStore) InsertOutcome(ctx context.Context, o *domain.MarketOutcome) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO markets (id, name, group_id) VALUES ($1, $2, $3)`,
		o.ID, o.Name, o.GroupID,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isInvalidInputError(err) {
			return storage.ErrInvalidInput
		}
		return fmt.Errorf("insert market: %w", err)
	}
	return nil
}

// ListGroups retrieves all groups, ordered by id ASC.
func (s *MarketCatalogStore) ListGroups(ctx context.Context) ([]*domain.MarketGroup, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM groups ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var result []*domain.MarketGroup
	for rows.Next() {
		var g domain.MarketGroup
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		result = append(result, &g)
	}
	return result, rows.Err()
}

// ListOutcomes retrieves all outcomes, ordered by id ASC.
func (s *MarketCatalogStore) ListOutcomes(ctx context.Context) ([]*domain.MarketOutcome, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, group_id FROM markets ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}
	defer rows.Close()

	var result []*domain.MarketOutcome
	for rows.Next() {
		var o domain.MarketOutcome
		if err := rows.Scan(&o.ID, &o.Name, &o.GroupID); err != nil {
			return nil, fmt.Errorf("scan market: %w", err)
		}
		result = append(result, &o)
	}
	return result, rows.Err()
}
