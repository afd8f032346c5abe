package postgres

import (
	"context"
	"fmt"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// SourceOddsStore implements storage.SourceOddsStore using PostgreSQL.
type SourceOddsStore struct {
	pool *Pool
}

// NewSourceOddsStore creates a new SourceOddsStore.
func NewSourceOddsStore(pool *Pool) *SourceOddsStore {
	return &SourceOddsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SourceOddsStore = (*SourceOddsStore)(nil)

// Upsert writes a row; on conflict only coefficient is overwritten.
func (s *SourceOddsStore) Upsert(ctx context.Context, o *domain.SourceOdds) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO fixture_odds (
			group_id, market_id, fixture_id, external_source_fixture_id, source_id, coefficient
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (group_id, market_id, fixture_id, external_source_fixture_id, source_id)
		DO UPDATE SET coefficient = EXCLUDED.coefficient
	`, o.GroupID, o.MarketID, o.FixtureID, o.ExternalSourceFixtureID, o.SourceID, o.Coefficient)
	if err != nil {
		if isInvalidInputError(err) {
			return storage.ErrInvalidInput
		}
		return fmt.Errorf("upsert fixture odds: %w", err)
	}
	return nil
}

// GetByKey retrieves one row. Returns ErrNotFound if not exists.
func (s *SourceOddsStore) GetByKey(ctx context.Context, groupID, marketID, fixtureID int64, externalSourceFixtureID string, sourceID int64) (*domain.SourceOdds, error) {
	var o domain.SourceOdds
	err := s.pool.QueryRow(ctx, `
		SELECT group_id, market_id, fixture_id, external_source_fixture_id, source_id, coefficient
		FROM fixture_odds
		WHERE group_id = $1 AND market_id = $2 AND fixture_id = $3
		  AND external_source_fixture_id = $4 AND source_id = $5
	`, groupID, marketID, fixtureID, externalSourceFixtureID, sourceID).Scan(
		&o.GroupID, &o.MarketID, &o.FixtureID, &o.ExternalSourceFixtureID, &o.SourceID, &o.Coefficient,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get fixture odds: %w", err)
	}
	return &o, nil
}

// ListAll retrieves every row (full scan).
func (s *SourceOddsStore) ListAll(ctx context.Context) ([]*domain.SourceOdds, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT group_id, market_id, fixture_id, external_source_fixture_id, source_id, coefficient
		FROM fixture_odds
		ORDER BY fixture_id, group_id, market_id, source_id, external_source_fixture_id
	`)
	if err != nil {
		return nil, fmt.Errorf("list fixture odds: %w", err)
	}
	defer rows.Close()

	var result []*domain.SourceOdds
	for rows.Next() {
		var o domain.SourceOdds
		if err := rows.Scan(
			&o.GroupID, &o.MarketID, &o.FixtureID, &o.ExternalSourceFixtureID, &o.SourceID, &o.Coefficient,
		); err != nil {
			return nil, fmt.Errorf("scan fixture odds: %w", err)
		}
		result = append(result, &o)
	}
	return result, rows.Err()
}
