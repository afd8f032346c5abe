package postgres

import (
	"context"
	"fmt"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// SourceLeagueMatchStore implements storage.SourceLeagueMatchStore using PostgreSQL.
type SourceLeagueMatchStore struct {
	pool *Pool
}

// NewSourceLeagueMatchStore creates a new SourceLeagueMatchStore.
func NewSourceLeagueMatchStore(pool *Pool) *SourceLeagueMatchStore {
	return &SourceLeagueMatchStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SourceLeagueMatchStore = (*SourceLeagueMatchStore)(nil)

// InsertIgnore records a match unless (league_id, source_id) exists.
func (s *SourceLeagueMatchStore) InsertIgnore(ctx context.Context, m *domain.SourceLeagueMatch) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO source_league_matches (league_id, source_id, source_league_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (league_id, source_id) DO NOTHING
	`, m.LeagueID, m.SourceID, m.SourceLeagueID)
	if err != nil {
		if isInvalidInputError(err) {
			return false, storage.ErrInvalidInput
		}
		return false, fmt.Errorf("insert source league match: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetBySourceLeague retrieves the match for a source's raw league id.
func (s *SourceLeagueMatchStore) GetBySourceLeague(ctx context.Context, sourceID int64, sourceLeagueID string) (*domain.SourceLeagueMatch, error) {
	var m domain.SourceLeagueMatch
	err := s.pool.QueryRow(ctx, `
		SELECT league_id, source_id, source_league_id
		FROM source_league_matches
		WHERE source_id = $1 AND source_league_id = $2
		ORDER BY league_id ASC
		LIMIT 1
	`, sourceID, sourceLeagueID).Scan(&m.LeagueID, &m.SourceID, &m.SourceLeagueID)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get source league match: %w", err)
	}
	return &m, nil
}

// SourceMatchStore implements storage.SourceMatchStore using PostgreSQL.
type SourceMatchStore struct {
	pool *Pool
}

// NewSourceMatchStore creates a new SourceMatchStore.
func NewSourceMatchStore(pool *Pool) *SourceMatchStore {
	return &SourceMatchStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SourceMatchStore = (*SourceMatchStore)(nil)

// InsertIgnore records a match unless (fixture_id, source_id) exists.
func (s *SourceMatchStore) InsertIgnore(ctx context.Context, m *domain.SourceMatch) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO source_matches (fixture_id, source_id, source_fixture_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (fixture_id, source_id) DO NOTHING
	`, m.FixtureID, m.SourceID, m.SourceFixtureID)
	if err != nil {
		if isInvalidInputError(err) {
			return false, storage.ErrInvalidInput
		}
		return false, fmt.Errorf("insert source match: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetBySourceFixture retrieves the match for a source's raw fixture id.
func (s *SourceMatchStore) GetBySourceFixture(ctx context.Context, sourceID int64, sourceFixtureID string) (*domain.SourceMatch, error) {
	var m domain.SourceMatch
	err := s.pool.QueryRow(ctx, `
		SELECT fixture_id, source_id, source_fixture_id
		FROM source_matches
		WHERE source_id = $1 AND source_fixture_id = $2
		ORDER BY fixture_id ASC
		LIMIT 1
	`, sourceID, sourceFixtureID).Scan(&m.FixtureID, &m.SourceID, &m.SourceFixtureID)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get source match: %w", err)
	}
	return &m, nil
}

// ListByFixture retrieves all matches of a canonical fixture, ordered by source_id ASC.
func (s *SourceMatchStore) ListByFixture(ctx context.Context, fixtureID int64) ([]*domain.SourceMatch, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT fixture_id, source_id, source_fixture_id
		FROM source_matches
		WHERE fixture_id = $1
		ORDER BY source_id ASC
	`, fixtureID)
	if err != nil {
		return nil, fmt.Errorf("list source matches: %w", err)
	}
	defer rows.Close()

	var result []*domain.SourceMatch
	for rows.Next() {
		var m domain.SourceMatch
		if err := rows.Scan(&m.FixtureID, &m.SourceID, &m.SourceFixtureID); err != nil {
			return nil, fmt.Errorf("scan source match: %w", err)
		}
		result = append(result, &m)
	}
	return result, rows.Err()
}
