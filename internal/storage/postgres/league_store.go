package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// LeagueStore implements storage.LeagueStore using PostgreSQL.
type LeagueStore struct {
	pool *Pool
}

// NewLeagueStore creates a new LeagueStore.
func NewLeagueStore(pool *Pool) *LeagueStore {
	return &LeagueStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LeagueStore = (*LeagueStore)(nil)

const leagueColumns = `id, external_id, name, country_code, is_active`

// Insert adds a league. Returns ErrDuplicateKey if external_id exists.
func (s *LeagueStore) Insert(ctx context.Context, l *domain.League) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO leagues (external_id, name, country_code, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, l.ExternalID, l.Name, l.CountryCode, l.IsActive).Scan(&l.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isInvalidInputError(err) {
			return storage.ErrInvalidInput
		}
		return fmt.Errorf("insert league: %w", err)
	}
	return nil
}

// GetByExternalID retrieves a league. Returns ErrNotFound if not exists.
func (s *LeagueStore) GetByExternalID(ctx context.Context, externalID int64) (*domain.League, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+leagueColumns+` FROM leagues WHERE external_id = $1`, externalID)
	l, err := scanLeague(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get league by external id: %w", err)
	}
	return l, nil
}

// ListActiveByCountry retrieves active leagues of a country, ordered by external_id ASC.
func (s *LeagueStore) ListActiveByCountry(ctx context.Context, countryCode string) ([]*domain.League, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+leagueColumns+`
		FROM leagues
		WHERE country_code = $1 AND is_active
		ORDER BY external_id ASC
	`, countryCode)
	if err != nil {
		return nil, fmt.Errorf("list leagues by country: %w", err)
	}
	defer rows.Close()

	var result []*domain.League
	for rows.Next() {
		l, err := scanLeague(rows)
		if err != nil {
			return nil, fmt.Errorf("scan league: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func scanLeague(row pgx.Row) (*domain.League, error) {
	var l domain.League
	if err := row.Scan(&l.ID, &l.ExternalID, &l.Name, &l.CountryCode, &l.IsActive); err != nil {
		return nil, err
	}
	return &l, nil
}
