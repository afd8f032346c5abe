package postgres

import (
	"context"
	"fmt"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// CountryStore implements storage.CountryStore using PostgreSQL.
type CountryStore struct {
	pool *Pool
}

// NewCountryStore creates a new CountryStore.
func NewCountryStore(pool *Pool) *CountryStore {
	return &CountryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CountryStore = (*CountryStore)(nil)

// Insert adds a country. Returns ErrDuplicateKey if code exists.
func (s *CountryStore) Insert(ctx context.Context, c *domain.Country) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO countries (code, name, is_active) VALUES ($1, $2, $3)`,
		c.Code, c.Name, c.IsActive,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert country: %w", err)
	}
	return nil
}

// GetByCode retrieves a country. Returns ErrNotFound if not exists.
func (s *CountryStore) GetByCode(ctx context.Context, code string) (*domain.Country, error) {
	var c domain.Country
	err := s.pool.QueryRow(ctx,
		`SELECT code, name, is_active FROM countries WHERE code = $1`, code,
	).Scan(&c.Code, &c.Name, &c.IsActive)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get country: %w", err)
	}
	return &c, nil
}

// ListActive retrieves all active countries, ordered by code ASC.
func (s *CountryStore) ListActive(ctx context.Context) ([]*domain.Country, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT code, name, is_active FROM countries WHERE is_active ORDER BY code ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list active countries: %w", err)
	}
	defer rows.Close()

	var result []*domain.Country
	for rows.Next() {
		var c domain.Country
		if err := rows.Scan(&c.Code, &c.Name, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}
