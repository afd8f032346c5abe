package postgres

import (
	"context"
	"fmt"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// BookmakerStore implements storage.BookmakerStore using PostgreSQL.
type BookmakerStore struct {
	pool *Pool
}

// NewBookmakerStore creates a new BookmakerStore.
func NewBookmakerStore(pool *Pool) *BookmakerStore {
	return &BookmakerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BookmakerStore = (*BookmakerStore)(nil)

// Insert adds a bookmaker licence row. Sets b.ID on success.
func (s *BookmakerStore) Insert(ctx context.Context, b *domain.Bookmaker) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO bookmakers (name, country_code) VALUES ($1, $2)
		RETURNING id
	`, b.Name, b.CountryCode).Scan(&b.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isInvalidInputError(err) {
			return storage.ErrInvalidInput
		}
		return fmt.Errorf("insert bookmaker: %w", err)
	}
	return nil
}

// ListLicenses joins bookmakers with sources by name.
func (s *BookmakerStore) ListLicenses(ctx context.Context) ([]domain.License, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT b.country_code, s.id, b.id
		FROM bookmakers b
		JOIN sources s ON s.name = b.name
		ORDER BY b.country_code, s.id, b.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	defer rows.Close()

	var result []domain.License
	for rows.Next() {
		var l domain.License
		if err := rows.Scan(&l.CountryCode, &l.SourceID, &l.BookmakerID); err != nil {
			return nil, fmt.Errorf("scan license: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
