package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// BestOddsStore implements storage.BestOddsStore using PostgreSQL.
type BestOddsStore struct {
	pool *Pool
}

// NewBestOddsStore creates a new BestOddsStore.
func NewBestOddsStore(pool *Pool) *BestOddsStore {
	return &BestOddsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BestOddsStore = (*BestOddsStore)(nil)

const bestOddsColumns = `fixture_id, market_id, group_id, country_code, bookmaker_id, coefficient, previous_coefficient`

// o.coefficient on the right-hand side is the row being replaced.
const upsertBestOddsSQL = `
	INSERT INTO odds AS o (fixture_id, market_id, group_id, country_code, bookmaker_id, coefficient)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (fixture_id, market_id, group_id, country_code) DO UPDATE SET
		previous_coefficient = o.coefficient,
		coefficient = EXCLUDED.coefficient,
		bookmaker_id = EXCLUDED.bookmaker_id
	RETURNING ` + bestOddsColumns

// UpsertBatch writes all rows in one transaction and returns them as written.
func (s *BestOddsStore) UpsertBatch(ctx context.Context, rows []*domain.BestOdds) ([]*domain.BestOdds, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	written := make([]*domain.BestOdds, 0, len(rows))
	err := s.pool.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range rows {
			batch.Queue(upsertBestOddsSQL,
				r.FixtureID, r.MarketID, r.GroupID, r.CountryCode, r.BookmakerID, r.Coefficient)
		}

		br := tx.SendBatch(ctx, batch)
		for range rows {
			b, err := scanBestOdds(br.QueryRow())
			if err != nil {
				_ = br.Close()
				if isInvalidInputError(err) {
					return storage.ErrInvalidInput
				}
				return fmt.Errorf("upsert best odds: %w", err)
			}
			written = append(written, b)
		}
		return br.Close()
	})
	if err != nil {
		return nil, err
	}
	return written, nil
}

// GetByKey retrieves one row. Returns ErrNotFound if not exists.
func (s *BestOddsStore) GetByKey(ctx context.Context, fixtureID, marketID, groupID int64, countryCode string) (*domain.BestOdds, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+bestOddsColumns+`
		FROM odds
		WHERE fixture_id = $1 AND market_id = $2 AND group_id = $3 AND country_code = $4
	`, fixtureID, marketID, groupID, countryCode)
	b, err := scanBestOdds(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get best odds: %w", err)
	}
	return b, nil
}

// ListByCountry retrieves all rows of a country, ordered by fixture_id, group_id, market_id.
func (s *BestOddsStore) ListByCountry(ctx context.Context, countryCode string) ([]*domain.BestOdds, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+bestOddsColumns+`
		FROM odds
		WHERE country_code = $1
		ORDER BY fixture_id, group_id, market_id
	`, countryCode)
	if err != nil {
		return nil, fmt.Errorf("list best odds: %w", err)
	}
	defer rows.Close()

	var result []*domain.BestOdds
	for rows.Next() {
		b, err := scanBestOdds(rows)
		if err != nil {
			return nil, fmt.Errorf("scan best odds: %w", err)
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func scanBestOdds(row pgx.Row) (*domain.BestOdds, error) {
	var b domain.BestOdds
	err := row.Scan(
		&b.FixtureID, &b.MarketID, &b.GroupID, &b.CountryCode,
		&b.BookmakerID, &b.Coefficient, &b.PreviousCoefficient,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
