package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

type bestOddsKey struct {
	fixtureID   int64
	marketID    int64
	groupID     int64
	countryCode string
}

func keyOf(b *domain.BestOdds) bestOddsKey {
	return bestOddsKey{
		fixtureID:   b.FixtureID,
		marketID:    b.MarketID,
		groupID:     b.GroupID,
		countryCode: b.CountryCode,
	}
}

// BestOddsStore is an in-memory implementation of storage.BestOddsStore.
type BestOddsStore struct {
	mu   sync.RWMutex
	data map[bestOddsKey]*domain.BestOdds
}

// NewBestOddsStore creates a new in-memory best odds store.
func NewBestOddsStore() *BestOddsStore {
	return &BestOddsStore{
		data: make(map[bestOddsKey]*domain.BestOdds),
	}
}

// UpsertBatch writes all rows under one lock. The stored coefficient of an
// existing key becomes previous_coefficient. Input rows are validated first
// so a rejected batch leaves the store untouched.
func (s *BestOddsStore) UpsertBatch(_ context.Context, rows []*domain.BestOdds) ([]*domain.BestOdds, error) {
	for _, r := range rows {
		if r == nil || r.FixtureID == 0 || r.CountryCode == "" || r.BookmakerID == 0 {
			return nil, storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	written := make([]*domain.BestOdds, 0, len(rows))
	for _, r := range rows {
		row := *r
		row.PreviousCoefficient = decimal.NullDecimal{}
		if existing, exists := s.data[keyOf(r)]; exists {
			row.PreviousCoefficient = decimal.NewNullDecimal(existing.Coefficient)
		}
		s.data[keyOf(r)] = &row

		rowCopy := row
		written = append(written, &rowCopy)
	}
	return written, nil
}

// GetByKey retrieves one row. Returns ErrNotFound if not exists.
func (s *BestOddsStore) GetByKey(_ context.Context, fixtureID, marketID, groupID int64, countryCode string) (*domain.BestOdds, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, exists := s.data[bestOddsKey{fixtureID: fixtureID, marketID: marketID, groupID: groupID, countryCode: countryCode}]
	if !exists {
		return nil, storage.ErrNotFound
	}
	bestCopy := *b
	return &bestCopy, nil
}

// ListByCountry retrieves all rows of a country, ordered by fixture_id, group_id, market_id.
func (s *BestOddsStore) ListByCountry(_ context.Context, countryCode string) ([]*domain.BestOdds, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.BestOdds
	for key, b := range s.data {
		if key.countryCode == countryCode {
			bestCopy := *b
			result = append(result, &bestCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.FixtureID != b.FixtureID {
			return a.FixtureID < b.FixtureID
		}
		if a.GroupID != b.GroupID {
			return a.GroupID < b.GroupID
		}
		return a.MarketID < b.MarketID
	})
	return result, nil
}

var _ storage.BestOddsStore = (*BestOddsStore)(nil)
