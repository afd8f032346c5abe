package memory

import (
	"context"
	"sort"
	"sync"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

type sourceOddsKey struct {
	groupID                 int64
	marketID                int64
	fixtureID               int64
	externalSourceFixtureID string
	sourceID                int64
}

// SourceOddsStore is an in-memory implementation of storage.SourceOddsStore.
type SourceOddsStore struct {
	mu   sync.RWMutex
	data map[sourceOddsKey]*domain.SourceOdds
}

// NewSourceOddsStore creates a new in-memory source odds store.
func NewSourceOddsStore() *SourceOddsStore {
	return &SourceOddsStore{
		data: make(map[sourceOddsKey]*domain.SourceOdds),
	}
}

// Upsert writes a row; on conflict only coefficient is overwritten.
func (s *SourceOddsStore) Upsert(_ context.Context, o *domain.SourceOdds) error {
	if o == nil || o.FixtureID == 0 || o.SourceID == 0 || o.ExternalSourceFixtureID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := sourceOddsKey{
		groupID:                 o.GroupID,
		marketID:                o.MarketID,
		fixtureID:               o.FixtureID,
		externalSourceFixtureID: o.ExternalSourceFixtureID,
		sourceID:                o.SourceID,
	}
	if existing, exists := s.data[key]; exists {
		existing.Coefficient = o.Coefficient
		return nil
	}
	oddsCopy := *o
	s.data[key] = &oddsCopy
	return nil
}

// GetByKey retrieves one row. Returns ErrNotFound if not exists.
func (s *SourceOddsStore) GetByKey(_ context.Context, groupID, marketID, fixtureID int64, externalSourceFixtureID string, sourceID int64) (*domain.SourceOdds, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, exists := s.data[sourceOddsKey{
		groupID:                 groupID,
		marketID:                marketID,
		fixtureID:               fixtureID,
		externalSourceFixtureID: externalSourceFixtureID,
		sourceID:                sourceID,
	}]
	if !exists {
		return nil, storage.ErrNotFound
	}
	oddsCopy := *o
	return &oddsCopy, nil
}

// ListAll retrieves every row.
func (s *SourceOddsStore) ListAll(_ context.Context) ([]*domain.SourceOdds, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.SourceOdds, 0, len(s.data))
	for _, o := range s.data {
		oddsCopy := *o
		result = append(result, &oddsCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.FixtureID != b.FixtureID {
			return a.FixtureID < b.FixtureID
		}
		if a.GroupID != b.GroupID {
			return a.GroupID < b.GroupID
		}
		if a.MarketID != b.MarketID {
			return a.MarketID < b.MarketID
		}
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		return a.ExternalSourceFixtureID < b.ExternalSourceFixtureID
	})
	return result, nil
}

var _ storage.SourceOddsStore = (*SourceOddsStore)(nil)
