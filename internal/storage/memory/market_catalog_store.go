package memory

import (
	"context"
	"sort"
	"sync"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// MarketCatalogStore is an in-memory implementation of storage.MarketCatalogStore.
type MarketCatalogStore struct {
	mu       sync.RWMutex
	groups   map[int64]*domain.MarketGroup
	outcomes map[int64]*domain.MarketOutcome
}

// NewMarketCatalogStore creates a new in-memory market catalog store.
func NewMarketCatalogStore() *MarketCatalogStore {
	return &MarketCatalogStore{
		groups:   make(map[int64]*domain.MarketGroup),
		outcomes: make(map[int64]*domain.MarketOutcome),
	}
}

// InsertGroup adds a group. Returns ErrDuplicateKey if id exists.
func (s *MarketCatalogStore) InsertGroup(_ context.Context, g *domain.MarketGroup) error {
	if g == nil || g.ID == 0 || g.Name == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[g.ID]; exists {
		return storage.ErrDuplicateKey
	}
	groupCopy := *g
	s.groups[g.ID] = &groupCopy
	return nil
}

// InsertOutcome adds an outcome. Returns ErrDuplicateKey if id exists.
func (s *MarketCatalogStore) InsertOutcome(_ context.Context, o *domain.MarketOutcome) error {
	if o == nil || o.ID == 0 || o.Name == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.outcomes[o.ID]; exists {
		return storage.ErrDuplicateKey
	}
	if _, exists := s.groups[o.GroupID]; !exists {
		return storage.ErrInvalidInput
	}
	outcomeCopy := *o
	s.outcomes[o.ID] = &outcomeCopy
	return nil
}

// ListGroups retrieves all groups, ordered by id ASC.
func (s *MarketCatalogStore) ListGroups(_ context.Context) ([]*domain.MarketGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.MarketGroup, 0, len(s.groups))
	for _, g := range s.groups {
		groupCopy := *g
		result = append(result, &groupCopy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListOutcomes retrieves all outcomes, ordered by id ASC.
func (s *MarketCatalogStore) ListOutcomes(_ context.Context) ([]*domain.MarketOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.MarketOutcome, 0, len(s.outcomes))
	for _, o := range s.outcomes {
		outcomeCopy := *o
		result = append(result, &outcomeCopy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

var _ storage.MarketCatalogStore = (*MarketCatalogStore)(nil)
