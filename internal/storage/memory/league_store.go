package memory

import (
	"context"
	"sort"
	"sync"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// LeagueStore is an in-memory implementation of storage.LeagueStore.
type LeagueStore struct {
	mu     sync.RWMutex
	data   map[int64]*domain.League // keyed by external_id
	nextID int64
}

// NewLeagueStore creates a new in-memory league store.
func NewLeagueStore() *LeagueStore {
	return &LeagueStore{
		data: make(map[int64]*domain.League),
	}
}

// Insert adds a league. Returns ErrDuplicateKey if external_id exists.
func (s *LeagueStore) Insert(_ context.Context, l *domain.League) error {
	if l == nil || l.ExternalID == 0 || l.CountryCode == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[l.ExternalID]; exists {
		return storage.ErrDuplicateKey
	}

	s.nextID++
	l.ID = s.nextID
	leagueCopy := *l
	s.data[l.ExternalID] = &leagueCopy
	return nil
}

// GetByExternalID retrieves a league. Returns ErrNotFound if not exists.
func (s *LeagueStore) GetByExternalID(_ context.Context, externalID int64) (*domain.League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, exists := s.data[externalID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	leagueCopy := *l
	return &leagueCopy, nil
}

// ListActiveByCountry retrieves active leagues of a country, ordered by external_id ASC.
func (s *LeagueStore) ListActiveByCountry(_ context.Context, countryCode string) ([]*domain.League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.League
	for _, l := range s.data {
		if l.IsActive && l.CountryCode == countryCode {
			leagueCopy := *l
			result = append(result, &leagueCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ExternalID < result[j].ExternalID
	})
	return result, nil
}

var _ storage.LeagueStore = (*LeagueStore)(nil)
