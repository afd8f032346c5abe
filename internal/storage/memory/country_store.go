package memory

import (
	"context"
	"sort"
	"sync"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// CountryStore is an in-memory implementation of storage.CountryStore.
type CountryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Country // keyed by code
}

// NewCountryStore creates a new in-memory country store.
func NewCountryStore() *CountryStore {
	return &CountryStore{
		data: make(map[string]*domain.Country),
	}
}

// Insert adds a country. Returns ErrDuplicateKey if code exists.
func (s *CountryStore) Insert(_ context.Context, c *domain.Country) error {
	if c == nil || c.Code == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.Code]; exists {
		return storage.ErrDuplicateKey
	}

	countryCopy := *c
	s.data[c.Code] = &countryCopy
	return nil
}

// GetByCode retrieves a country. Returns ErrNotFound if not exists.
func (s *CountryStore) GetByCode(_ context.Context, code string) (*domain.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[code]
	if !exists {
		return nil, storage.ErrNotFound
	}
	countryCopy := *c
	return &countryCopy, nil
}

// ListActive retrieves all active countries, ordered by code ASC.
func (s *CountryStore) ListActive(_ context.Context) ([]*domain.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Country
	for _, c := range s.data {
		if c.IsActive {
			countryCopy := *c
			result = append(result, &countryCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Code < result[j].Code
	})
	return result, nil
}

var _ storage.CountryStore = (*CountryStore)(nil)
