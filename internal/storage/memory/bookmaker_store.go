package memory

import (
	"context"
	"sort"
	"sync"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// BookmakerStore is an in-memory implementation of storage.BookmakerStore.
// Licences are resolved against the given SourceStore by name.
type BookmakerStore struct {
	mu      sync.RWMutex
	data    []*domain.Bookmaker
	sources *SourceStore
	nextID  int64
}

// NewBookmakerStore creates a new in-memory bookmaker store.
func NewBookmakerStore(sources *SourceStore) *BookmakerStore {
	return &BookmakerStore{sources: sources}
}

// Insert adds a bookmaker licence row and assigns b.ID.
func (s *BookmakerStore) Insert(_ context.Context, b *domain.Bookmaker) error {
	if b == nil || b.Name == "" || b.CountryCode == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data {
		if existing.Name == b.Name && existing.CountryCode == b.CountryCode {
			return storage.ErrDuplicateKey
		}
	}

	s.nextID++
	b.ID = s.nextID
	bookmakerCopy := *b
	s.data = append(s.data, &bookmakerCopy)
	return nil
}

// ListLicenses joins bookmakers with sources by name.
func (s *BookmakerStore) ListLicenses(ctx context.Context) ([]domain.License, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.License
	for _, b := range s.data {
		src, err := s.sources.GetByName(ctx, b.Name)
		if err != nil {
			continue // no source with this name: bookmaker not ingested
		}
		result = append(result, domain.License{
			CountryCode: b.CountryCode,
			SourceID:    src.ID,
			BookmakerID: b.ID,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.CountryCode != b.CountryCode {
			return a.CountryCode < b.CountryCode
		}
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		return a.BookmakerID < b.BookmakerID
	})
	return result, nil
}

var _ storage.BookmakerStore = (*BookmakerStore)(nil)
