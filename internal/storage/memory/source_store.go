package memory

import (
	"context"
	"sync"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// SourceStore is an in-memory implementation of storage.SourceStore.
type SourceStore struct {
	mu     sync.Mutex
	data   map[string]*domain.Source // keyed by name
	nextID int64
}

// NewSourceStore creates a new in-memory source store.
func NewSourceStore() *SourceStore {
	return &SourceStore{
		data: make(map[string]*domain.Source),
	}
}

// Ensure returns the source with the given name, creating it if missing.
func (s *SourceStore) Ensure(_ context.Context, name string) (*domain.Source, error) {
	if name == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src, exists := s.data[name]
	if !exists {
		s.nextID++
		src = &domain.Source{ID: s.nextID, Name: name}
		s.data[name] = src
	}
	sourceCopy := *src
	return &sourceCopy, nil
}

// GetByName retrieves a source. Returns ErrNotFound if not exists.
func (s *SourceStore) GetByName(_ context.Context, name string) (*domain.Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, exists := s.data[name]
	if !exists {
		return nil, storage.ErrNotFound
	}
	sourceCopy := *src
	return &sourceCopy, nil
}

var _ storage.SourceStore = (*SourceStore)(nil)
