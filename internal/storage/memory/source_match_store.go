package memory

import (
	"context"
	"sort"
	"sync"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

type fixtureSourceKey struct {
	fixtureID int64
	sourceID  int64
}

// SourceMatchStore is an in-memory implementation of storage.SourceMatchStore.
type SourceMatchStore struct {
	mu       sync.RWMutex
	data     map[fixtureSourceKey]*domain.SourceMatch
	bySource map[sourceRawKey]fixtureSourceKey
}

// NewSourceMatchStore creates a new in-memory source match store.
func NewSourceMatchStore() *SourceMatchStore {
	return &SourceMatchStore{
		data:     make(map[fixtureSourceKey]*domain.SourceMatch),
		bySource: make(map[sourceRawKey]fixtureSourceKey),
	}
}

// InsertIgnore records a match unless (fixture_id, source_id) exists.
func (s *SourceMatchStore) InsertIgnore(_ context.Context, m *domain.SourceMatch) (bool, error) {
	if m == nil || m.FixtureID == 0 || m.SourceID == 0 || m.SourceFixtureID == "" {
		return false, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := fixtureSourceKey{fixtureID: m.FixtureID, sourceID: m.SourceID}
	if _, exists := s.data[key]; exists {
		return false, nil
	}

	matchCopy := *m
	s.data[key] = &matchCopy
	s.bySource[sourceRawKey{sourceID: m.SourceID, rawID: m.SourceFixtureID}] = key
	return true, nil
}

// GetBySourceFixture retrieves the match for a source's raw fixture id.
func (s *SourceMatchStore) GetBySourceFixture(_ context.Context, sourceID int64, sourceFixtureID string) (*domain.SourceMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, exists := s.bySource[sourceRawKey{sourceID: sourceID, rawID: sourceFixtureID}]
	if !exists {
		return nil, storage.ErrNotFound
	}
	matchCopy := *s.data[key]
	return &matchCopy, nil
}

// ListByFixture retrieves all matches of a canonical fixture, ordered by source_id ASC.
func (s *SourceMatchStore) ListByFixture(_ context.Context, fixtureID int64) ([]*domain.SourceMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SourceMatch
	for key, m := range s.data {
		if key.fixtureID == fixtureID {
			matchCopy := *m
			result = append(result, &matchCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SourceID < result[j].SourceID
	})
	return result, nil
}

var _ storage.SourceMatchStore = (*SourceMatchStore)(nil)
