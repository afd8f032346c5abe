package memory

import (
	"context"
	"sync"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

type leagueSourceKey struct {
	leagueID int64
	sourceID int64
}

type sourceRawKey struct {
	sourceID int64
	rawID    string
}

// SourceLeagueMatchStore is an in-memory implementation of storage.SourceLeagueMatchStore.
type SourceLeagueMatchStore struct {
	mu       sync.RWMutex
	data     map[leagueSourceKey]*domain.SourceLeagueMatch
	bySource map[sourceRawKey]leagueSourceKey
}

// NewSourceLeagueMatchStore creates a new in-memory source league match store.
func NewSourceLeagueMatchStore() *SourceLeagueMatchStore {
	return &SourceLeagueMatchStore{
		data:     make(map[leagueSourceKey]*domain.SourceLeagueMatch),
		bySource: make(map[sourceRawKey]leagueSourceKey),
	}
}

// InsertIgnore records a match unless (league_id, source_id) exists.
func (s *SourceLeagueMatchStore) InsertIgnore(_ context.Context, m *domain.SourceLeagueMatch) (bool, error) {
	if m == nil || m.LeagueID == 0 || m.SourceID == 0 || m.SourceLeagueID == "" {
		return false, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := leagueSourceKey{leagueID: m.LeagueID, sourceID: m.SourceID}
	if _, exists := s.data[key]; exists {
		return false, nil
	}

	matchCopy := *m
	s.data[key] = &matchCopy
	s.bySource[sourceRawKey{sourceID: m.SourceID, rawID: m.SourceLeagueID}] = key
	return true, nil
}

// GetBySourceLeague retrieves the match for a source's raw league id.
func (s *SourceLeagueMatchStore) GetBySourceLeague(_ context.Context, sourceID int64, sourceLeagueID string) (*domain.SourceLeagueMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, exists := s.bySource[sourceRawKey{sourceID: sourceID, rawID: sourceLeagueID}]
	if !exists {
		return nil, storage.ErrNotFound
	}
	matchCopy := *s.data[key]
	return &matchCopy, nil
}

var _ storage.SourceLeagueMatchStore = (*SourceLeagueMatchStore)(nil)
