package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// FixtureStore is an in-memory implementation of storage.FixtureStore.
type FixtureStore struct {
	mu     sync.RWMutex
	data   map[int64]*domain.Fixture // keyed by id
	nextID int64
}

// NewFixtureStore creates a new in-memory fixture store.
func NewFixtureStore() *FixtureStore {
	return &FixtureStore{
		data: make(map[int64]*domain.Fixture),
	}
}

// Insert adds a fixture and assigns f.ID.
func (s *FixtureStore) Insert(_ context.Context, f *domain.Fixture) error {
	if f == nil || f.LeagueID == 0 || f.HomeTeamName == "" || f.AwayTeamName == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	f.ID = s.nextID
	fixtureCopy := *f
	s.data[f.ID] = &fixtureCopy
	return nil
}

// ListUpcomingByLeague retrieves fixtures of a league with date >= from.
func (s *FixtureStore) ListUpcomingByLeague(_ context.Context, leagueID int64, from time.Time) ([]*domain.Fixture, error) {
	return s.filter(func(f *domain.Fixture) bool {
		return f.LeagueID == leagueID && !f.Date.Before(from)
	}), nil
}

// FindByTeams retrieves upcoming fixtures whose team names contain home and
// away case-insensitively, mirroring ILIKE '%name%'.
func (s *FixtureStore) FindByTeams(_ context.Context, leagueID int64, from time.Time, home, away string) ([]*domain.Fixture, error) {
	home, away = strings.ToLower(home), strings.ToLower(away)
	return s.filter(func(f *domain.Fixture) bool {
		return f.LeagueID == leagueID &&
			!f.Date.Before(from) &&
			strings.Contains(strings.ToLower(f.HomeTeamName), home) &&
			strings.Contains(strings.ToLower(f.AwayTeamName), away)
	}), nil
}

func (s *FixtureStore) filter(keep func(*domain.Fixture) bool) []*domain.Fixture {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Fixture
	for _, f := range s.data {
		if keep(f) {
			fixtureCopy := *f
			result = append(result, &fixtureCopy)
		}
	}

	// Sort by date ASC, id ASC
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

var _ storage.FixtureStore = (*FixtureStore)(nil)
