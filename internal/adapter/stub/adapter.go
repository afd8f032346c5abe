// Package stub provides an in-memory adapter for tests.
package stub

import (
	"context"

	"odds-aggregator/internal/adapter"
	"odds-aggregator/internal/domain"
)

// Adapter returns fixed records, or Err from every fetch when set.
type Adapter struct {
	SourceName string
	Leagues    []domain.RawLeague
	Fixtures   []domain.RawFixture
	Odds       []domain.RawOdds
	Err        error
}

// Compile-time interface check.
var _ adapter.Adapter = (*Adapter)(nil)

// Name returns the source name.
func (a *Adapter) Name() string {
	return a.SourceName
}

// FetchLeagues returns a copy of Leagues.
func (a *Adapter) FetchLeagues(_ context.Context) ([]domain.RawLeague, error) {
	if a.Err != nil {
		return nil, a.Err
	}
	return append([]domain.RawLeague(nil), a.Leagues...), nil
}

// FetchFixtures returns a copy of Fixtures.
func (a *Adapter) FetchFixtures(_ context.Context) ([]domain.RawFixture, error) {
	if a.Err != nil {
		return nil, a.Err
	}
	return append([]domain.RawFixture(nil), a.Fixtures...), nil
}

// FetchOdds returns a copy of Odds.
func (a *Adapter) FetchOdds(_ context.Context) ([]domain.RawOdds, error) {
	if a.Err != nil {
		return nil, a.Err
	}
	return append([]domain.RawOdds(nil), a.Odds...), nil
}
