package resolve

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// Entry is one canonical name and the key identifying it:
// country code, league external id, or the team name itself.
type Entry struct {
	Name string
	Key  string
}

// Universe lists the canonical names a raw name may resolve to.
type Universe interface {
	Entries(ctx context.Context, scope domain.AliasScope, context string) ([]Entry, error)
}

// StoreUniverse reads canonical names from storage:
// active countries, active leagues of a country (context = country code)
// and team names of a league's fixtures from today on (context = league external id).
type StoreUniverse struct {
	Countries storage.CountryStore
	Leagues   storage.LeagueStore
	Fixtures  storage.FixtureStore
	Now       func() time.Time
}

// Entries implements Universe.
func (u *StoreUniverse) Entries(ctx context.Context, scope domain.AliasScope, scopeContext string) ([]Entry, error) {
	switch scope {
	case domain.AliasScopeCountry:
		countries, err := u.Countries.ListActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("list countries: %w", err)
		}
		entries := make([]Entry, 0, len(countries))
		for _, c := range countries {
			entries = append(entries, Entry{Name: c.Name, Key: c.Code})
		}
		return entries, nil

	case domain.AliasScopeLeague:
		leagues, err := u.Leagues.ListActiveByCountry(ctx, scopeContext)
		if err != nil {
			return nil, fmt.Errorf("list leagues: %w", err)
		}
		entries := make([]Entry, 0, len(leagues))
		for _, l := range leagues {
			entries = append(entries, Entry{Name: l.Name, Key: strconv.FormatInt(l.ExternalID, 10)})
		}
		return entries, nil

	case domain.AliasScopeTeam:
		leagueID, err := strconv.ParseInt(scopeContext, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("team context %q: %w", scopeContext, storage.ErrInvalidInput)
		}
		fixtures, err := u.Fixtures.ListUpcomingByLeague(ctx, leagueID, StartOfDay(u.now()))
		if err != nil {
			return nil, fmt.Errorf("list fixtures: %w", err)
		}
		seen := make(map[string]bool)
		var entries []Entry
		for _, f := range fixtures {
			for _, name := range []string{f.HomeTeamName, f.AwayTeamName} {
				if !seen[name] {
					seen[name] = true
					entries = append(entries, Entry{Name: name, Key: name})
				}
			}
		}
		return entries, nil

	default:
		return nil, fmt.Errorf("scope %q: %w", scope, storage.ErrInvalidInput)
	}
}

func (u *StoreUniverse) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

// StartOfDay returns midnight UTC of t's UTC day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
