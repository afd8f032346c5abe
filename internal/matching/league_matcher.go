package matching

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"odds-aggregator/internal/catalog"
	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/resolve"
)

// LeagueMatcher onboards a source's leagues by resolving country and
// league names and recording SourceLeagueMatch rows.
type LeagueMatcher struct {
	opts Options
}

// NewLeagueMatcher creates a LeagueMatcher.
func NewLeagueMatcher(opts Options) *LeagueMatcher {
	opts.defaults()
	return &LeagueMatcher{opts: opts}
}

// LeagueMatchResult is the SourceLeagueMatch for a raw league.
type LeagueMatchResult struct {
	Match   *domain.SourceLeagueMatch
	Created bool
}

// MatchLeague resolves raw's country then league (exact or alias) and
// records the match insert-or-ignore.
func (m *LeagueMatcher) MatchLeague(ctx context.Context, sc catalog.SourceContext, raw domain.RawLeague) (*LeagueMatchResult, error) {
	log := m.opts.Logger.With(
		zap.String("source", sc.Source.Name),
		zap.String("source_league_id", raw.SourceLeagueID),
		zap.String("league", raw.SourceLeagueName),
		zap.String("country", raw.SourceCountryName),
	)
	resolver := resolve.New(m.opts.Universe, sc.Catalog)

	country, err := resolver.Resolve(ctx, domain.AliasScopeCountry, raw.SourceCountryName, "")
	if err != nil {
		if errors.Is(err, resolve.ErrUnresolved) {
			log.Info("skip league: country unresolved")
			return nil, noMatch(ReasonCountryUnresolved, raw.SourceCountryName, err)
		}
		return nil, fmt.Errorf("resolve country: %w", err)
	}

	league, err := resolver.Resolve(ctx, domain.AliasScopeLeague, raw.SourceLeagueName, country.Key)
	if err != nil {
		if errors.Is(err, resolve.ErrUnresolved) {
			log.Info("skip league: league unresolved", zap.String("country_code", country.Key))
			return nil, noMatch(ReasonLeagueUnresolved, raw.SourceLeagueName, err)
		}
		return nil, fmt.Errorf("resolve league: %w", err)
	}

	leagueID, err := strconv.ParseInt(league.Key, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("league key %q: %w", league.Key, err)
	}

	match := &domain.SourceLeagueMatch{
		LeagueID:       leagueID,
		SourceID:       sc.Source.ID,
		SourceLeagueID: raw.SourceLeagueID,
	}
	created, err := m.opts.LeagueMatches.InsertIgnore(ctx, match)
	if err != nil {
		return nil, fmt.Errorf("record source league match: %w", err)
	}
	if created {
		log.Info("league onboarded", zap.Int64("league_id", leagueID))
	}
	return &LeagueMatchResult{Match: match, Created: created}, nil
}
