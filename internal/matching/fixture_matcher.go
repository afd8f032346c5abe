package matching

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"odds-aggregator/internal/catalog"
	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/names"
	"odds-aggregator/internal/resolve"
	"odds-aggregator/internal/storage"
)

// Options configures the matchers.
type Options struct {
	LeagueMatches storage.SourceLeagueMatchStore
	SourceMatches storage.SourceMatchStore
	Fixtures      storage.FixtureStore
	Universe      resolve.Universe

	// Now defaults to time.Now.
	Now func() time.Time

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

func (o *Options) defaults() {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// MatchResult is the canonical fixture a raw fixture was mapped to.
type MatchResult struct {
	Fixture *domain.Fixture
	// Created is true when this call recorded the SourceMatch row.
	Created bool
}

// FixtureMatcher maps RawFixture onto canonical fixtures.
type FixtureMatcher struct {
	opts Options
}

// NewFixtureMatcher creates a FixtureMatcher.
func NewFixtureMatcher(opts Options) *FixtureMatcher {
	opts.defaults()
	return &FixtureMatcher{opts: opts}
}

// Match resolves raw to a canonical fixture and records the SourceMatch
// insert-or-ignore. Every failure to map is an ErrNoMatch.
func (m *FixtureMatcher) Match(ctx context.Context, sc catalog.SourceContext, raw domain.RawFixture) (*MatchResult, error) {
	log := m.opts.Logger.With(
		zap.String("source", sc.Source.Name),
		zap.String("source_fixture_id", raw.SourceFixtureID),
		zap.String("home", raw.HomeTeamName),
		zap.String("away", raw.AwayTeamName),
	)

	// Checked before touching storage.
	today := resolve.StartOfDay(m.opts.Now())
	if raw.KickoffUTC.Before(today) {
		log.Debug("skip stale fixture", zap.Time("kickoff", raw.KickoffUTC))
		return nil, noMatch(ReasonStale, raw.KickoffUTC.UTC().Format(time.RFC3339), nil)
	}

	lm, err := m.opts.LeagueMatches.GetBySourceLeague(ctx, sc.Source.ID, raw.SourceLeagueID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("skip fixture: league not onboarded", zap.String("source_league_id", raw.SourceLeagueID))
			return nil, noMatch(ReasonLeagueNotOnboarded, "source league "+raw.SourceLeagueID, nil)
		}
		return nil, fmt.Errorf("get source league match: %w", err)
	}
	leagueCtx := strconv.FormatInt(lm.LeagueID, 10)
	log = log.With(zap.Int64("league_id", lm.LeagueID))

	resolver := resolve.New(m.opts.Universe, sc.Catalog)
	home, err := resolver.Resolve(ctx, domain.AliasScopeTeam, raw.HomeTeamName, leagueCtx)
	if err != nil {
		return nil, m.unresolved(log, err)
	}
	away, err := resolver.Resolve(ctx, domain.AliasScopeTeam, raw.AwayTeamName, leagueCtx)
	if err != nil {
		return nil, m.unresolved(log, err)
	}

	candidates, err := m.opts.Fixtures.FindByTeams(ctx, lm.LeagueID, today, home.Name, away.Name)
	if err != nil {
		return nil, fmt.Errorf("find fixtures: %w", err)
	}
	if len(candidates) == 0 {
		log.Info("skip fixture: no candidate",
			zap.String("resolved_home", home.Name),
			zap.String("resolved_away", away.Name))
		return nil, noMatch(ReasonNoCandidate, home.Name+" vs "+away.Name, nil)
	}
	if len(candidates) > 1 {
		log.Debug("ambiguous fixture candidates", zap.Int("count", len(candidates)))
	}
	fixture := bestCandidate(candidates, home.Name, away.Name, raw.KickoffUTC)

	created, err := m.opts.SourceMatches.InsertIgnore(ctx, &domain.SourceMatch{
		FixtureID:       fixture.ID,
		SourceID:        sc.Source.ID,
		SourceFixtureID: raw.SourceFixtureID,
	})
	if err != nil {
		return nil, fmt.Errorf("record source match: %w", err)
	}
	if created {
		log.Debug("fixture matched", zap.Int64("fixture_id", fixture.ID))
		return &MatchResult{Fixture: fixture, Created: true}, nil
	}

	existing, err := m.existingMatch(ctx, fixture.ID, sc.Source.ID)
	if err != nil {
		return nil, err
	}
	if existing.SourceFixtureID != raw.SourceFixtureID {
		log.Warn("skip fixture: already matched from another source fixture",
			zap.Int64("fixture_id", fixture.ID),
			zap.String("matched_source_fixture_id", existing.SourceFixtureID))
		return nil, noMatch(ReasonAlreadyMatched,
			fmt.Sprintf("fixture %d is mapped to %s", fixture.ID, existing.SourceFixtureID), nil)
	}

	return &MatchResult{Fixture: fixture}, nil
}

// existingMatch returns the SourceMatch that holds (fixtureID, sourceID).
func (m *FixtureMatcher) existingMatch(ctx context.Context, fixtureID, sourceID int64) (*domain.SourceMatch, error) {
	rows, err := m.opts.SourceMatches.ListByFixture(ctx, fixtureID)
	if err != nil {
		return nil, fmt.Errorf("list source matches: %w", err)
	}
	for _, row := range rows {
		if row.SourceID == sourceID {
			return row, nil
		}
	}
	return nil, fmt.Errorf("source match for fixture %d source %d: %w", fixtureID, sourceID, storage.ErrNotFound)
}

func (m *FixtureMatcher) unresolved(log *zap.Logger, err error) error {
	if errors.Is(err, resolve.ErrUnresolved) {
		log.Info("skip fixture: team unresolved", zap.Error(err))
		return noMatch(ReasonTeamUnresolved, "", err)
	}
	return fmt.Errorf("resolve team: %w", err)
}

// bestCandidate orders by exact name pair, combined edit distance,
// distance to kickoff, then fixture id.
func bestCandidate(candidates []*domain.Fixture, home, away string, kickoff time.Time) *domain.Fixture {
	type scored struct {
		fixture  *domain.Fixture
		exact    bool
		distance int
		offset   time.Duration
	}

	foldedHome, foldedAway := names.FoldTeam(home), names.FoldTeam(away)
	ranked := make([]scored, 0, len(candidates))
	for _, f := range candidates {
		offset := f.Date.Sub(kickoff)
		if offset < 0 {
			offset = -offset
		}
		ranked = append(ranked, scored{
			fixture: f,
			exact:   f.HomeTeamName == home && f.AwayTeamName == away,
			distance: levenshtein.ComputeDistance(names.FoldTeam(f.HomeTeamName), foldedHome) +
				levenshtein.ComputeDistance(names.FoldTeam(f.AwayTeamName), foldedAway),
			offset: offset,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.exact != b.exact {
			return a.exact
		}
		if a.distance != b.distance {
			return a.distance < b.distance
		}
		if a.offset != b.offset {
			return a.offset < b.offset
		}
		return a.fixture.ID < b.fixture.ID
	})
	return ranked[0].fixture
}
