package storage

import (
	"context"
	"time"

	"odds-aggregator/internal/domain"
)

// CountryStore provides access to countries storage.
type CountryStore interface {
	// Insert adds a country. Returns ErrDuplicateKey if code exists.
	Insert(ctx context.Context, c *domain.Country) error

	// GetByCode retrieves a country. Returns ErrNotFound if not exists.
	GetByCode(ctx context.Context, code string) (*domain.Country, error)

	// ListActive retrieves all active countries, ordered by code ASC.
	ListActive(ctx context.Context) ([]*domain.Country, error)
}

// LeagueStore provides access to leagues storage.
type LeagueStore interface {
	// Insert adds a league. Returns ErrDuplicateKey if external_id exists.
	// Sets l.ID on success.
	Insert(ctx context.Context, l *domain.League) error

	// GetByExternalID retrieves a league. Returns ErrNotFound if not exists.
	GetByExternalID(ctx context.Context, externalID int64) (*domain.League, error)

	// ListActiveByCountry retrieves active leagues of a country, ordered by external_id ASC.
	ListActiveByCountry(ctx context.Context, countryCode string) ([]*domain.League, error)
}

// FixtureStore provides read access to canonical fixtures.
// Fixtures are loaded by an upstream process; Insert exists for that loader and tests.
type FixtureStore interface {
	// Insert adds a fixture. Sets f.ID on success.
	Insert(ctx context.Context, f *domain.Fixture) error

	// ListUpcomingByLeague retrieves fixtures of a league with date >= from,
	// ordered by date ASC, id ASC.
	ListUpcomingByLeague(ctx context.Context, leagueID int64, from time.Time) ([]*domain.Fixture, error)

	// FindByTeams retrieves fixtures of a league with date >= from whose home
	// and away names contain the given names case-insensitively,
	// ordered by date ASC, id ASC.
	FindByTeams(ctx context.Context, leagueID int64, from time.Time, home, away string) ([]*domain.Fixture, error)
}

// SourceStore provides access to sources storage.
type SourceStore interface {
	// Ensure returns the source with the given name, creating it if missing.
	Ensure(ctx context.Context, name string) (*domain.Source, error)

	// GetByName retrieves a source. Returns ErrNotFound if not exists.
	GetByName(ctx context.Context, name string) (*domain.Source, error)
}

// SourceLeagueMatchStore provides access to source_league_matches storage.
type SourceLeagueMatchStore interface {
	// InsertIgnore records a match unless (league_id, source_id) exists.
	// Returns true if a row was inserted.
	InsertIgnore(ctx context.Context, m *domain.SourceLeagueMatch) (bool, error)

	// GetBySourceLeague retrieves the match for a source's raw league id.
	// Returns ErrNotFound if the league is not onboarded for the source.
	GetBySourceLeague(ctx context.Context, sourceID int64, sourceLeagueID string) (*domain.SourceLeagueMatch, error)
}

// SourceMatchStore provides access to source_matches storage.
type SourceMatchStore interface {
	// InsertIgnore records a match unless (fixture_id, source_id) exists.
	// Returns true if a row was inserted.
	InsertIgnore(ctx context.Context, m *domain.SourceMatch) (bool, error)

	// GetBySourceFixture retrieves the match for a source's raw fixture id.
	// Returns ErrNotFound if the source fixture is unmatched.
	GetBySourceFixture(ctx context.Context, sourceID int64, sourceFixtureID string) (*domain.SourceMatch, error)

	// ListByFixture retrieves all matches of a canonical fixture, ordered by source_id ASC.
	ListByFixture(ctx context.Context, fixtureID int64) ([]*domain.SourceMatch, error)
}

// MarketCatalogStore provides read access to the groups and markets catalog.
type MarketCatalogStore interface {
	// InsertGroup adds a group. Returns ErrDuplicateKey if id exists.
	InsertGroup(ctx context.Context, g *domain.MarketGroup) error

	// InsertOutcome adds an outcome. Returns ErrDuplicateKey if id exists.
	InsertOutcome(ctx context.Context, o *domain.MarketOutcome) error

	// ListGroups retrieves all groups, ordered by id ASC.
	ListGroups(ctx context.Context) ([]*domain.MarketGroup, error)

	// ListOutcomes retrieves all outcomes, ordered by id ASC.
	ListOutcomes(ctx context.Context) ([]*domain.MarketOutcome, error)
}

// AliasStore provides read access to name_aliases storage.
type AliasStore interface {
	// Insert adds an alias. Returns ErrDuplicateKey if (scope, context, source_variant) exists.
	Insert(ctx context.Context, a *domain.NameAlias) error

	// ListAll retrieves every alias, ordered by scope, context, source_variant.
	ListAll(ctx context.Context) ([]*domain.NameAlias, error)
}

// SourceOddsStore provides access to fixture_odds storage.
type SourceOddsStore interface {
	// Upsert writes a row keyed by (group_id, market_id, fixture_id,
	// external_source_fixture_id, source_id). On conflict only coefficient is overwritten.
	Upsert(ctx context.Context, o *domain.SourceOdds) error

	// GetByKey retrieves one row. Returns ErrNotFound if not exists.
	GetByKey(ctx context.Context, groupID, marketID, fixtureID int64, externalSourceFixtureID string, sourceID int64) (*domain.SourceOdds, error)

	// ListAll retrieves every row (full scan), ordered by fixture_id, group_id,
	// market_id, source_id, external_source_fixture_id.
	ListAll(ctx context.Context) ([]*domain.SourceOdds, error)
}

// BookmakerStore provides access to bookmakers licensing reference data.
type BookmakerStore interface {
	// Insert adds a bookmaker licence row. Sets b.ID on success.
	Insert(ctx context.Context, b *domain.Bookmaker) error

	// ListLicenses joins bookmakers with sources by name and returns every
	// (country, source, bookmaker) triple, ordered by country, source, bookmaker.
	ListLicenses(ctx context.Context) ([]domain.License, error)
}

// BestOddsStore provides access to odds (best odds) storage.
type BestOddsStore interface {
	// UpsertBatch writes all rows atomically. For an existing key the stored
	// coefficient becomes previous_coefficient before being replaced, resolved
	// against the existing row inside the write itself. Returns the rows as written.
	UpsertBatch(ctx context.Context, rows []*domain.BestOdds) ([]*domain.BestOdds, error)

	// GetByKey retrieves one row. Returns ErrNotFound if not exists.
	GetByKey(ctx context.Context, fixtureID, marketID, groupID int64, countryCode string) (*domain.BestOdds, error)

	// ListByCountry retrieves all rows of a country, ordered by fixture_id, group_id, market_id.
	ListByCountry(ctx context.Context, countryCode string) ([]*domain.BestOdds, error)
}
