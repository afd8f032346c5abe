package domain

// Source is a bookmaker data provider. Created lazily on first ingestion.
// Corresponds to sources table in PostgreSQL.
type Source struct {
	ID   int64  // BIGSERIAL primary key
	Name string // UNIQUE
}

// SourceLeagueMatch links a source's raw league id to a canonical league.
// Unique on (LeagueID, SourceID); write-once.
type SourceLeagueMatch struct {
	LeagueID       int64  // League.ExternalID
	SourceID       int64  // FK to sources
	SourceLeagueID string // raw league id as reported by the source
}

// SourceMatch links a source's raw fixture id to a canonical fixture.
// Unique on (FixtureID, SourceID); write-once, conflicts are ignored.
type SourceMatch struct {
	FixtureID       int64  // FK to fixtures
	SourceID        int64  // FK to sources
	SourceFixtureID string // raw fixture id as reported by the source
}
