package domain

import "time"

// Fixture is the canonical identity of a single real-world match.
// Corresponds to fixtures table in PostgreSQL.
type Fixture struct {
	ID           int64     // BIGSERIAL primary key
	LeagueID     int64     // League.ExternalID
	HomeTeamName string    // canonical home team name
	AwayTeamName string    // canonical away team name
	Date         time.Time // kickoff, UTC
}
