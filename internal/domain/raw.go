package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawLeague is the normalized league record every adapter must produce.
type RawLeague struct {
	SourceLeagueID    string
	SourceLeagueName  string
	SourceCountryName string
}

// RawFixture is the normalized fixture record every adapter must produce.
type RawFixture struct {
	SourceFixtureID string
	HomeTeamName    string
	AwayTeamName    string
	KickoffUTC      time.Time
	SourceLeagueID  string
}

// RawOdds is one normalized price. GroupName and OutcomeCode must already
// use the canonical catalog vocabulary.
type RawOdds struct {
	SourceFixtureID string
	GroupName       string
	OutcomeCode     string
	Coefficient     decimal.Decimal
}
