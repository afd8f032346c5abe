package domain

import "github.com/shopspring/decimal"

// SourceOdds is one bookmaker price for a canonical fixture outcome.
// The first five fields form the unique key and never change once written;
// only Coefficient is overwritten on re-ingestion.
// Corresponds to fixture_odds table in PostgreSQL.
type SourceOdds struct {
	GroupID                 int64
	MarketID                int64
	FixtureID               int64
	ExternalSourceFixtureID string
	SourceID                int64
	Coefficient             decimal.Decimal // decimal odds, > 1.0
}

// Bookmaker is licensing reference data: a bookmaker operating in a country.
// A bookmaker is linked to the source carrying the same name.
// Corresponds to bookmakers table in PostgreSQL.
type Bookmaker struct {
	ID          int64
	Name        string
	CountryCode string
}

// License is a (country, source, bookmaker) triple derived from bookmakers
// joined with sources by name.
type License struct {
	CountryCode string
	SourceID    int64
	BookmakerID int64
}

// BestOdds is the highest price for a fixture outcome among bookmakers
// licensed in a country. PreviousCoefficient holds the value this row
// replaced on its last rewrite and is null on first insert.
// Corresponds to odds table in PostgreSQL.
type BestOdds struct {
	FixtureID           int64
	MarketID            int64
	GroupID             int64
	CountryCode         string
	BookmakerID         int64
	Coefficient         decimal.Decimal
	PreviousCoefficient decimal.NullDecimal
}

// Changed reports whether the last rewrite moved the coefficient.
// A first insert counts as a change.
func (b *BestOdds) Changed() bool {
	if !b.PreviousCoefficient.Valid {
		return true
	}
	return !b.PreviousCoefficient.Decimal.Equal(b.Coefficient)
}
