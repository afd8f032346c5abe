package feed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"odds-aggregator/internal/adapter"
	"odds-aggregator/internal/domain"
)

// Compile-time interface check.
var _ adapter.Adapter = (*Client)(nil)

type leagueDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

type fixtureDTO struct {
	ID       string    `json:"id"`
	Home     string    `json:"home"`
	Away     string    `json:"away"`
	Kickoff  time.Time `json:"kickoff"`
	LeagueID string    `json:"league_id"`
}

type oddsDTO struct {
	FixtureID   string          `json:"fixture_id"`
	Group       string          `json:"group"`
	Outcome     string          `json:"outcome"`
	Coefficient decimal.Decimal `json:"coefficient"`
}

// FetchLeagues implements adapter.Adapter.
func (c *Client) FetchLeagues(ctx context.Context) ([]domain.RawLeague, error) {
	var dtos []leagueDTO
	if err := c.get(ctx, "/leagues", &dtos); err != nil {
		return nil, err
	}
	leagues := make([]domain.RawLeague, 0, len(dtos))
	for _, d := range dtos {
		if d.ID == "" {
			continue
		}
		leagues = append(leagues, domain.RawLeague{
			SourceLeagueID:    d.ID,
			SourceLeagueName:  d.Name,
			SourceCountryName: d.Country,
		})
	}
	return leagues, nil
}

// FetchFixtures implements adapter.Adapter.
func (c *Client) FetchFixtures(ctx context.Context) ([]domain.RawFixture, error) {
	var dtos []fixtureDTO
	if err := c.get(ctx, "/fixtures", &dtos); err != nil {
		return nil, err
	}
	fixtures := make([]domain.RawFixture, 0, len(dtos))
	for _, d := range dtos {
		if d.ID == "" {
			continue
		}
		fixtures = append(fixtures, domain.RawFixture{
			SourceFixtureID: d.ID,
			HomeTeamName:    d.Home,
			AwayTeamName:    d.Away,
			KickoffUTC:      d.Kickoff.UTC(),
			SourceLeagueID:  d.LeagueID,
		})
	}
	return fixtures, nil
}

// FetchOdds implements adapter.Adapter.
func (c *Client) FetchOdds(ctx context.Context) ([]domain.RawOdds, error) {
	var dtos []oddsDTO
	if err := c.get(ctx, "/odds", &dtos); err != nil {
		return nil, err
	}
	odds := make([]domain.RawOdds, 0, len(dtos))
	for _, d := range dtos {
		if d.FixtureID == "" {
			continue
		}
		odds = append(odds, domain.RawOdds{
			SourceFixtureID: d.FixtureID,
			GroupName:       d.Group,
			OutcomeCode:     d.Outcome,
			Coefficient:     d.Coefficient,
		})
	}
	return odds, nil
}
