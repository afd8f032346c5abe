package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// FixtureStore implements storage.FixtureStore using PostgreSQL.
type FixtureStore struct {
	pool *Pool
}

// NewFixtureStore creates a new FixtureStore.
func NewFixtureStore(pool *Pool) *FixtureStore {
	return &FixtureStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FixtureStore = (*FixtureStore)(nil)

const fixtureColumns = `id, league_id, home_team_name, away_team_name, date`

// Insert adds a fixture. Sets f.ID on success.
func (s *FixtureStore) Insert(ctx context.Context, f *domain.Fixture) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO fixtures (league_id, home_team_name, away_team_name, date)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, f.LeagueID, f.HomeTeamName, f.AwayTeamName, f.Date).Scan(&f.ID)
	if err != nil {
		if isInvalidInputError(err) {
			return storage.ErrInvalidInput
		}
		return fmt.Errorf("insert fixture: %w", err)
	}
	return nil
}

// ListUpcomingByLeague retrieves fixtures of a league with date >= from.
func (s *FixtureStore) ListUpcomingByLeague(ctx context.Context, leagueID int64, from time.Time) ([]*domain.Fixture, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+fixtureColumns+`
		FROM fixtures
		WHERE league_id = $1 AND date >= $2
		ORDER BY date ASC, id ASC
	`, leagueID, from)
	if err != nil {
		return nil, fmt.Errorf("list upcoming fixtures: %w", err)
	}
	defer rows.Close()

	return scanFixtures(rows)
}

// FindByTeams retrieves upcoming fixtures of a league with
// home ILIKE %home% and away ILIKE %away%.
func (s *FixtureStore) FindByTeams(ctx context.Context, leagueID int64, from time.Time, home, away string) ([]*domain.Fixture, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+fixtureColumns+`
		FROM fixtures
		WHERE league_id = $1
		  AND date >= $2
		  AND home_team_name ILIKE $3
		  AND away_team_name ILIKE $4
		ORDER BY date ASC, id ASC
	`, leagueID, from, containsPattern(home), containsPattern(away))
	if err != nil {
		return nil, fmt.Errorf("find fixtures by teams: %w", err)
	}
	defer rows.Close()

	return scanFixtures(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s as a literal substring.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func scanFixture(row pgx.Row) (*domain.Fixture, error) {
	var f domain.Fixture
	if err := row.Scan(&f.ID, &f.LeagueID, &f.HomeTeamName, &f.AwayTeamName, &f.Date); err != nil {
		return nil, err
	}
	f.Date = f.Date.UTC()
	return &f, nil
}

func scanFixtures(rows pgx.Rows) ([]*domain.Fixture, error) {
	var result []*domain.Fixture
	for rows.Next() {
		f, err := scanFixture(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fixture: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}
