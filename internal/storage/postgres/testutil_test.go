package postgres

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"odds-aggregator/internal/domain"
)

// setupTestDB creates a PostgreSQL container for testing and applies migrations.
// Returns a cleanup function that must be called after tests complete.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	runMigrations(t, ctx, pool)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// runMigrations applies the SQL files under internal/storage/migrations/postgres.
// The files are read from disk because the migrations package imports this one.
func runMigrations(t *testing.T, ctx context.Context, pool *Pool) {
	t.Helper()

	projectRoot := findProjectRoot(t)
	migrationsDir := filepath.Join(projectRoot, "internal", "storage", "migrations", "postgres")

	entries, err := os.ReadDir(migrationsDir)
	require.NoError(t, err, "failed to read migrations directory")

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".sql" {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		sql, err := os.ReadFile(filepath.Join(migrationsDir, file))
		require.NoError(t, err, "failed to read migration file: %s", file)

		_, err = pool.Exec(ctx, string(sql))
		require.NoError(t, err, "failed to execute migration: %s", file)

		t.Logf("Applied migration: %s", file)
	}
}

// findProjectRoot walks up from current directory to find go.mod.
func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "failed to get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// seed holds the reference rows most store tests need.
type seed struct {
	league  *domain.League
	fixture *domain.Fixture
	source  *domain.Source
	group   *domain.MarketGroup
	outcome *domain.MarketOutcome
}

// seedReference inserts one country, league, fixture, source and market.
func seedReference(t *testing.T, ctx context.Context, pool *Pool) seed {
	t.Helper()

	require.NoError(t, NewCountryStore(pool).Insert(ctx, &domain.Country{Code: "UA", Name: "Ukraine", IsActive: true}))
	require.NoError(t, NewCountryStore(pool).Insert(ctx, &domain.Country{Code: "DE", Name: "Germany", IsActive: true}))

	league := &domain.League{ExternalID: 333, Name: "Premier League", CountryCode: "UA", IsActive: true}
	require.NoError(t, NewLeagueStore(pool).Insert(ctx, league))

	fixture := &domain.Fixture{
		LeagueID:     league.ExternalID,
		HomeTeamName: "Shakhtar Donetsk",
		AwayTeamName: "Dynamo Kyiv",
		Date:         time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second),
	}
	require.NoError(t, NewFixtureStore(pool).Insert(ctx, fixture))

	source, err := NewSourceStore(pool).Ensure(ctx, "betking")
	require.NoError(t, err)

	catalog := NewMarketCatalogStore(pool)
	group := &domain.MarketGroup{ID: 1, Name: "1X2"}
	require.NoError(t, catalog.InsertGroup(ctx, group))
	outcome := &domain.MarketOutcome{ID: 10, Name: "1", GroupID: 1}
	require.NoError(t, catalog.InsertOutcome(ctx, outcome))

	return seed{league: league, fixture: fixture, source: source, group: group, outcome: outcome}
}
