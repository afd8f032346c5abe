package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

func TestReferenceStores(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	s := seedReference(t, ctx, pool)

	t.Run("countries", func(t *testing.T) {
		store := NewCountryStore(pool)
		require.NoError(t, store.Insert(ctx, &domain.Country{Code: "XX", Name: "Inactive", IsActive: false}))

		active, err := store.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, active, 2)
		assert.Equal(t, "DE", active[0].Code)
		assert.Equal(t, "UA", active[1].Code)

		err = store.Insert(ctx, &domain.Country{Code: "UA", Name: "dup"})
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)

		_, err = store.GetByCode(ctx, "FR")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("leagues", func(t *testing.T) {
		store := NewLeagueStore(pool)

		got, err := store.GetByExternalID(ctx, 333)
		require.NoError(t, err)
		assert.Equal(t, s.league.ID, got.ID)
		assert.Equal(t, "UA", got.CountryCode)

		err = store.Insert(ctx, &domain.League{ExternalID: 999, Name: "x", CountryCode: "ZZ", IsActive: true})
		assert.ErrorIs(t, err, storage.ErrInvalidInput, "unknown country must be rejected")

		list, err := store.ListActiveByCountry(ctx, "UA")
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("fixtures ILIKE", func(t *testing.T) {
		store := NewFixtureStore(pool)
		today := time.Now().UTC().Truncate(24 * time.Hour)

		got, err := store.FindByTeams(ctx, 333, today, "shakhtar", "DYNAMO")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, s.fixture.ID, got[0].ID)
		assert.True(t, s.fixture.Date.Equal(got[0].Date))

		got, err = store.FindByTeams(ctx, 333, today, "shakhtar%", "dynamo")
		require.NoError(t, err)
		assert.Empty(t, got, "wildcards in names must be literal")

		got, err = store.FindByTeams(ctx, 333, today.Add(72*time.Hour), "shakhtar", "dynamo")
		require.NoError(t, err)
		assert.Empty(t, got)

		upcoming, err := store.ListUpcomingByLeague(ctx, 333, today)
		require.NoError(t, err)
		assert.Len(t, upcoming, 1)
	})

	t.Run("sources ensure", func(t *testing.T) {
		store := NewSourceStore(pool)

		again, err := store.Ensure(ctx, "betking")
		require.NoError(t, err)
		assert.Equal(t, s.source.ID, again.ID)

		got, err := store.GetByName(ctx, "betking")
		require.NoError(t, err)
		assert.Equal(t, s.source.ID, got.ID)

		_, err = store.GetByName(ctx, "unknown")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("catalog", func(t *testing.T) {
		store := NewMarketCatalogStore(pool)

		err := store.InsertGroup(ctx, &domain.MarketGroup{ID: 1, Name: "other"})
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)

		groups, err := store.ListGroups(ctx)
		require.NoError(t, err)
		require.Len(t, groups, 1)

		outcomes, err := store.ListOutcomes(ctx)
		require.NoError(t, err)
		require.Len(t, outcomes, 1)
		assert.Equal(t, int64(1), outcomes[0].GroupID)
	})

	t.Run("aliases", func(t *testing.T) {
		store := NewAliasStore(pool)

		require.NoError(t, store.Insert(ctx, &domain.NameAlias{
			Scope: domain.AliasScopeTeam, Context: "333", CanonicalName: "Dynamo Kyiv", SourceVariant: "dinamo kiev",
		}))
		require.NoError(t, store.Insert(ctx, &domain.NameAlias{
			Scope: domain.AliasScopeCountry, CanonicalName: "Ukraine", SourceVariant: "ukraina",
		}))

		err := store.Insert(ctx, &domain.NameAlias{
			Scope: domain.AliasScopeTeam, Context: "333", CanonicalName: "x", SourceVariant: "dinamo kiev",
		})
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)

		all, err := store.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, domain.AliasScopeCountry, all[0].Scope)
		assert.Equal(t, domain.AliasScopeTeam, all[1].Scope)
	})
}
