package postgres

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

func TestSourceOddsStore_Upsert(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	s := seedReference(t, ctx, pool)
	store := NewSourceOddsStore(pool)

	row := &domain.SourceOdds{
		GroupID: s.group.ID, MarketID: s.outcome.ID, FixtureID: s.fixture.ID,
		ExternalSourceFixtureID: "ev-1", SourceID: s.source.ID,
		Coefficient: decimal.RequireFromString("1.85"),
	}
	require.NoError(t, store.Upsert(ctx, row))

	row.Coefficient = decimal.RequireFromString("1.95")
	require.NoError(t, store.Upsert(ctx, row))

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Coefficient.Equal(decimal.RequireFromString("1.95")), "got %s", all[0].Coefficient)

	got, err := store.GetByKey(ctx, s.group.ID, s.outcome.ID, s.fixture.ID, "ev-1", s.source.ID)
	require.NoError(t, err)
	assert.True(t, got.Coefficient.Equal(decimal.RequireFromString("1.95")))

	row.Coefficient = decimal.RequireFromString("0.95")
	assert.ErrorIs(t, store.Upsert(ctx, row), storage.ErrInvalidInput, "coefficient <= 1 violates check")
}

func TestBestOddsStore_UpsertBatch(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	s := seedReference(t, ctx, pool)

	bookmakers := NewBookmakerStore(pool)
	bkUA := &domain.Bookmaker{Name: "betking", CountryCode: "UA"}
	bkDE := &domain.Bookmaker{Name: "betking", CountryCode: "DE"}
	require.NoError(t, bookmakers.Insert(ctx, bkUA))
	require.NoError(t, bookmakers.Insert(ctx, bkDE))

	licences, err := bookmakers.ListLicenses(ctx)
	require.NoError(t, err)
	require.Len(t, licences, 2)
	assert.Equal(t, "DE", licences[0].CountryCode)
	assert.Equal(t, s.source.ID, licences[0].SourceID)

	store := NewBestOddsStore(pool)
	first := &domain.BestOdds{
		FixtureID: s.fixture.ID, MarketID: s.outcome.ID, GroupID: s.group.ID,
		CountryCode: "UA", BookmakerID: bkUA.ID, Coefficient: decimal.RequireFromString("1.80"),
	}

	written, err := store.UpsertBatch(ctx, []*domain.BestOdds{first})
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.False(t, written[0].PreviousCoefficient.Valid, "previous is NULL on first insert")

	second := *first
	second.Coefficient = decimal.RequireFromString("2.10")
	written, err = store.UpsertBatch(ctx, []*domain.BestOdds{&second})
	require.NoError(t, err)
	require.Len(t, written, 1)
	require.True(t, written[0].PreviousCoefficient.Valid)
	assert.True(t, written[0].PreviousCoefficient.Decimal.Equal(decimal.RequireFromString("1.80")))
	assert.True(t, written[0].Coefficient.Equal(decimal.RequireFromString("2.10")))
	assert.True(t, written[0].Changed())

	got, err := store.GetByKey(ctx, s.fixture.ID, s.outcome.ID, s.group.ID, "UA")
	require.NoError(t, err)
	assert.True(t, got.Coefficient.Equal(decimal.RequireFromString("2.10")))

	// A failing row rolls back the whole batch.
	de := *first
	de.CountryCode = "DE"
	de.BookmakerID = bkDE.ID
	bad := *first
	bad.BookmakerID = 999999
	_, err = store.UpsertBatch(ctx, []*domain.BestOdds{&de, &bad})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	deRows, err := store.ListByCountry(ctx, "DE")
	require.NoError(t, err)
	assert.Empty(t, deRows)

	uaRows, err := store.ListByCountry(ctx, "UA")
	require.NoError(t, err)
	require.Len(t, uaRows, 1)
	assert.True(t, uaRows[0].Coefficient.Equal(decimal.RequireFromString("2.10")))
}
