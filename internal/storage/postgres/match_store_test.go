package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

func TestSourceMatchStore_InsertIgnore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	s := seedReference(t, ctx, pool)
	store := NewSourceMatchStore(pool)

	m := &domain.SourceMatch{FixtureID: s.fixture.ID, SourceID: s.source.ID, SourceFixtureID: "ev-1"}

	inserted, err := store.InsertIgnore(ctx, m)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Repeated attempt is a silent no-op.
	inserted, err = store.InsertIgnore(ctx, m)
	require.NoError(t, err)
	assert.False(t, inserted)

	list, err := store.ListByFixture(ctx, s.fixture.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := store.GetBySourceFixture(ctx, s.source.ID, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, s.fixture.ID, got.FixtureID)

	_, err = store.GetBySourceFixture(ctx, s.source.ID, "ev-unknown")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.InsertIgnore(ctx, &domain.SourceMatch{FixtureID: 999999, SourceID: s.source.ID, SourceFixtureID: "x"})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestSourceLeagueMatchStore_InsertIgnore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	s := seedReference(t, ctx, pool)
	store := NewSourceLeagueMatchStore(pool)

	m := &domain.SourceLeagueMatch{LeagueID: s.league.ExternalID, SourceID: s.source.ID, SourceLeagueID: "ua-pl"}

	inserted, err := store.InsertIgnore(ctx, m)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = store.InsertIgnore(ctx, m)
	require.NoError(t, err)
	assert.False(t, inserted)

	got, err := store.GetBySourceLeague(ctx, s.source.ID, "ua-pl")
	require.NoError(t, err)
	assert.Equal(t, s.league.ExternalID, got.LeagueID)

	_, err = store.GetBySourceLeague(ctx, s.source.ID, "other")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
