package aggregation

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
	"odds-aggregator/internal/storage/memory"
)

type env struct {
	countries  *memory.CountryStore
	sources    *memory.SourceStore
	bookmakers *memory.BookmakerStore
	odds       *memory.SourceOddsStore
	best       *memory.BestOddsStore
}

func newEnv(t *testing.T, countries ...string) *env {
	t.Helper()
	e := &env{
		countries: memory.NewCountryStore(),
		sources:   memory.NewSourceStore(),
		odds:      memory.NewSourceOddsStore(),
		best:      memory.NewBestOddsStore(),
	}
	e.bookmakers = memory.NewBookmakerStore(e.sources)
	for _, c := range countries {
		require.NoError(t, e.countries.Insert(context.Background(), &domain.Country{Code: c, Name: c, IsActive: true}))
	}
	return e
}

func (e *env) source(t *testing.T, name string, licensedIn ...string) (sourceID int64, bookmakerIDs map[string]int64) {
	t.Helper()
	ctx := context.Background()

	src, err := e.sources.Ensure(ctx, name)
	require.NoError(t, err)

	bookmakerIDs = make(map[string]int64)
	for _, c := range licensedIn {
		b := &domain.Bookmaker{Name: name, CountryCode: c}
		require.NoError(t, e.bookmakers.Insert(ctx, b))
		bookmakerIDs[c] = b.ID
	}
	return src.ID, bookmakerIDs
}

func (e *env) put(t *testing.T, sourceID, fixtureID, marketID int64, coef string) {
	t.Helper()
	require.NoError(t, e.odds.Upsert(context.Background(), &domain.SourceOdds{
		GroupID: 1, MarketID: marketID, FixtureID: fixtureID,
		ExternalSourceFixtureID: "ext", SourceID: sourceID,
		Coefficient: decimal.RequireFromString(coef),
	}))
}

func (e *env) aggregator() *Aggregator {
	return New(Options{Countries: e.countries, Bookmakers: e.bookmakers, SourceOdds: e.odds, BestOdds: e.best})
}

func TestAggregate_HighestAcrossSourcesWins(t *testing.T) {
	e := newEnv(t, "UA")
	x, _ := e.source(t, "X", "UA")
	y, yBookmakers := e.source(t, "Y", "UA")

	e.put(t, x, 10, 1, "1.85")
	e.put(t, y, 10, 1, "1.95")

	res, err := e.aggregator().Aggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Written)

	got, err := e.best.GetByKey(context.Background(), 10, 1, 1, "UA")
	require.NoError(t, err)
	assert.True(t, got.Coefficient.Equal(decimal.RequireFromString("1.95")))
	assert.Equal(t, yBookmakers["UA"], got.BookmakerID)
}

func TestAggregate_UnlicensedSourceIgnored(t *testing.T) {
	e := newEnv(t, "UA", "DE")
	x, xBookmakers := e.source(t, "X", "UA")
	y, _ := e.source(t, "Y", "DE")

	e.put(t, x, 10, 1, "1.85")
	e.put(t, y, 10, 1, "1.95")

	_, err := e.aggregator().Aggregate(context.Background())
	require.NoError(t, err)

	ua, err := e.best.GetByKey(context.Background(), 10, 1, 1, "UA")
	require.NoError(t, err)
	assert.True(t, ua.Coefficient.Equal(decimal.RequireFromString("1.85")))
	assert.Equal(t, xBookmakers["UA"], ua.BookmakerID)

	de, err := e.best.GetByKey(context.Background(), 10, 1, 1, "DE")
	require.NoError(t, err)
	assert.True(t, de.Coefficient.Equal(decimal.RequireFromString("1.95")))
}

func TestAggregate_ChangeTracking(t *testing.T) {
	e := newEnv(t, "UA")
	x, _ := e.source(t, "X", "UA")
	ctx := context.Background()
	agg := e.aggregator()

	e.put(t, x, 10, 1, "1.50")
	res, err := agg.Aggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Changed, "first insert counts as a change")

	e.put(t, x, 10, 1, "1.75")
	res, err = agg.Aggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Changed)

	got, err := e.best.GetByKey(ctx, 10, 1, 1, "UA")
	require.NoError(t, err)
	assert.True(t, got.Coefficient.Equal(decimal.RequireFromString("1.75")))
	require.True(t, got.PreviousCoefficient.Valid)
	assert.True(t, got.PreviousCoefficient.Decimal.Equal(decimal.RequireFromString("1.50")))

	res, err = agg.Aggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Changed, "unchanged input yields no change")
}

func TestAggregate_Skips(t *testing.T) {
	e := newEnv(t, "UA", "DE", "FR")
	x, _ := e.source(t, "X", "UA")
	e.source(t, "Y", "DE")
	e.put(t, x, 10, 1, "1.85")

	res, err := e.aggregator().Aggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Skipped)

	reasons := map[string]string{}
	for _, c := range res.Countries {
		reasons[c.CountryCode] = c.SkipReason
	}
	assert.Equal(t, SkipNoOdds, reasons["DE"])
	assert.Equal(t, SkipNoLicences, reasons["FR"])
	assert.Empty(t, reasons["UA"])
}

type failingBestOdds struct {
	storage.BestOddsStore
	failCountry string
}

func (f failingBestOdds) UpsertBatch(ctx context.Context, rows []*domain.BestOdds) ([]*domain.BestOdds, error) {
	if len(rows) > 0 && rows[0].CountryCode == f.failCountry {
		return nil, errors.New("deadlock detected")
	}
	return f.BestOddsStore.UpsertBatch(ctx, rows)
}

func TestAggregate_CountryFailureIsolated(t *testing.T) {
	e := newEnv(t, "DE", "UA")
	x, _ := e.source(t, "X", "DE", "UA")
	e.put(t, x, 10, 1, "1.85")

	agg := New(Options{
		Countries:  e.countries,
		Bookmakers: e.bookmakers,
		SourceOdds: e.odds,
		BestOdds:   failingBestOdds{BestOddsStore: e.best, failCountry: "DE"},
	})

	res, err := agg.Aggregate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Written)

	_, err = e.best.GetByKey(context.Background(), 10, 1, 1, "UA")
	assert.NoError(t, err, "other countries continue after a failure")
}

func TestBest_TieKeepsLowerBookmaker(t *testing.T) {
	odds := []*domain.SourceOdds{
		{GroupID: 1, MarketID: 1, FixtureID: 1, SourceID: 2, Coefficient: decimal.RequireFromString("2.00")},
		{GroupID: 1, MarketID: 1, FixtureID: 1, SourceID: 1, Coefficient: decimal.RequireFromString("2.0")},
	}
	bySource := map[int64]int64{1: 20, 2: 10}

	rows := Best("UA", bySource, odds)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(10), rows[0].BookmakerID)

	// Same result regardless of scan order.
	odds[0], odds[1] = odds[1], odds[0]
	rows = Best("UA", bySource, odds)
	assert.Equal(t, int64(10), rows[0].BookmakerID)
}

func TestBest_MaximizationInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	bySource := map[int64]int64{1: 101, 2: 102, 3: 103}

	var odds []*domain.SourceOdds
	for i := 0; i < 500; i++ {
		odds = append(odds, &domain.SourceOdds{
			GroupID:     1,
			MarketID:    int64(rng.Intn(3) + 1),
			FixtureID:   int64(rng.Intn(10) + 1),
			SourceID:    int64(rng.Intn(4) + 1), // source 4 is unlicensed
			Coefficient: decimal.NewFromInt(int64(rng.Intn(900) + 101)).Shift(-2),
		})
	}

	rows := Best("UA", bySource, odds)
	for _, b := range rows {
		for _, o := range odds {
			if o.FixtureID != b.FixtureID || o.MarketID != b.MarketID {
				continue
			}
			if _, licensed := bySource[o.SourceID]; !licensed {
				continue
			}
			assert.False(t, o.Coefficient.GreaterThan(b.Coefficient),
				"fixture %d market %d: %s > best %s", b.FixtureID, b.MarketID, o.Coefficient, b.Coefficient)
		}
	}
}
