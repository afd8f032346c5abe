package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

func TestCountryStore_ListActive(t *testing.T) {
	store := NewCountryStore()
	ctx := context.Background()

	for _, c := range []*domain.Country{
		{Code: "UA", Name: "Ukraine", IsActive: true},
		{Code: "DE", Name: "Germany", IsActive: true},
		{Code: "XX", Name: "Nowhere", IsActive: false},
	} {
		if err := store.Insert(ctx, c); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 active countries, got %d", len(got))
	}
	if got[0].Code != "DE" || got[1].Code != "UA" {
		t.Errorf("unexpected order: %s, %s", got[0].Code, got[1].Code)
	}

	if err := store.Insert(ctx, &domain.Country{Code: "UA"}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
	if _, err := store.GetByCode(ctx, "FR"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLeagueStore_ListActiveByCountry(t *testing.T) {
	store := NewLeagueStore()
	ctx := context.Background()

	leagues := []*domain.League{
		{ExternalID: 39, Name: "Premier League", CountryCode: "GB", IsActive: true},
		{ExternalID: 40, Name: "Championship", CountryCode: "GB", IsActive: false},
		{ExternalID: 78, Name: "Bundesliga", CountryCode: "DE", IsActive: true},
	}
	for _, l := range leagues {
		if err := store.Insert(ctx, l); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		if l.ID == 0 {
			t.Errorf("expected ID to be assigned")
		}
	}

	got, err := store.ListActiveByCountry(ctx, "GB")
	if err != nil {
		t.Fatalf("ListActiveByCountry failed: %v", err)
	}
	if len(got) != 1 || got[0].ExternalID != 39 {
		t.Errorf("expected only league 39, got %+v", got)
	}

	l, err := store.GetByExternalID(ctx, 78)
	if err != nil {
		t.Fatalf("GetByExternalID failed: %v", err)
	}
	if l.Name != "Bundesliga" {
		t.Errorf("Name mismatch: got %s", l.Name)
	}
}

func TestFixtureStore_FindByTeams(t *testing.T) {
	store := NewFixtureStore()
	ctx := context.Background()
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	fixtures := []*domain.Fixture{
		{LeagueID: 39, HomeTeamName: "Manchester United", AwayTeamName: "Liverpool", Date: today.Add(20 * time.Hour)},
		{LeagueID: 39, HomeTeamName: "Manchester City", AwayTeamName: "Liverpool", Date: today.Add(44 * time.Hour)},
		{LeagueID: 39, HomeTeamName: "Manchester United", AwayTeamName: "Liverpool", Date: today.Add(-24 * time.Hour)},
		{LeagueID: 78, HomeTeamName: "Manchester United", AwayTeamName: "Liverpool", Date: today.Add(20 * time.Hour)},
	}
	for _, f := range fixtures {
		if err := store.Insert(ctx, f); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.FindByTeams(ctx, 39, today, "manchester", "LIVERPOOL")
	if err != nil {
		t.Fatalf("FindByTeams failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 fixtures, got %d", len(got))
	}
	if got[0].ID != fixtures[0].ID || got[1].ID != fixtures[1].ID {
		t.Errorf("unexpected fixtures or order: %d, %d", got[0].ID, got[1].ID)
	}

	got, err = store.FindByTeams(ctx, 39, today, "United", "Liverpool")
	if err != nil {
		t.Fatalf("FindByTeams failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 fixture, got %d", len(got))
	}

	upcoming, err := store.ListUpcomingByLeague(ctx, 39, today)
	if err != nil {
		t.Fatalf("ListUpcomingByLeague failed: %v", err)
	}
	if len(upcoming) != 2 {
		t.Errorf("expected 2 upcoming fixtures, got %d", len(upcoming))
	}
}

func TestSourceStore_Ensure(t *testing.T) {
	store := NewSourceStore()
	ctx := context.Background()

	a, err := store.Ensure(ctx, "betking")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	b, err := store.Ensure(ctx, "betking")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if a.ID != b.ID {
		t.Errorf("Ensure not idempotent: %d != %d", a.ID, b.ID)
	}

	c, _ := store.Ensure(ctx, "favbet")
	if c.ID == a.ID {
		t.Errorf("expected distinct ids")
	}

	if _, err := store.Ensure(ctx, ""); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMarketCatalogStore_OutcomeRequiresGroup(t *testing.T) {
	store := NewMarketCatalogStore()
	ctx := context.Background()

	if err := store.InsertGroup(ctx, &domain.MarketGroup{ID: 1, Name: "1X2"}); err != nil {
		t.Fatalf("InsertGroup failed: %v", err)
	}
	if err := store.InsertOutcome(ctx, &domain.MarketOutcome{ID: 10, Name: "1", GroupID: 1}); err != nil {
		t.Fatalf("InsertOutcome failed: %v", err)
	}
	if err := store.InsertOutcome(ctx, &domain.MarketOutcome{ID: 11, Name: "X", GroupID: 2}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown group, got %v", err)
	}

	outcomes, _ := store.ListOutcomes(ctx)
	if len(outcomes) != 1 {
		t.Errorf("expected 1 outcome, got %d", len(outcomes))
	}
}

func TestAliasStore_InsertAndList(t *testing.T) {
	store := NewAliasStore()
	ctx := context.Background()

	aliases := []*domain.NameAlias{
		{Scope: domain.AliasScopeTeam, Context: "39", CanonicalName: "Manchester United", SourceVariant: "man utd"},
		{Scope: domain.AliasScopeCountry, CanonicalName: "England", SourceVariant: "anglia"},
		{Scope: domain.AliasScopeTeam, CanonicalName: "Bayern Munich", SourceVariant: "bayern munchen"},
	}
	for _, a := range aliases {
		if err := store.Insert(ctx, a); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	if err := store.Insert(ctx, aliases[0]); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
	if err := store.Insert(ctx, &domain.NameAlias{Scope: "player", CanonicalName: "x", SourceVariant: "y"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	got, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 aliases, got %d", len(got))
	}
	if got[0].Scope != domain.AliasScopeCountry {
		t.Errorf("expected country alias first, got %s", got[0].Scope)
	}
	if got[1].Context != "" || got[2].Context != "39" {
		t.Errorf("expected team aliases ordered by context, got %q, %q", got[1].Context, got[2].Context)
	}
}
