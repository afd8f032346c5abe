package ingestion

import (
	"sort"
	"strings"

	"odds-aggregator/internal/domain"
)

// SortRawOdds orders odds by (source_fixture_id, group, outcome) ASC.
// The sort is stable: for repeated keys the later feed entry is written last and wins.
func SortRawOdds(odds []domain.RawOdds) {
	sort.SliceStable(odds, func(i, j int) bool {
		return compareRawOdds(odds[i], odds[j]) < 0
	})
}

// SortRawFixtures orders fixtures by (kickoff ASC, source_fixture_id ASC).
func SortRawFixtures(fixtures []domain.RawFixture) {
	sort.SliceStable(fixtures, func(i, j int) bool {
		return compareRawFixtures(fixtures[i], fixtures[j]) < 0
	})
}

// compareRawOdds returns negative, zero or positive like strings.Compare.
// Order: (source_fixture_id ASC, group_name ASC, outcome_code ASC)
func compareRawOdds(a, b domain.RawOdds) int {
	if c := strings.Compare(a.SourceFixtureID, b.SourceFixtureID); c != 0 {
		return c
	}
	if c := strings.Compare(a.GroupName, b.GroupName); c != 0 {
		return c
	}
	return strings.Compare(a.OutcomeCode, b.OutcomeCode)
}

// compareRawFixtures orders by (kickoff ASC, source_fixture_id ASC).
func compareRawFixtures(a, b domain.RawFixture) int {
	if !a.KickoffUTC.Equal(b.KickoffUTC) {
		if a.KickoffUTC.Before(b.KickoffUTC) {
			return -1
		}
		return 1
	}
	return strings.Compare(a.SourceFixtureID, b.SourceFixtureID)
}
