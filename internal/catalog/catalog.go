// Package catalog holds the read-only lookup tables used while mapping one
// source: name aliases and the group/market catalog. A Catalog is loaded
// once per run and shared read-only by every call of that run.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/names"
	"odds-aggregator/internal/storage"
)

var (
	// ErrUnknownMarket is returned when a (group, outcome) pair is not in the catalog.
	ErrUnknownMarket = errors.New("unknown market")
	// ErrDuplicateMarket is returned by New when two outcomes share a lookup key.
	ErrDuplicateMarket = errors.New("duplicate market")
)

// Market identifies one outcome of one group in the catalog.
type Market struct {
	GroupID  int64
	MarketID int64
}

type aliasKey struct {
	scope   domain.AliasScope
	context string
	variant string // folded
}

type marketKey struct {
	group   string
	outcome string
}

// marketCode normalizes a group name or outcome code for lookup. Signs, dots
// and spacing inside the code are significant ("-1.5" vs "+1.5", "2.5" vs "25").
func marketCode(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Catalog answers alias and market lookups from memory.
type Catalog struct {
	aliases map[aliasKey]string
	markets map[marketKey]Market
}

// New builds a Catalog from already loaded rows.
// Outcomes whose group is unknown are skipped. Two outcomes that map to the
// same (group, outcome) key fail with ErrDuplicateMarket.
func New(aliases []*domain.NameAlias, groups []*domain.MarketGroup, outcomes []*domain.MarketOutcome) (*Catalog, error) {
	c := &Catalog{
		aliases: make(map[aliasKey]string, len(aliases)),
		markets: make(map[marketKey]Market, len(outcomes)),
	}

	for _, a := range aliases {
		c.aliases[aliasKey{scope: a.Scope, context: a.Context, variant: names.Fold(a.SourceVariant)}] = a.CanonicalName
	}

	groupNames := make(map[int64]string, len(groups))
	for _, g := range groups {
		groupNames[g.ID] = marketCode(g.Name)
	}
	for _, o := range outcomes {
		group, ok := groupNames[o.GroupID]
		if !ok {
			continue
		}
		key := marketKey{group: group, outcome: marketCode(o.Name)}
		if prev, dup := c.markets[key]; dup {
			return nil, fmt.Errorf("%w: group=%q outcome=%q markets %d and %d",
				ErrDuplicateMarket, group, key.outcome, prev.MarketID, o.ID)
		}
		c.markets[key] = Market{GroupID: o.GroupID, MarketID: o.ID}
	}

	return c, nil
}

// Load reads aliases and the market catalog from storage.
func Load(ctx context.Context, aliases storage.AliasStore, markets storage.MarketCatalogStore) (*Catalog, error) {
	aliasRows, err := aliases.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	groups, err := markets.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	outcomes, err := markets.ListOutcomes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load markets: %w", err)
	}
	return New(aliasRows, groups, outcomes)
}

// Alias returns the canonical name for variant within scope and context.
// A context-specific alias takes precedence over a global one (empty context).
func (c *Catalog) Alias(scope domain.AliasScope, context, variant string) (string, bool) {
	folded := names.Fold(variant)
	if folded == "" {
		return "", false
	}
	if context != "" {
		if canonical, ok := c.aliases[aliasKey{scope: scope, context: context, variant: folded}]; ok {
			return canonical, true
		}
	}
	canonical, ok := c.aliases[aliasKey{scope: scope, variant: folded}]
	return canonical, ok
}

// Market maps a source's group name and outcome code onto catalog ids.
// Both are compared case-insensitively after trimming. Returns ErrUnknownMarket if absent.
func (c *Catalog) Market(groupName, outcomeCode string) (Market, error) {
	m, ok := c.markets[marketKey{group: marketCode(groupName), outcome: marketCode(outcomeCode)}]
	if !ok {
		return Market{}, fmt.Errorf("%w: group=%q outcome=%q", ErrUnknownMarket, groupName, outcomeCode)
	}
	return m, nil
}
