// Package resolve maps a bookmaker's spelling of a country, league or team
// onto a canonical name.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"odds-aggregator/internal/catalog"
	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/names"
)

// ErrUnresolved is returned when no canonical name matches.
var ErrUnresolved = errors.New("name unresolved")

// Method records which step produced a Resolution.
type Method string

const (
	MethodExact    Method = "exact"
	MethodAlias    Method = "alias"
	MethodContains Method = "contains"
)

// Resolution is a resolved canonical name.
type Resolution struct {
	Entry
	Method Method
}

// Resolver resolves raw names in three steps, first hit wins:
// exact match, alias (context then global), and for teams only folded
// containment ranked by edit distance.
type Resolver struct {
	universe Universe
	catalog  *catalog.Catalog
}

// New creates a Resolver.
func New(universe Universe, c *catalog.Catalog) *Resolver {
	return &Resolver{universe: universe, catalog: c}
}

// Resolve maps raw onto a canonical entry of scope within context.
// Returns ErrUnresolved when nothing matches.
func (r *Resolver) Resolve(ctx context.Context, scope domain.AliasScope, raw, scopeContext string) (*Resolution, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty %s name", ErrUnresolved, scope)
	}

	entries, err := r.universe.Entries(ctx, scope, scopeContext)
	if err != nil {
		return nil, fmt.Errorf("load %s names: %w", scope, err)
	}

	for _, e := range entries {
		if e.Name == raw {
			return &Resolution{Entry: e, Method: MethodExact}, nil
		}
	}

	if canonical, ok := r.catalog.Alias(scope, scopeContext, raw); ok {
		if e, found := findByName(entries, canonical); found {
			return &Resolution{Entry: e, Method: MethodAlias}, nil
		}
		// Aliased team without upcoming fixtures still resolves; the
		// fixture lookup reports the miss.
		if scope == domain.AliasScopeTeam {
			return &Resolution{Entry: Entry{Name: canonical, Key: canonical}, Method: MethodAlias}, nil
		}
	}

	if scope == domain.AliasScopeTeam {
		if e, ok := bestContaining(entries, raw); ok {
			return &Resolution{Entry: e, Method: MethodContains}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s %q (context %q)", ErrUnresolved, scope, raw, scopeContext)
}

func findByName(entries []Entry, name string) (Entry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// bestContaining returns the entry whose folded name contains the folded raw
// name with the smallest edit distance, ties broken by name.
func bestContaining(entries []Entry, raw string) (Entry, bool) {
	needle := names.FoldTeam(raw)
	if needle == "" {
		return Entry{}, false
	}

	type scored struct {
		entry    Entry
		distance int
	}
	var hits []scored
	for _, e := range entries {
		folded := names.FoldTeam(e.Name)
		if strings.Contains(folded, needle) {
			hits = append(hits, scored{entry: e, distance: levenshtein.ComputeDistance(folded, needle)})
		}
	}
	if len(hits) == 0 {
		return Entry{}, false
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return hits[i].entry.Name < hits[j].entry.Name
	})
	return hits[0].entry, true
}
