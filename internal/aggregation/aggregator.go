// Package aggregation computes per-country best odds from per-source odds.
package aggregation

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/storage"
)

// Options contains configuration for creating an Aggregator.
type Options struct {
	Countries  storage.CountryStore
	Bookmakers storage.BookmakerStore
	SourceOdds storage.SourceOddsStore
	BestOdds   storage.BestOddsStore

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Aggregator picks, per active country, the highest coefficient among the
// bookmakers licensed there for every (fixture, market, group).
type Aggregator struct {
	opts Options
}

// New creates a new Aggregator.
func New(opts Options) *Aggregator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Aggregator{opts: opts}
}

// CountryResult is the outcome for one country.
type CountryResult struct {
	CountryCode string
	// Written holds the rows as stored, with their previous coefficient.
	Written []*domain.BestOdds
	// SkipReason is set when the country had nothing to aggregate.
	SkipReason string
	Err        error
}

// Changed returns the written rows whose coefficient differs from the previous one.
func (r *CountryResult) Changed() []*domain.BestOdds {
	var changed []*domain.BestOdds
	for _, b := range r.Written {
		if b.Changed() {
			changed = append(changed, b)
		}
	}
	return changed
}

// Result contains aggregation results.
type Result struct {
	Countries []CountryResult
	Written   int
	Changed   int
	Skipped   int
	Failed    int
	Errors    []string
}

// Skip reasons.
const (
	SkipNoLicences = "no_licensed_bookmakers"
	SkipNoOdds     = "no_odds"
)

type bestKey struct {
	fixtureID int64
	marketID  int64
	groupID   int64
}

// Aggregate scans all source odds once and upserts best odds per active
// country, one transaction per country. A failing country is logged and
// counted; only failures to load the shared inputs are returned.
func (a *Aggregator) Aggregate(ctx context.Context) (*Result, error) {
	licences, err := a.opts.Bookmakers.ListLicenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list licences: %w", err)
	}
	countries, err := a.opts.Countries.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	odds, err := a.opts.SourceOdds.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source odds: %w", err)
	}

	// country -> source -> bookmaker
	licensed := make(map[string]map[int64]int64)
	for _, l := range licences {
		bySource, ok := licensed[l.CountryCode]
		if !ok {
			bySource = make(map[int64]int64)
			licensed[l.CountryCode] = bySource
		}
		if existing, ok := bySource[l.SourceID]; !ok || l.BookmakerID < existing {
			bySource[l.SourceID] = l.BookmakerID
		}
	}

	result := &Result{}
	for _, c := range countries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		cr := a.aggregateCountry(ctx, c.Code, licensed[c.Code], odds)
		result.Countries = append(result.Countries, cr)

		switch {
		case cr.Err != nil:
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("country %s: %v", c.Code, cr.Err))
		case cr.SkipReason != "":
			result.Skipped++
		default:
			result.Written += len(cr.Written)
			result.Changed += len(cr.Changed())
		}
	}
	return result, nil
}

func (a *Aggregator) aggregateCountry(ctx context.Context, country string, bookmakerBySource map[int64]int64, odds []*domain.SourceOdds) CountryResult {
	log := a.opts.Logger.With(zap.String("country", country))
	cr := CountryResult{CountryCode: country}

	if len(bookmakerBySource) == 0 {
		log.Info("skip country: no licensed bookmakers")
		cr.SkipReason = SkipNoLicences
		return cr
	}

	rows := Best(country, bookmakerBySource, odds)
	if len(rows) == 0 {
		log.Info("skip country: no odds from licensed bookmakers")
		cr.SkipReason = SkipNoOdds
		return cr
	}

	written, err := a.opts.BestOdds.UpsertBatch(ctx, rows)
	if err != nil {
		log.Error("aggregate country failed", zap.Error(err))
		cr.Err = err
		return cr
	}
	cr.Written = written

	log.Info("country aggregated",
		zap.Int("written", len(written)),
		zap.Int("changed", len(cr.Changed())))
	return cr
}

// Best selects the maximum coefficient per (fixture, market, group) among
// odds whose source maps to a bookmaker. Equal maxima keep the lower
// bookmaker id. Rows are ordered by fixture, group, market.
func Best(country string, bookmakerBySource map[int64]int64, odds []*domain.SourceOdds) []*domain.BestOdds {
	best := make(map[bestKey]*domain.BestOdds)
	for _, o := range odds {
		bookmakerID, ok := bookmakerBySource[o.SourceID]
		if !ok {
			continue
		}

		key := bestKey{fixtureID: o.FixtureID, marketID: o.MarketID, groupID: o.GroupID}
		current, exists := best[key]
		if exists {
			cmp := o.Coefficient.Cmp(current.Coefficient)
			if cmp < 0 || (cmp == 0 && bookmakerID >= current.BookmakerID) {
				continue
			}
		}
		best[key] = &domain.BestOdds{
			FixtureID:   o.FixtureID,
			MarketID:    o.MarketID,
			GroupID:     o.GroupID,
			CountryCode: country,
			BookmakerID: bookmakerID,
			Coefficient: o.Coefficient,
		}
	}

	rows := make([]*domain.BestOdds, 0, len(best))
	for _, b := range best {
		rows = append(rows, b)
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.FixtureID != b.FixtureID {
			return a.FixtureID < b.FixtureID
		}
		if a.GroupID != b.GroupID {
			return a.GroupID < b.GroupID
		}
		return a.MarketID < b.MarketID
	})
	return rows
}
