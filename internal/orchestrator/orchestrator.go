// Package orchestrator runs the sync jobs.
// It coordinates: adapters → matching → ingestion → aggregation → change events
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"odds-aggregator/internal/adapter"
	"odds-aggregator/internal/aggregation"
	"odds-aggregator/internal/catalog"
	"odds-aggregator/internal/domain"
	"odds-aggregator/internal/ingestion"
	"odds-aggregator/internal/matching"
	"odds-aggregator/internal/observability"
	"odds-aggregator/internal/resolve"
	"odds-aggregator/internal/storage"
)

// Job names.
const (
	JobSyncFixtures = "sync_fixtures"
	JobSyncOdds     = "sync_odds"
)

// DefaultParallelism bounds concurrent adapter runs.
const DefaultParallelism = 4

// Publisher emits change events for rows written by one country's aggregation.
type Publisher interface {
	PublishChanges(ctx context.Context, countryCode string, rows []*domain.BestOdds) (int, error)
}

// Options for creating Orchestrator.
type Options struct {
	Adapters []adapter.Adapter

	// Required stores
	Countries     storage.CountryStore
	Leagues       storage.LeagueStore
	Fixtures      storage.FixtureStore
	Sources       storage.SourceStore
	LeagueMatches storage.SourceLeagueMatchStore
	SourceMatches storage.SourceMatchStore
	Markets       storage.MarketCatalogStore
	Aliases       storage.AliasStore
	SourceOdds    storage.SourceOddsStore
	Bookmakers    storage.BookmakerStore
	BestOdds      storage.BestOddsStore

	// Publisher is optional; nil disables change events.
	Publisher Publisher

	// Parallelism defaults to DefaultParallelism.
	Parallelism int

	// Now defaults to time.Now.
	Now func() time.Time

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Orchestrator coordinates the sync jobs over all adapters.
// Flow per job: adapters (concurrent, isolated) → aggregation (odds only)
type Orchestrator struct {
	opts           Options
	fixtureMatcher *matching.FixtureMatcher
	leagueMatcher  *matching.LeagueMatcher
	ingestor       *ingestion.Ingestor
	aggregator     *aggregation.Aggregator
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Parallelism < 1 {
		opts.Parallelism = DefaultParallelism
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	matchOpts := matching.Options{
		LeagueMatches: opts.LeagueMatches,
		SourceMatches: opts.SourceMatches,
		Fixtures:      opts.Fixtures,
		Universe: &resolve.StoreUniverse{
			Countries: opts.Countries,
			Leagues:   opts.Leagues,
			Fixtures:  opts.Fixtures,
			Now:       opts.Now,
		},
		Now:    opts.Now,
		Logger: opts.Logger.Named("matching"),
	}

	return &Orchestrator{
		opts:           opts,
		fixtureMatcher: matching.NewFixtureMatcher(matchOpts),
		leagueMatcher:  matching.NewLeagueMatcher(matchOpts),
		ingestor: ingestion.New(ingestion.Options{
			SourceOdds:    opts.SourceOdds,
			SourceMatches: opts.SourceMatches,
			Logger:        opts.Logger.Named("ingestion"),
		}),
		aggregator: aggregation.New(aggregation.Options{
			Countries:  opts.Countries,
			Bookmakers: opts.Bookmakers,
			SourceOdds: opts.SourceOdds,
			BestOdds:   opts.BestOdds,
			Logger:     opts.Logger.Named("aggregation"),
		}),
	}
}

// AdapterResult contains the outcome of one adapter run.
type AdapterResult struct {
	Source string

	LeaguesFetched   int
	LeaguesOnboarded int
	LeaguesMatched   int

	FixturesFetched int
	FixturesMatched int
	Unmatched       map[matching.Reason]int

	OddsFetched  int
	OddsIngested int
	OddsDropped  map[string]int

	Err error
}

// RunResult contains results from one job run.
type RunResult struct {
	RunID    string
	Job      string
	Started  time.Time
	Duration time.Duration

	Adapters    []AdapterResult
	Aggregation *aggregation.Result
	Published   int

	Errors []string
}

// Status classifies the run: failure when every adapter failed,
// partial when anything else failed, success otherwise.
func (r *RunResult) Status() string {
	failed := 0
	for _, a := range r.Adapters {
		if a.Err != nil {
			failed++
		}
	}
	switch {
	case len(r.Adapters) > 0 && failed == len(r.Adapters):
		return observability.StatusFailure
	case len(r.Errors) > 0:
		return observability.StatusPartial
	default:
		return observability.StatusSuccess
	}
}

// SyncFixtures onboards every adapter's leagues and maps its fixtures.
func (o *Orchestrator) SyncFixtures(ctx context.Context) (*RunResult, error) {
	return o.run(ctx, JobSyncFixtures, o.syncFixtures, nil)
}

// SyncOdds ingests every adapter's odds, then aggregates best odds per
// country and publishes the changes. Aggregation starts only after all
// adapters have finished.
func (o *Orchestrator) SyncOdds(ctx context.Context) (*RunResult, error) {
	return o.run(ctx, JobSyncOdds, o.syncOdds, o.aggregate)
}

type adapterFunc func(ctx context.Context, sc catalog.SourceContext, a adapter.Adapter, res *AdapterResult, log *zap.Logger) error

type afterFunc func(ctx context.Context, result *RunResult, log *zap.Logger) error

// run executes one job. Phases:
//  1. Load catalog
//  2. Run each adapter with bounded parallelism, isolating failures
//  3. Optional post-processing over all sources
func (o *Orchestrator) run(ctx context.Context, job string, each adapterFunc, after afterFunc) (*RunResult, error) {
	result := &RunResult{
		RunID:   uuid.NewString(),
		Job:     job,
		Started: o.opts.Now(),
	}
	log := o.opts.Logger.With(zap.String("job", job), zap.String("run_id", result.RunID))
	start := time.Now()
	defer func() {
		result.Duration = time.Since(start)
	}()

	// Phase 1: Catalog is shared read-only by every adapter run
	cat, err := catalog.Load(ctx, o.opts.Aliases, o.opts.Markets)
	if err != nil {
		observability.RecordJobRun(job, observability.StatusFailure, time.Since(start))
		return nil, fmt.Errorf("phase 1 (load catalog) failed: %w", err)
	}

	// Phase 2: Adapters
	log.Info("running adapters", zap.Int("adapters", len(o.opts.Adapters)))
	result.Adapters = make([]AdapterResult, len(o.opts.Adapters))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Parallelism)
	for i, a := range o.opts.Adapters {
		res := &result.Adapters[i]
		res.Source = a.Name()
		g.Go(func() error {
			alog := log.With(zap.String("source", a.Name()))
			if err := o.runAdapter(gctx, cat, a, res, alog, each); err != nil {
				res.Err = err
				observability.RecordAdapterFailure(a.Name(), job)
				alog.Error("adapter run failed", zap.Error(err))
			}
			// Adapter failures never cancel the others.
			return nil
		})
	}
	_ = g.Wait()

	for _, a := range result.Adapters {
		if a.Err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("adapter %s: %v", a.Source, a.Err))
		}
	}

	// Phase 3: Post-processing
	if after != nil {
		if err := ctx.Err(); err != nil {
			observability.RecordJobRun(job, observability.StatusFailure, time.Since(start))
			return result, err
		}
		if err := after(ctx, result, log); err != nil {
			observability.RecordJobRun(job, observability.StatusFailure, time.Since(start))
			return result, err
		}
	}

	status := result.Status()
	observability.RecordJobRun(job, status, time.Since(start))
	log.Info("job completed",
		zap.String("status", status),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

func (o *Orchestrator) runAdapter(ctx context.Context, cat *catalog.Catalog, a adapter.Adapter, res *AdapterResult, log *zap.Logger, each adapterFunc) error {
	source, err := o.opts.Sources.Ensure(ctx, a.Name())
	if err != nil {
		return fmt.Errorf("ensure source: %w", err)
	}
	sc := catalog.SourceContext{Source: *source, Catalog: cat}
	return each(ctx, sc, a, res, log)
}

func (o *Orchestrator) syncFixtures(ctx context.Context, sc catalog.SourceContext, a adapter.Adapter, res *AdapterResult, log *zap.Logger) error {
	leagues, err := a.FetchLeagues(ctx)
	if err != nil {
		return fmt.Errorf("fetch leagues: %w", err)
	}
	res.LeaguesFetched = len(leagues)

	for _, raw := range leagues {
		lm, err := o.leagueMatcher.MatchLeague(ctx, sc, raw)
		if err != nil {
			if reason := matching.ReasonOf(err); reason != "" {
				observability.RecordLeagueUnmatched(sc.Source.Name, string(reason))
				continue
			}
			return fmt.Errorf("match league %s: %w", raw.SourceLeagueID, err)
		}
		res.LeaguesMatched++
		if lm.Created {
			res.LeaguesOnboarded++
			observability.RecordLeagueOnboarded(sc.Source.Name)
		}
	}

	fixtures, err := a.FetchFixtures(ctx)
	if err != nil {
		return fmt.Errorf("fetch fixtures: %w", err)
	}
	res.FixturesFetched = len(fixtures)
	res.Unmatched = make(map[matching.Reason]int)
	ingestion.SortRawFixtures(fixtures)

	for _, raw := range fixtures {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := o.fixtureMatcher.Match(ctx, sc, raw); err != nil {
			if reason := matching.ReasonOf(err); reason != "" {
				res.Unmatched[reason]++
				observability.RecordFixtureUnmatched(sc.Source.Name, string(reason))
				continue
			}
			return fmt.Errorf("match fixture %s: %w", raw.SourceFixtureID, err)
		}
		res.FixturesMatched++
		observability.RecordFixtureMatched(sc.Source.Name)
	}

	log.Info("fixtures synced",
		zap.Int("leagues", res.LeaguesFetched),
		zap.Int("leagues_onboarded", res.LeaguesOnboarded),
		zap.Int("fixtures", res.FixturesFetched),
		zap.Int("fixtures_matched", res.FixturesMatched))
	return nil
}

func (o *Orchestrator) syncOdds(ctx context.Context, sc catalog.SourceContext, a adapter.Adapter, res *AdapterResult, log *zap.Logger) error {
	odds, err := a.FetchOdds(ctx)
	if err != nil {
		return fmt.Errorf("fetch odds: %w", err)
	}
	res.OddsFetched = len(odds)

	batch, err := o.ingestor.IngestBatch(ctx, sc, odds)
	res.OddsIngested = batch.Ingested
	res.OddsDropped = batch.Dropped
	observability.RecordOddsIngested(sc.Source.Name, batch.Ingested)
	for reason, n := range batch.Dropped {
		observability.RecordOddsDropped(sc.Source.Name, reason, n)
	}
	if err != nil {
		return fmt.Errorf("ingest odds: %w", err)
	}

	log.Info("odds synced",
		zap.Int("fetched", res.OddsFetched),
		zap.Int("ingested", res.OddsIngested),
		zap.Any("dropped", res.OddsDropped))
	return nil
}

// aggregate runs best-odds aggregation and publishes changed rows per country.
func (o *Orchestrator) aggregate(ctx context.Context, result *RunResult, log *zap.Logger) error {
	agg, err := o.aggregator.Aggregate(ctx)
	if err != nil {
		return fmt.Errorf("phase 3 (aggregation) failed: %w", err)
	}
	result.Aggregation = agg
	result.Errors = append(result.Errors, agg.Errors...)

	for i := range agg.Countries {
		cr := &agg.Countries[i]
		if cr.Err != nil {
			observability.RecordCountryFailure(cr.CountryCode)
			continue
		}
		changed := cr.Changed()
		observability.RecordBestOdds(cr.CountryCode, len(cr.Written), len(changed))

		if o.opts.Publisher == nil || len(changed) == 0 {
			continue
		}
		n, err := o.opts.Publisher.PublishChanges(ctx, cr.CountryCode, changed)
		observability.RecordChangeEvents(cr.CountryCode, n, err)
		if err != nil {
			log.Error("publish change events failed", zap.String("country", cr.CountryCode), zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("publish %s: %v", cr.CountryCode, err))
			continue
		}
		result.Published += n
	}

	log.Info("best odds aggregated",
		zap.Int("written", agg.Written),
		zap.Int("changed", agg.Changed),
		zap.Int("skipped", agg.Skipped),
		zap.Int("failed", agg.Failed),
		zap.Int("published", result.Published))
	return nil
}
