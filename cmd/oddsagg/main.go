package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"odds-aggregator/internal/adapter"
	"odds-aggregator/internal/adapter/feed"
	"odds-aggregator/internal/config"
	"odds-aggregator/internal/logging"
	"odds-aggregator/internal/observability"
	"odds-aggregator/internal/opsserver"
	"odds-aggregator/internal/orchestrator"
	"odds-aggregator/internal/publisher"
	"odds-aggregator/internal/scheduler"
	"odds-aggregator/internal/storage/migrations"
	pgstore "odds-aggregator/internal/storage/postgres"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to YAML config file (environment overrides apply)")
	once := flag.String("once", "", "Run a single job and exit: fixtures, odds or all")
	migrate := flag.Bool("migrate", false, "Apply database migrations before starting")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel to signal main goroutine completion
	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, initiating graceful shutdown", zap.String("signal", sig.String()))
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Warn("received second signal, forcing immediate shutdown", zap.String("signal", sig.String()))
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Warn("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err = run(ctx, logger, cfg, *once, *migrate)

	// Signal completion to shutdown handler
	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("exiting with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

func run(ctx context.Context, logger *zap.Logger, cfg *config.Config, once string, migrate bool) error {
	pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations applied")
	}

	adapters, err := buildAdapters(cfg.Sources, logger)
	if err != nil {
		return err
	}

	var pub orchestrator.Publisher
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		pub = publisher.NewStreamPublisher(client, cfg.Redis.StreamPrefix, logger.Named("publisher"))
	}

	orch := orchestrator.New(orchestrator.Options{
		Adapters:      adapters,
		Countries:     pgstore.NewCountryStore(pool),
		Leagues:       pgstore.NewLeagueStore(pool),
		Fixtures:      pgstore.NewFixtureStore(pool),
		Sources:       pgstore.NewSourceStore(pool),
		LeagueMatches: pgstore.NewSourceLeagueMatchStore(pool),
		SourceMatches: pgstore.NewSourceMatchStore(pool),
		Markets:       pgstore.NewMarketCatalogStore(pool),
		Aliases:       pgstore.NewAliasStore(pool),
		SourceOdds:    pgstore.NewSourceOddsStore(pool),
		Bookmakers:    pgstore.NewBookmakerStore(pool),
		BestOdds:      pgstore.NewBestOddsStore(pool),
		Publisher:     pub,
		Parallelism:   cfg.Sync.Parallelism,
		Logger:        logger.Named("orchestrator"),
	})

	if once != "" {
		return runOnce(ctx, logger, orch, once)
	}
	return runScheduled(ctx, logger, cfg, orch)
}

func buildAdapters(sources []config.SourceConfig, logger *zap.Logger) ([]adapter.Adapter, error) {
	adapters := make([]adapter.Adapter, 0, len(sources))
	for _, s := range sources {
		opts := []feed.Option{
			feed.WithTimeout(s.Timeout),
			feed.WithProxies(s.Proxies...),
			feed.WithLogger(logger.Named("feed").With(zap.String("source", s.Name))),
		}
		if s.Retries != nil {
			opts = append(opts, feed.WithMaxRetries(*s.Retries))
		}
		a, err := feed.New(s.Name, s.BaseURL, opts...)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

// runOnce runs the requested jobs once. Only a job error or a run in which
// every adapter failed is reported as failure.
func runOnce(ctx context.Context, logger *zap.Logger, orch *orchestrator.Orchestrator, which string) error {
	var jobs []func(context.Context) (*orchestrator.RunResult, error)
	switch which {
	case "fixtures":
		jobs = append(jobs, orch.SyncFixtures)
	case "odds":
		jobs = append(jobs, orch.SyncOdds)
	case "all":
		jobs = append(jobs, orch.SyncFixtures, orch.SyncOdds)
	default:
		return fmt.Errorf("unknown -once value %q (want fixtures, odds or all)", which)
	}

	for _, job := range jobs {
		result, err := job(ctx)
		if err != nil {
			return err
		}
		status := result.Status()
		logger.Info("run finished",
			zap.String("job", result.Job),
			zap.String("run_id", result.RunID),
			zap.String("status", status),
			zap.Strings("errors", result.Errors))
		if status == observability.StatusFailure {
			return fmt.Errorf("%s: all adapters failed", result.Job)
		}
	}
	return nil
}

func runScheduled(ctx context.Context, logger *zap.Logger, cfg *config.Config, orch *orchestrator.Orchestrator) error {
	health := opsserver.NewHealth()

	if cfg.Ops.MetricsAddr != config.MetricsAddrDisabled {
		ops := opsserver.New(opsserver.Options{
			Addr:    cfg.Ops.MetricsAddr,
			Metrics: observability.Handler(),
			Health:  health,
			Logger:  logger.Named("ops"),
		})
		ops.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = ops.Shutdown(shutdownCtx)
		}()
	}

	sched := scheduler.New(ctx, scheduler.Options{
		Report: health.Report,
		Logger: logger.Named("scheduler"),
	})
	if _, err := sched.Add(orchestrator.JobSyncFixtures, cfg.Schedule.SyncFixtures, asJob(orch.SyncFixtures)); err != nil {
		return err
	}
	if _, err := sched.Add(orchestrator.JobSyncOdds, cfg.Schedule.SyncOdds, asJob(orch.SyncOdds)); err != nil {
		return err
	}

	sched.Start()
	logger.Info("scheduler started",
		zap.String("sync_fixtures", cfg.Schedule.SyncFixtures),
		zap.String("sync_odds", cfg.Schedule.SyncOdds),
		zap.Int("sources", len(cfg.Sources)))

	<-ctx.Done()
	logger.Info("stopping scheduler, waiting for running jobs")
	<-sched.Stop().Done()
	return ctx.Err()
}

func asJob(fn func(context.Context) (*orchestrator.RunResult, error)) scheduler.JobFunc {
	return func(ctx context.Context) (string, error) {
		result, err := fn(ctx)
		if err != nil {
			return observability.StatusFailure, err
		}
		if status := result.Status(); status == observability.StatusFailure {
			return status, errors.New("all adapters failed")
		}
		return result.Status(), nil
	}
}
