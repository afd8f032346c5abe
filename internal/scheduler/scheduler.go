// Package scheduler runs the periodic sync jobs on cron expressions.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobFunc runs one job and returns its status label.
type JobFunc func(ctx context.Context) (status string, err error)

// ReportFunc receives the outcome of every run.
type ReportFunc func(job, status string, err error, at time.Time)

// Options configures the Scheduler.
type Options struct {
	Location *time.Location // defaults to UTC
	Report   ReportFunc
	Logger   *zap.Logger
}

// Scheduler wraps a cron runner. A job still running when its next tick
// fires is skipped, not queued.
type Scheduler struct {
	ctx    context.Context
	cron   *cron.Cron
	report ReportFunc
	logger *zap.Logger
}

// New creates a scheduler whose jobs run under ctx.
func New(ctx context.Context, opts Options) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	cl := cronLogger{l: opts.Logger.Sugar()}
	return &Scheduler{
		ctx: ctx,
		cron: cron.New(
			cron.WithLocation(opts.Location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		report: opts.Report,
		logger: opts.Logger,
	}
}

// Add registers fn under name on a standard five-field cron spec.
func (s *Scheduler) Add(name, spec string, fn JobFunc) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, func() { s.run(name, fn) })
	if err != nil {
		return 0, fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	s.logger.Info("job scheduled", zap.String("job", name), zap.String("spec", spec))
	return id, nil
}

func (s *Scheduler) run(name string, fn JobFunc) {
	start := time.Now()
	s.logger.Info("job started", zap.String("job", name))

	status, err := fn(s.ctx)
	if err != nil {
		s.logger.Error("job failed",
			zap.String("job", name),
			zap.String("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
	} else {
		s.logger.Info("job finished",
			zap.String("job", name),
			zap.String("status", status),
			zap.Duration("duration", time.Since(start)))
	}
	if s.report != nil {
		s.report(name, status, err, start)
	}
}

// Entry returns the cron entry for id.
func (s *Scheduler) Entry(id cron.EntryID) cron.Entry {
	return s.cron.Entry(id)
}

// Start begins firing jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
