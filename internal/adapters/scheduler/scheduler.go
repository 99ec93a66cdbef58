// Package scheduler triggers a job on a cron schedule inside the serving
// process, for deployments without an external hourly trigger.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled run. A returned error is logged; it never stops the
// schedule.
type Job func(ctx context.Context) error

// Config configures a Scheduler.
type Config struct {
	// Name identifies the job in logs.
	Name string

	// Spec is a standard five-field cron expression, or a descriptor such
	// as "@hourly".
	Spec string

	// Location is the zone Spec is evaluated in. Nil means time.Local.
	Location *time.Location

	// RunOnStart also runs the job once when Start is called.
	RunOnStart bool

	Job    Job
	Logger *slog.Logger
}

// Scheduler runs a Job on a cron schedule. A run that is still going when
// the next one is due causes that next run to be skipped.
type Scheduler struct {
	cron       *cron.Cron
	name       string
	job        Job
	runOnStart bool
	logger     *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc

	// running serialises the start-up run with cron-triggered runs.
	running sync.Mutex
	startup sync.WaitGroup
}

// New parses the schedule and creates a stopped scheduler.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Job == nil {
		return nil, errors.New("scheduler: job is required")
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "scheduler"), slog.String("job", cfg.Name))
	cronLog := cronLogger{logger: logger}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		name:       cfg.Name,
		job:        cfg.Job,
		runOnStart: cfg.RunOnStart,
		logger:     logger,
	}

	if _, err := s.cron.AddFunc(cfg.Spec, s.run); err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", cfg.Spec, err)
	}

	return s, nil
}

// Start begins scheduling. Runs receive a context derived from ctx that is
// cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.mu.Unlock()

	s.cron.Start()

	s.logger.InfoContext(ctx, "scheduler started", slog.Time("next_run", s.Next()))

	if s.runOnStart {
		s.startup.Go(s.run)
	}
}

// Stop halts scheduling, cancels running jobs and waits for them to return
// or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	idle := make(chan struct{})
	go func() {
		<-done.Done()
		s.startup.Wait()
		close(idle)
	}()

	select {
	case <-idle:
		s.logger.InfoContext(ctx, "scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for %s to finish: %w", s.name, ctx.Err())
	}
}

// Next returns the time of the next scheduled run, or the zero time before
// Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}

	return entries[0].Next
}

func (s *Scheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx == nil || ctx.Err() != nil {
		return
	}

	if !s.running.TryLock() {
		s.logger.WarnContext(ctx, "skipping run, previous run still in progress")
		return
	}
	defer s.running.Unlock()

	start := time.Now()

	if err := s.job(ctx); err != nil {
		s.logger.ErrorContext(ctx, "scheduled run failed",
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))

		return
	}

	s.logger.InfoContext(ctx, "scheduled run completed", slog.Duration("duration", time.Since(start)))
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
