// Package worker runs the background side of the back-office: the expense
// limit consumer and the scheduled income digest.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"thot/internal/log"
)

// Job is a scheduled unit of work.
type Job interface {
	Send(ctx context.Context) error
}

// Scheduler runs a job on a standard five-field cron spec. Runs never
// overlap: a tick that fires while the previous run is active is skipped.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	job    Job
	logger *log.Logger
	ctx    context.Context

	mu      sync.Mutex
	running bool
}

// NewScheduler validates spec and registers job. Runs use UTC.
func NewScheduler(spec string, job Job, logger *log.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentScheduler)

	cl := cronLogger{logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		spec:   spec,
		job:    job,
		logger: logger,
		ctx:    context.Background(),
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("register digest job %q: %w", spec, err)
	}
	return s, nil
}

// Start begins scheduling. Jobs run with ctx. Returns an error if already
// running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.ctx = ctx
	s.cron.Start()

	s.logger.InfoContext(ctx, "Scheduler started",
		log.FieldOperation, log.OpStartup,
		"spec", s.spec,
		"next_run", s.Next().Format(time.RFC3339))
	return nil
}

// Stop stops scheduling and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		s.logger.InfoContext(ctx, "Scheduler stopped", log.FieldOperation, log.OpShutdown)
		return nil
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Scheduler stop timed out")
		return ctx.Err()
	}
}

// Next returns the next scheduled run, zero when not started.
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

	start := time.Now()
	if err := s.job.Send(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Scheduled digest failed",
			log.FieldError, err.Error(),
			log.FieldDuration, time.Since(start).Milliseconds())
		return
	}
	s.logger.InfoContext(ctx, "Scheduled digest completed",
		log.FieldDuration, time.Since(start).Milliseconds())
}

// cronLogger adapts the component logger to cron.Logger.
type cronLogger struct {
	logger *log.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, log.FieldError, err.Error())...)
}
