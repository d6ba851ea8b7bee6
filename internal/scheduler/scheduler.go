package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ScalpDeck/internal/logging"
)

// Job is a periodic process driven by the shared cron.
type Job func(ctx context.Context)

// Scheduler owns the single cron instance that drives every periodic process.
type Scheduler struct {
	Cron *cron.Cron
	Ctx  context.Context

	logger *zap.Logger
}

// NewScheduler creates a Scheduler. A tick that fires while the previous run
// of the same job is still going is skipped, and a panicking job is logged
// instead of taking the process down.
func NewScheduler(ctx context.Context, logger *zap.Logger) *Scheduler {
	cl := logging.CronLogger{Logger: logger.With(zap.String("component", "cron"))}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Ctx:    ctx,
		logger: logger.With(zap.String("component", "scheduler")),
	}
}

// Every registers job to run every period. Runs get a context that outlives
// shutdown so requests already on the wire complete.
func (s *Scheduler) Every(name string, period time.Duration, job Job) (cron.EntryID, error) {
	if period < time.Second {
		return 0, fmt.Errorf("register %s: period %s is below one second", name, period)
	}
	id, err := s.Cron.AddFunc(fmt.Sprintf("@every %s", period), func() {
		job(context.WithoutCancel(s.Ctx))
	})
	if err != nil {
		return 0, fmt.Errorf("register %s: %w", name, err)
	}
	s.logger.Info("job registered", zap.String("job", name), zap.Duration("every", period))
	return id, nil
}

// Periodic describes one cron-driven process.
type Periodic struct {
	Name   string
	Period time.Duration
	Job    Job
}

// RegisterAll registers the market, status and liveness loops.
func (s *Scheduler) RegisterAll(jobs ...Periodic) error {
	for _, j := range jobs {
		if _, err := s.Every(j.Name, j.Period, j.Job); err != nil {
			return err
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started", zap.Int("entries", len(s.Cron.Entries())))
}

// Stop stops future ticks and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
