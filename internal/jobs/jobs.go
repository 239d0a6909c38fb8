// Package jobs runs periodic maintenance tasks on cron schedules.
package jobs

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a named task and its cron schedule. Schedules use six fields with
// seconds first, or descriptors such as "@every 5m".
type Job struct {
	Name     string
	Schedule string
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs jobs until its context is cancelled.
type Scheduler struct {
	lg   *zap.Logger
	cron *cron.Cron
	jobs []Job
}

// New creates a scheduler. Jobs with an empty schedule are disabled.
func New(lg *zap.Logger, jobs ...Job) *Scheduler {
	cl := cronLogger{lg: lg.Named("cron")}
	return &Scheduler{
		lg: lg,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		jobs: jobs,
	}
}

// Run registers the jobs, starts the cron loop and blocks until ctx is done.
// It waits for running jobs before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	for _, j := range s.jobs {
		if j.Schedule == "" {
			s.lg.Debug("Job disabled", zap.String("job", j.Name))
			continue
		}
		if _, err := s.cron.AddFunc(j.Schedule, s.wrap(ctx, j)); err != nil {
			return errors.Wrapf(err, "schedule job %s", j.Name)
		}
		s.lg.Info("Job scheduled", zap.String("job", j.Name), zap.String("schedule", j.Schedule))
	}

	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.lg.Info("Jobs stopped")
	return nil
}

func (s *Scheduler) wrap(ctx context.Context, j Job) func() {
	lg := s.lg.With(zap.String("job", j.Name))
	return func() {
		if ctx.Err() != nil {
			return
		}
		runCtx := ctx
		if j.Timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, j.Timeout)
			defer cancel()
		}

		start := time.Now()
		if err := j.Run(runCtx); err != nil {
			lg.Error("Job failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
			return
		}
		lg.Debug("Job finished", zap.Duration("duration", time.Since(start)))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	lg *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.lg.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.lg.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
