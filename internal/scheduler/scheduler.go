package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"portfolio-advisor/internal/logger"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler runs a job on a cron spec with a seconds field. A run that is still going when the
// next tick fires causes that tick to be skipped.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
	name string
	job  Job
}

func New(ctx context.Context, name string, job Job) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ctx:  ctx,
		name: name,
		job:  job,
	}
}

// Register adds the job under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return fmt.Errorf("register %s task: %w", s.name, err)
	}
	return nil
}

// Next returns the next activation time, or the zero time when nothing is registered.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	if !entries[0].Next.IsZero() {
		return entries[0].Next
	}
	return entries[0].Schedule.Next(time.Now())
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info(s.ctx, "Scheduler started", "task", s.name, "next_run", s.Next())
}

// Stop stops new runs and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info(s.ctx, "Scheduler stopped", "task", s.name)
}

// RunNow executes the job immediately on the caller's goroutine.
func (s *Scheduler) RunNow() {
	s.run()
}

func (s *Scheduler) run() {
	if s.ctx.Err() != nil {
		return
	}
	op := logger.StartOperation(s.ctx, "scheduled."+s.name)
	if err := s.job(op.Context()); err != nil {
		op.EndWithError(err)
		return
	}
	op.End()
}
