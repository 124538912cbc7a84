// Package scheduler runs the site's periodic background jobs on cron specs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"clr-site/internal/core"

	"github.com/robfig/cron/v3"
)

const defaultJobTimeout = 15 * time.Minute

// Job is a named unit of periodic work
type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Scheduler runs jobs in UTC. A job never overlaps with itself.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	cron   *cron.Cron
	logger *core.Logger
	mu     sync.Mutex
	jobs   []string
}

// New creates a scheduler whose jobs are cancelled when ctx is done or Stop is called
func New(ctx context.Context, logger *core.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		cron:   cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger,
	}
}

// Add registers a job
func (s *Scheduler) Add(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %s has no run function", job.Name)
	}
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}

	if _, err := s.cron.AddFunc(job.Spec, func() { s.run(job, timeout) }); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", job.Spec, job.Name, err)
	}

	s.mu.Lock()
	s.jobs = append(s.jobs, job.Name)
	s.mu.Unlock()
	return nil
}

func (s *Scheduler) run(job Job, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if ctx.Err() != nil {
		s.logger.Info("Scheduler context is done, skipping job", "job", job.Name)
		return
	}

	started := time.Now()
	if err := job.Run(ctx); err != nil {
		s.logger.Error("Scheduled job failed", "job", job.Name, "error", err, "duration", time.Since(started))
		return
	}
	s.logger.Info("Scheduled job finished", "job", job.Name, "duration", time.Since(started))
}

// Start begins running registered jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	s.logger.Info("Starting scheduler", "jobs", s.jobs)
	s.mu.Unlock()
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}
