// internal/app/system/tasks/runner.go
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job is a task run once at start and then every Interval.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner schedules registered jobs until stopped.
type Runner struct {
	logger *zap.Logger
	jobs   []Job

	group  *errgroup.Group
	cancel context.CancelFunc

	mu     sync.Mutex
	active map[string]struct{}
}

// New returns an empty Runner.
func New(logger *zap.Logger) *Runner {
	return &Runner{logger: logger, active: map[string]struct{}{}}
}

// Register adds a job. Jobs with a non-positive interval are ignored.
func (r *Runner) Register(job Job) {
	if job.Interval <= 0 {
		r.logger.Info("background job disabled", zap.String("job", job.Name))
		return
	}
	r.jobs = append(r.jobs, job)
}

// Jobs lists the registered job names.
func (r *Runner) Jobs() []string {
	names := make([]string, len(r.jobs))
	for i, j := range r.jobs {
		names[i] = j.Name
	}
	return names
}

// Start launches every job in its own goroutine.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.group, ctx = errgroup.WithContext(ctx)

	for _, job := range r.jobs {
		job := job
		r.group.Go(func() error {
			r.loop(ctx, job)
			return nil
		})
	}
	r.logger.Info("background task runner started", zap.Strings("jobs", r.Jobs()))
}

// Stop cancels the jobs and waits for them until ctx is done.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cancel == nil {
		return nil
	}
	r.cancel()

	done := make(chan struct{})
	go func() {
		_ = r.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("background task runner stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("background task runner shutdown timed out",
			zap.Strings("jobs_still_running", r.Running()))
		return ctx.Err()
	}
}

func (r *Runner) loop(ctx context.Context, job Job) {
	r.execute(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.execute(ctx, job)
		}
	}
}

func (r *Runner) execute(ctx context.Context, job Job) {
	r.mark(job.Name, true)
	defer r.mark(job.Name, false)

	start := time.Now()
	err := r.safeRun(ctx, job)
	switch {
	case err == nil:
		r.logger.Debug("job completed", zap.String("job", job.Name), zap.Duration("duration", time.Since(start)))
	case ctx.Err() != nil:
		r.logger.Debug("job cancelled during shutdown", zap.String("job", job.Name))
	default:
		r.logger.Error("job failed",
			zap.String("job", job.Name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
	}
}

func (r *Runner) safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return job.Run(ctx)
}

func (r *Runner) mark(name string, on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if on {
		r.active[name] = struct{}{}
	} else {
		delete(r.active, name)
	}
}

// Running lists the jobs executing right now.
func (r *Runner) Running() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.active))
	for n := range r.active {
		names = append(names, n)
	}
	return names
}

// ErrUnknownJob is returned by RunOnce for a name that was never registered.
var ErrUnknownJob = errors.New("unknown job")

// RunOnce runs the named job immediately.
func (r *Runner) RunOnce(ctx context.Context, name string) error {
	for _, job := range r.jobs {
		if job.Name == name {
			return r.safeRun(ctx, job)
		}
	}
	return fmt.Errorf("%w %q", ErrUnknownJob, name)
}
