// Package scheduler runs the recurring maintenance jobs of the server:
// the cache sweep and the artifact sweep, plus the final sweep on
// shutdown.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one unit of recurring or shutdown work.
type Job func(ctx context.Context)

type task struct {
	name     string
	interval time.Duration
	job      Job
}

// Scheduler owns the background tasks of the process. Each registered task
// ticks on its own interval for the life of the process; a failure inside
// one iteration is isolated and the schedule continues.
type Scheduler struct {
	mu      sync.Mutex
	tasks   []task
	hooks   []Job
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// New creates an empty scheduler.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		stopCh: make(chan struct{}),
		logger: logger,
	}
}

// Repeat registers a recurring task. Must be called before Start.
func (s *Scheduler) Repeat(name string, interval time.Duration, job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task{name: name, interval: interval, job: job})
}

// OnShutdown registers a hook run once during Stop, after all recurring
// iterations have finished.
func (s *Scheduler) OnShutdown(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, job)
}

// Start launches every registered task. Starting an already-running
// scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	tasks := s.tasks
	s.mu.Unlock()

	for _, t := range tasks {
		s.wg.Add(1)
		go s.run(ctx, t)
	}

	s.logger.Info("scheduler started", "tasks", len(tasks))
}

// Stop stops accepting new iterations, waits for in-flight ones to finish,
// then runs the shutdown hooks, best effort.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	hooks := s.hooks
	s.mu.Unlock()

	s.wg.Wait()

	for _, hook := range hooks {
		s.runIsolated(context.Background(), "shutdown-hook", hook)
	}
	s.logger.Info("scheduler stopped")
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// run is the loop of one recurring task: an immediate iteration, then one
// per tick until stop.
func (s *Scheduler) run(ctx context.Context, t task) {
	defer s.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	s.runIsolated(ctx, t.name, t.job)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler task context cancelled", "task", t.name)
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runIsolated(ctx, t.name, t.job)
		}
	}
}

// runIsolated executes one iteration, converting a panic into a logged
// error so the schedule never dies.
func (s *Scheduler) runIsolated(ctx context.Context, name string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task iteration panicked", "task", name, "panic", r)
		}
	}()
	job(ctx)
}
