// Package scheduler runs periodic maintenance tasks in background goroutines.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidTask is returned when a task has no name, no run func or no interval
var ErrInvalidTask = errors.New("invalid scheduler task")

// Task is a unit of periodic work
type Task struct {
	Name     string
	Interval time.Duration
	// Timeout bounds one run. Zero means the interval.
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

func (t Task) validate() error {
	if t.Name == "" || t.Run == nil {
		return fmt.Errorf("%w: name and run func are required", ErrInvalidTask)
	}
	if t.Interval <= 0 {
		return fmt.Errorf("%w: %s interval must be positive", ErrInvalidTask, t.Name)
	}
	return nil
}

// Scheduler runs each registered task on its own ticker
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// New creates a scheduler with no tasks
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger.Named("scheduler")}
}

// Register adds a task. Tasks added after Start are ignored until the next Start.
func (s *Scheduler) Register(t Task) error {
	if err := t.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, t)
	return nil
}

// Start launches one goroutine per task. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.loop(ctx, t)
	}
	s.logger.Info("Scheduler started", zap.Int("tasks", len(s.tasks)))
}

// Stop cancels all tasks and waits for running ones to return or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether Start has been called without a matching Stop
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *Scheduler) loop(ctx context.Context, t Task) {
	defer s.wg.Done()

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, t)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, t Task) {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = t.Interval
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scheduled task panicked", zap.String("task", t.Name), zap.Any("panic", r))
		}
	}()

	start := time.Now()
	if err := t.Run(runCtx); err != nil {
		s.logger.Error("Scheduled task failed",
			zap.String("task", t.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("Scheduled task completed", zap.String("task", t.Name), zap.Duration("elapsed", time.Since(start)))
}
