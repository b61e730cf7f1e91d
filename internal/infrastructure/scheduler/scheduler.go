package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunStatus represents the status of a single task run
type RunStatus string

const (
	RunStatusPending RunStatus = "PENDING"
	RunStatusRunning RunStatus = "RUNNING"
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailed  RunStatus = "FAILED"
)

// Task is a periodic maintenance job
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// TaskFunc adapts a function to the Task interface
type TaskFunc struct {
	TaskName string
	Fn       func(ctx context.Context) error
}

// Name returns the task name
func (f TaskFunc) Name() string { return f.TaskName }

// Run calls the wrapped function
func (f TaskFunc) Run(ctx context.Context) error { return f.Fn(ctx) }

// Run records one execution of a task
type Run struct {
	ID          uuid.UUID
	Task        string
	Status      RunStatus
	Error       string
	Attempt     int
	StartedAt   *time.Time
	CompletedAt *time.Time
}

func newRun(task string) *Run {
	return &Run{ID: uuid.New(), Task: task, Status: RunStatusPending}
}

// Start marks the run as running
func (r *Run) Start() {
	now := time.Now()
	r.Attempt++
	r.Status = RunStatusRunning
	r.StartedAt = &now
	r.Error = ""
}

// Complete marks the run as successful
func (r *Run) Complete() {
	now := time.Now()
	r.Status = RunStatusSuccess
	r.CompletedAt = &now
}

// Fail marks the run as failed
func (r *Run) Fail(err string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.CompletedAt = &now
	r.Error = err
}

// Config holds scheduler configuration
type Config struct {
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		JobTimeout:    5 * time.Minute,
		RetryAttempts: 2,
		RetryDelay:    time.Minute,
	}
}

type entry struct {
	task     Task
	interval time.Duration
}

// Scheduler runs registered tasks on fixed intervals. A task never overlaps
// with itself: the next tick waits until the current run and its retries end.
type Scheduler struct {
	config  Config
	logger  *zap.Logger
	entries []entry

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	last      map[string]Run
}

// New creates a new scheduler instance
func New(config Config, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		config: config,
		logger: logger,
		last:   make(map[string]Run),
	}
}

// Every registers task to run once per interval. Tasks must be registered
// before Start.
func (s *Scheduler) Every(interval time.Duration, task Task) error {
	if interval <= 0 {
		return ErrInvalidConfig
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrSchedulerRunning
	}
	s.entries = append(s.entries, entry{task: task, interval: interval})
	return nil
}

// Start launches one loop per registered task
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, e := range s.entries {
		s.wg.Add(1)
		go s.loop(ctx, e)
	}

	s.logger.Info("Scheduler started",
		zap.Int("tasks", len(s.entries)),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running tasks and waits for their loops to exit
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// LastRun returns the most recent finished run of a task
func (s *Scheduler) LastRun(task string) (Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.last[task]
	return r, ok
}

func (s *Scheduler) loop(ctx context.Context, e entry) {
	defer s.wg.Done()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx, e.task)
		}
	}
}

// execute runs a task, retrying failures up to RetryAttempts times
func (s *Scheduler) execute(ctx context.Context, task Task) {
	run := newRun(task.Name())
	for {
		run.Start()
		err := s.runOnce(ctx, task)
		if err == nil {
			run.Complete()
			s.record(run)
			s.logger.Debug("Task completed",
				zap.String("task", run.Task),
				zap.String("run_id", run.ID.String()),
			)
			return
		}

		run.Fail(err.Error())
		s.logger.Error("Task failed",
			zap.String("task", run.Task),
			zap.String("run_id", run.ID.String()),
			zap.Int("attempt", run.Attempt),
			zap.Error(err),
		)
		if run.Attempt > s.config.RetryAttempts || ctx.Err() != nil {
			s.record(run)
			return
		}

		select {
		case <-ctx.Done():
			s.record(run)
			return
		case <-time.After(s.config.RetryDelay):
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, task Task) (err error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Task panicked", zap.String("task", task.Name()), zap.Any("panic", r))
			err = ErrTaskPanicked
		}
	}()
	return task.Run(ctx)
}

func (s *Scheduler) record(run *Run) {
	s.mu.Lock()
	s.last[run.Task] = *run
	s.mu.Unlock()
}
