// Package scheduler runs registered jobs at fixed intervals and records
// each invocation in a result backend.
package scheduler

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/student-roster/internal/domain"
)

var (
	ErrDuplicateJob    = errors.New("job already registered")
	ErrUnknownJob      = errors.New("unknown job")
	ErrInvalidInterval = errors.New("interval must be positive")
	ErrJobRunning      = errors.New("job is already running")
	ErrStarted         = errors.New("scheduler already started")
)

// Entry is one registration: a job and how often to run it.
type Entry struct {
	Job      Job
	Interval time.Duration
	// RunOnStart runs the job once as soon as the scheduler starts,
	// before the first tick.
	RunOnStart bool
	// Label names the schedule entry in logs. Defaults to the job name.
	Label string
}

// JobInfo is a snapshot of a registered job.
type JobInfo struct {
	Name     string
	Label    string
	Interval time.Duration
	Running  bool
	Runs     int64
	Failures int64
	Skipped  int64
}

type entry struct {
	Entry
	running  atomic.Bool
	runs     atomic.Int64
	failures atomic.Int64
	skipped  atomic.Int64
}

// Scheduler invokes each registered job on its own ticker. A tick that
// arrives while the previous invocation of the same job is still running
// is skipped.
type Scheduler struct {
	clock   Clock
	results domain.TaskResultRepository

	mu      sync.Mutex
	entries map[string]*entry
	cancel  context.CancelFunc
	started bool

	wg sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// New creates a Scheduler. results may be nil, in which case invocations
// are only logged.
func New(results domain.TaskResultRepository, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:   realClock{},
		results: results,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds job to run every interval.
func (s *Scheduler) Register(job Job, interval time.Duration) error {
	return s.Add(Entry{Job: job, Interval: interval})
}

// Add registers an entry. Jobs must be registered before Start.
func (s *Scheduler) Add(e Entry) error {
	if e.Job == nil {
		return fmt.Errorf("%w: nil job", domain.ErrInvalidInput)
	}
	if e.Interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, e.Job.Name())
	}
	if e.Label == "" {
		e.Label = e.Job.Name()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrStarted
	}
	if _, ok := s.entries[e.Job.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, e.Job.Name())
	}
	s.entries[e.Job.Name()] = &entry{Entry: e}
	return nil
}

// Start launches one loop per registered job. The loops stop when ctx is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrStarted
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, e := range s.entries {
		s.wg.Add(1)
		go s.loop(ctx, e)
		slog.Info("job scheduled", "task", e.Job.Name(), "schedule", e.Label, "interval", e.Interval)
	}
	return nil
}

// Stop cancels every loop and waits for in-flight invocations to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// RunNow invokes the named job immediately, outside its schedule, and
// returns the task ID together with the job's error.
func (s *Scheduler) RunNow(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	if !e.running.CompareAndSwap(false, true) {
		return "", fmt.Errorf("%w: %s", ErrJobRunning, name)
	}
	defer e.running.Store(false)

	return s.invoke(ctx, e)
}

// Jobs returns a snapshot of every registered job, sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.entries))
	for name, e := range s.entries {
		infos = append(infos, JobInfo{
			Name:     name,
			Label:    e.Label,
			Interval: e.Interval,
			Running:  e.running.Load(),
			Runs:     e.runs.Load(),
			Failures: e.failures.Load(),
			Skipped:  e.skipped.Load(),
		})
	}
	slices.SortFunc(infos, func(a, b JobInfo) int { return cmp.Compare(a.Name, b.Name) })
	return infos
}

func (s *Scheduler) loop(ctx context.Context, e *entry) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(e.Interval)
	defer ticker.Stop()

	if e.RunOnStart {
		s.dispatch(ctx, e)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.dispatch(ctx, e)
		}
	}
}

// dispatch runs the job on its own goroutine so the ticker keeps its
// cadence regardless of how long the job takes.
func (s *Scheduler) dispatch(ctx context.Context, e *entry) {
	if !e.running.CompareAndSwap(false, true) {
		e.skipped.Add(1)
		slog.Warn("skipping tick, previous run still in progress", "task", e.Job.Name())
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer e.running.Store(false)
		s.invoke(ctx, e)
	}()
}

func (s *Scheduler) invoke(ctx context.Context, e *entry) (string, error) {
	taskID := uuid.NewString()
	name := e.Job.Name()
	started := s.clock.Now()

	if s.results != nil {
		rec := &domain.TaskResult{
			TaskID:    taskID,
			TaskName:  name,
			Status:    domain.TaskStatusStarted,
			StartedAt: started.UTC(),
		}
		if err := s.results.Create(ctx, rec); err != nil {
			slog.Error("record task start", "task", name, "task_id", taskID, "error", err)
		}
	}

	err := runJob(ctx, e.Job)
	e.runs.Add(1)

	status, errMsg := domain.TaskStatusSuccess, ""
	if err != nil {
		e.failures.Add(1)
		status, errMsg = domain.TaskStatusFailure, err.Error()
		slog.Error("task failed", "task", name, "task_id", taskID, "error", err)
	} else {
		slog.Info("task succeeded", "task", name, "task_id", taskID, "duration", s.clock.Now().Sub(started))
	}

	if s.results != nil {
		// The job's ctx may already be cancelled; the outcome is still recorded.
		finishCtx := context.WithoutCancel(ctx)
		if ferr := s.results.Finish(finishCtx, taskID, status, errMsg); ferr != nil {
			slog.Error("record task result", "task", name, "task_id", taskID, "error", ferr)
		}
	}
	return taskID, err
}

func runJob(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.Name(), r)
		}
	}()
	return job.Run(ctx)
}
