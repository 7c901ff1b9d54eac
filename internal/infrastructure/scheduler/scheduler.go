// Package scheduler runs the periodic background jobs of the games hub on top
// of gocron. Jobs are plain values with a name and a Run method; the scheduler
// owns timing, single-flight execution and result logging.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOB INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Job defines the interface that all scheduled jobs must implement.
type Job interface {
	// Name returns the unique name of the job.
	Name() string

	// Run executes the job.
	// The context is cancelled when the scheduler is stopping.
	Run(ctx context.Context) error

	// Description returns a human-readable description of the job.
	Description() string
}

// Schedule defines when a job should run. Exactly one of Cron and Every is set.
type Schedule struct {
	// Cron is a five-field crontab expression evaluated in the scheduler's timezone.
	Cron string

	// Every runs the job at a fixed interval.
	Every time.Duration
}

// Cron returns a crontab schedule.
func Cron(expr string) Schedule { return Schedule{Cron: expr} }

// Every returns a fixed interval schedule.
func Every(d time.Duration) Schedule { return Schedule{Every: d} }

// String returns a human-readable representation of the schedule.
func (s Schedule) String() string {
	if s.Cron != "" {
		return "cron(" + s.Cron + ")"
	}
	return "every " + s.Every.String()
}

func (s Schedule) definition() (gocron.JobDefinition, error) {
	switch {
	case s.Cron != "" && s.Every > 0:
		return nil, fmt.Errorf("%w: both cron and interval set", ErrInvalidSchedule)
	case s.Cron != "":
		return gocron.CronJob(s.Cron, false), nil
	case s.Every > 0:
		return gocron.DurationJob(s.Every), nil
	default:
		return nil, ErrInvalidSchedule
	}
}

// JobResult contains the result of a job execution.
type JobResult struct {
	JobName     string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Success     bool
	Error       error
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// Config contains configuration for the Scheduler.
type Config struct {
	// Logger for structured logging.
	Logger *slog.Logger

	// Timezone for cron schedules (default: UTC).
	Timezone *time.Location

	// JobTimeout bounds a single run. Zero means no timeout.
	JobTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Logger:     slog.Default(),
		Timezone:   time.UTC,
		JobTimeout: 5 * time.Minute,
	}
}

// Scheduler manages and executes scheduled jobs.
type Scheduler struct {
	mu sync.RWMutex

	cron    gocron.Scheduler
	logger  *slog.Logger
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	jobs     map[string]registeredJob
	lastRuns map[string]JobResult
	running  bool
}

type registeredJob struct {
	job      Job
	schedule Schedule
	handle   gocron.Job
}

// New creates a new Scheduler with the given configuration.
func New(config Config) (*Scheduler, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timezone == nil {
		config.Timezone = time.UTC
	}

	cron, err := gocron.NewScheduler(gocron.WithLocation(config.Timezone))
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     cron,
		logger:   config.Logger.With("component", "scheduler"),
		timeout:  config.JobTimeout,
		ctx:      ctx,
		cancel:   cancel,
		jobs:     make(map[string]registeredJob),
		lastRuns: make(map[string]JobResult),
	}, nil
}

// Register adds a job to the scheduler with the given schedule.
// A run that is still going when the next one is due delays the next one.
func (s *Scheduler) Register(job Job, schedule Schedule) error {
	if job == nil {
		return ErrNilJob
	}
	def, err := schedule.definition()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrJobAlreadyExists, name)
	}

	handle, err := s.cron.NewJob(def,
		gocron.NewTask(func() { s.execute(job) }),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSchedule, name, err)
	}

	s.jobs[name] = registeredJob{job: job, schedule: schedule, handle: handle}
	s.logger.Info("job registered",
		"job", name,
		"description", job.Description(),
		"schedule", schedule.String(),
	)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start begins running registered jobs on their schedules.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrSchedulerAlreadyRunning
	}
	s.running = true
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs_count", len(s.jobs))
	return nil
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.running = false
	s.mu.Unlock()

	s.cancel()
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("scheduler: shutdown: %w", err)
	}
	s.logger.Info("scheduler stopped")
	return nil
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// ══════════════════════════════════════════════════════════════════════════════
// EXECUTION
// ══════════════════════════════════════════════════════════════════════════════

// RunNow executes a registered job synchronously, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, jobName string) (JobResult, error) {
	s.mu.RLock()
	rj, ok := s.jobs[jobName]
	s.mu.RUnlock()
	if !ok {
		return JobResult{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobName)
	}
	return s.run(ctx, rj.job), nil
}

// LastResult returns the result of the latest run of a job.
func (s *Scheduler) LastResult(jobName string) (JobResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.lastRuns[jobName]
	return r, ok
}

// JobInfo describes a registered job.
type JobInfo struct {
	Name        string
	Description string
	Schedule    string
	NextRun     time.Time
}

// ListJobs returns the registered jobs sorted by name.
func (s *Scheduler) ListJobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for name, rj := range s.jobs {
		info := JobInfo{Name: name, Description: rj.job.Description(), Schedule: rj.schedule.String()}
		if next, err := rj.handle.NextRun(); err == nil {
			info.NextRun = next
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

func (s *Scheduler) execute(job Job) {
	s.run(s.ctx, job)
}

func (s *Scheduler) run(ctx context.Context, job Job) JobResult {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	err := safeRun(ctx, job)
	completed := time.Now()

	result := JobResult{
		JobName:     job.Name(),
		StartedAt:   started,
		CompletedAt: completed,
		Duration:    completed.Sub(started),
		Success:     err == nil,
		Error:       err,
	}

	s.mu.Lock()
	s.lastRuns[result.JobName] = result
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("job failed",
			"job", result.JobName,
			"duration", result.Duration.String(),
			"error", err,
		)
	} else {
		s.logger.Info("job completed",
			"job", result.JobName,
			"duration", result.Duration.String(),
		)
	}
	return result
}

func safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
		}
	}()
	return job.Run(ctx)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNilJob is returned when trying to register a nil job.
	ErrNilJob = errors.New("job cannot be nil")

	// ErrInvalidSchedule is returned for an empty or malformed schedule.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrJobAlreadyExists is returned when a job with the same name already exists.
	ErrJobAlreadyExists = errors.New("job already exists")

	// ErrJobNotFound is returned when a job is not found.
	ErrJobNotFound = errors.New("job not found")

	// ErrJobPanicked wraps a panic recovered from a job.
	ErrJobPanicked = errors.New("job panicked")

	// ErrSchedulerAlreadyRunning is returned when Start is called on a running scheduler.
	ErrSchedulerAlreadyRunning = errors.New("scheduler is already running")

	// ErrSchedulerNotRunning is returned when Stop is called on a stopped scheduler.
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
)
