package cron

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kayz/promptblocks/internal/logger"
	"github.com/robfig/cron/v3"
)

const jobTimeout = 5 * time.Minute

// Scheduler runs in-process maintenance jobs such as audit retention cleanup
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]*Job
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

// NewScheduler creates a new scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()), // Support second-level precision
		jobs:   make(map[string]*Job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// normalizeCron prepends "0 " to standard 5-field cron expressions
// so they work with the 6-field (with seconds) parser.
func normalizeCron(schedule string) string {
	schedule = strings.TrimSpace(schedule)
	if len(strings.Fields(schedule)) == 5 {
		return "0 " + schedule
	}
	return schedule
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	logger.Info("[CRON] Scheduler started with %d jobs", len(s.jobs))
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("[CRON] Scheduler stopped")
}

// AddJob validates and schedules a task
func (s *Scheduler) AddJob(name, schedule string, task Task) (*Job, error) {
	if task == nil {
		return nil, fmt.Errorf("job %q has no task", name)
	}
	job := &Job{
		ID:        uuid.New().String(),
		Name:      name,
		Schedule:  normalizeCron(schedule),
		Enabled:   true,
		CreatedAt: time.Now(),
		task:      task,
	}

	// Validate cron expression using the 6-field (with seconds) parser
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(job.Schedule); err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entryID, err := s.cron.AddFunc(job.Schedule, func() { s.executeJob(job) })
	if err != nil {
		return nil, fmt.Errorf("failed to schedule job: %w", err)
	}
	job.EntryID = entryID
	s.jobs[job.ID] = job

	logger.Info("[CRON] Job created: %s (%s) - schedule: %s", job.ID, job.Name, job.Schedule)
	return job.Clone(), nil
}

// RemoveJob removes a job from the scheduler
func (s *Scheduler) RemoveJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}
	if job.EntryID != 0 {
		s.cron.Remove(job.EntryID)
	}
	delete(s.jobs, id)

	logger.Info("[CRON] Job removed: %s (%s)", job.ID, job.Name)
	return nil
}

// RunNow executes a job immediately on the calling goroutine
func (s *Scheduler) RunNow(id string) error {
	s.mu.RLock()
	job, exists := s.jobs[id]
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}
	s.executeJob(job)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if job.LastError != "" {
		return fmt.Errorf("job %s failed: %s", job.Name, job.LastError)
	}
	return nil
}

// ListJobs returns all jobs ordered by name
func (s *Scheduler) ListJobs() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job.Clone())
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

// executeJob runs a job's task and records the outcome
func (s *Scheduler) executeJob(job *Job) {
	now := time.Now()
	logger.Debug("[CRON] Running job: %s (%s)", job.ID, job.Name)

	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	err := job.task(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	job.LastRun = &now
	job.Runs++
	if err != nil {
		job.LastError = err.Error()
		logger.Warn("[CRON] Job failed: %s (%s) - error: %v", job.ID, job.Name, err)
		return
	}
	job.LastError = ""
	logger.Debug("[CRON] Job completed: %s (%s)", job.ID, job.Name)
}
