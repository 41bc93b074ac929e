package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is the work a maintenance job performs.
type Task func(ctx context.Context) error

// Job is a scheduled maintenance task
type Job struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"` // Cron expression, 5 or 6 fields or a descriptor
	Enabled   bool       `json:"enabled"`
	CreatedAt time.Time  `json:"created_at"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	Runs      int        `json:"runs"`

	// Runtime fields
	task    Task
	EntryID cron.EntryID `json:"-"`
}

// Clone creates a copy of the job without its task
func (j *Job) Clone() *Job {
	clone := &Job{
		ID:        j.ID,
		Name:      j.Name,
		Schedule:  j.Schedule,
		Enabled:   j.Enabled,
		CreatedAt: j.CreatedAt,
		LastError: j.LastError,
		Runs:      j.Runs,
		EntryID:   j.EntryID,
	}

	if j.LastRun != nil {
		lastRun := *j.LastRun
		clone.LastRun = &lastRun
	}

	return clone
}
