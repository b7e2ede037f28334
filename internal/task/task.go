// Package task runs enhancement jobs in the background. Submissions return
// immediately with a task id; a fixed worker pool executes the jobs and
// records every lifecycle transition in the shared store, where pollers and
// webhook consumers pick them up.
package task

import (
	"time"

	"github.com/af-corp/prism-enhance/internal/enhance"
)

// Status is a task's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status admits no further transition.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task is one async enhancement job. The record is overwritten wholesale on
// every transition and only by the worker that owns the task id.
type Task struct {
	TaskID      string     `json:"task_id"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Original string `json:"original"`
	Style    string `json:"style"`
	Tone     string `json:"tone"`

	// Set when the task completes.
	Enhanced     string            `json:"enhanced,omitempty"`
	Improvements []string          `json:"improvements,omitempty"`
	Metadata     *enhance.Metadata `json:"metadata,omitempty"`

	// Set when the task fails.
	Error string `json:"error,omitempty"`
}
