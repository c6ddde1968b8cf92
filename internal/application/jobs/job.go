// Package jobs implements the in-memory ticket update job queue: a registry
// with full lifecycle tracking and a bounded admission gate serializing the
// slow browser-automation calls.
package jobs

import "time"

// Status is the lifecycle state of a ticket update job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the job has finished, successfully or not.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Result is the outcome of a finished job.
type Result struct {
	Success   bool                   `json:"success"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Job is one ticket update request tracked in memory. The password used for
// the update is deliberately absent: it lives only in the worker goroutine's
// closure and is never queryable.
//
// Jobs are process-local and lost on restart; they exist for short-lived
// polling, not durable audit.
type Job struct {
	ID           string     `json:"id"`
	Status       Status     `json:"status"`
	TicketNumber string     `json:"ticket_number"`
	Username     string     `json:"username"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Result       *Result    `json:"result,omitempty"`
}
