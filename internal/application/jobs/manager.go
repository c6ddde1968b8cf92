package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/diglink-inc/diglink/internal/shared/id"
	"github.com/diglink-inc/diglink/internal/shared/logger"
)

// QueueStatus is a point-in-time view of the job registry and its gate.
type QueueStatus struct {
	Capacity   int `json:"capacity"`
	Available  int `json:"available"`
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Total      int `json:"total"`
}

// Manager is the in-memory job registry plus the admission gate bounding how
// many updates run concurrently (default capacity 1: strict single-flight).
type Manager struct {
	mu   sync.RWMutex
	jobs map[string]*Job

	gate     chan struct{}
	capacity int

	maxAge time.Duration
	logger logger.Interface

	// now is swappable in tests.
	now func() time.Time
}

// NewManager creates a job manager with the given gate capacity and terminal
// job retention age.
func NewManager(gateCapacity int, maxAge time.Duration, log logger.Interface) *Manager {
	if gateCapacity < 1 {
		gateCapacity = 1
	}
	return &Manager{
		jobs:     make(map[string]*Job),
		gate:     make(chan struct{}, gateCapacity),
		capacity: gateCapacity,
		maxAge:   maxAge,
		logger:   log,
		now:      time.Now,
	}
}

// Create registers a new queued job and returns a snapshot of it.
func (m *Manager) Create(ticketNumber, username string) *Job {
	jobID, err := id.GenerateWithPrefix(id.PrefixJob, id.DefaultLength)
	if err != nil {
		// crypto/rand failing means the process is unusable anyway
		panic(err)
	}

	job := &Job{
		ID:           jobID,
		Status:       StatusQueued,
		TicketNumber: ticketNumber,
		Username:     username,
		CreatedAt:    m.now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	return snapshot(job)
}

// Get returns a snapshot of the job, or false when unknown (or collected).
func (m *Manager) Get(jobID string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, false
	}
	return snapshot(job), true
}

// Acquire blocks until a gate slot is free or the context ends.
func (m *Manager) Acquire(ctx context.Context) error {
	select {
	case m.gate <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a gate slot taken by Acquire.
func (m *Manager) Release() {
	<-m.gate
}

// MarkProcessing transitions a job to processing, stamping started_at.
func (m *Manager) MarkProcessing(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return
	}
	started := m.now()
	job.Status = StatusProcessing
	job.StartedAt = &started
}

// Complete finishes a job successfully, stamping completed_at.
func (m *Manager) Complete(jobID string, result *Result) {
	m.finish(jobID, StatusCompleted, result)
}

// Fail finishes a job with a failure result.
func (m *Manager) Fail(jobID, message string) {
	m.finish(jobID, StatusFailed, &Result{
		Success:   false,
		Message:   message,
		Timestamp: m.now(),
	})
}

func (m *Manager) finish(jobID string, status Status, result *Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return
	}
	completed := m.now()
	job.Status = status
	job.CompletedAt = &completed
	job.Result = result
}

// Status reports the gate and registry occupancy.
func (m *Manager) Status() QueueStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := QueueStatus{
		Capacity:  m.capacity,
		Available: m.capacity - len(m.gate),
		Total:     len(m.jobs),
	}
	for _, job := range m.jobs {
		switch job.Status {
		case StatusQueued:
			st.Queued++
		case StatusProcessing:
			st.Processing++
		}
	}
	return st
}

// GC drops terminal jobs older than the retention age and returns how many
// were collected. Running with nothing to clean is a no-op.
func (m *Manager) GC() int {
	cutoff := m.now().Add(-m.maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	collected := 0
	for jobID, job := range m.jobs {
		if !job.Status.Terminal() || job.CompletedAt == nil {
			continue
		}
		if job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			collected++
		}
	}
	if collected > 0 {
		m.logger.Infow("collected finished jobs", "count", collected)
	}
	return collected
}

// snapshot copies a job so callers never observe concurrent mutation.
func snapshot(job *Job) *Job {
	cp := *job
	if job.Result != nil {
		res := *job.Result
		cp.Result = &res
	}
	return &cp
}
