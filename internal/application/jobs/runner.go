package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/diglink-inc/diglink/internal/shared/goroutine"
	"github.com/diglink-inc/diglink/internal/shared/logger"
)

// TicketUpdater performs the actual ticket renewal against the automation
// service. Implementations live in infrastructure.
type TicketUpdater interface {
	UpdateTicket(ctx context.Context, ticketNumber, username, password string) (*Result, error)
}

// Runner accepts update requests, registers them with the Manager, and works
// them off in background goroutines behind the admission gate.
type Runner struct {
	manager *Manager
	updater TicketUpdater
	timeout time.Duration
	logger  logger.Interface
}

func NewRunner(manager *Manager, updater TicketUpdater, timeout time.Duration, log logger.Interface) *Runner {
	return &Runner{
		manager: manager,
		updater: updater,
		timeout: timeout,
		logger:  log,
	}
}

// Enqueue registers a job and starts a worker for it. It returns immediately
// with the queued snapshot; the gate is acquired inside the goroutine so a
// busy queue never blocks the caller. The password lives only in the worker
// closure, never in the registry.
func (r *Runner) Enqueue(ticketNumber, username, password string) *Job {
	job := r.manager.Create(ticketNumber, username)

	goroutine.SafeGo(r.logger, "ticket-update-job", func() {
		r.run(job.ID, ticketNumber, username, password)
	})

	r.logger.Infow("queued ticket update job",
		"job_id", job.ID,
		"ticket_number", ticketNumber,
	)
	return job
}

func (r *Runner) run(jobID, ticketNumber, username, password string) {
	// A panicking updater must still leave the job terminal; SafeGo only
	// keeps the process alive.
	defer func() {
		if rec := recover(); rec != nil {
			r.manager.Fail(jobID, fmt.Sprintf("update panicked: %v", rec))
			panic(rec)
		}
	}()

	if err := r.manager.Acquire(context.Background()); err != nil {
		r.manager.Fail(jobID, fmt.Sprintf("failed to acquire update slot: %v", err))
		return
	}
	defer r.manager.Release()

	r.manager.MarkProcessing(jobID)

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	result, err := r.updater.UpdateTicket(ctx, ticketNumber, username, password)
	if err != nil {
		r.logger.Errorw("ticket update failed",
			"job_id", jobID,
			"ticket_number", ticketNumber,
			"error", err,
		)
		r.manager.Fail(jobID, err.Error())
		return
	}

	r.manager.Complete(jobID, result)
	r.logger.Infow("ticket update finished",
		"job_id", jobID,
		"ticket_number", ticketNumber,
		"success", result.Success,
	)
}
