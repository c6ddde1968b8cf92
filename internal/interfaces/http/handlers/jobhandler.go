package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/diglink-inc/diglink/internal/application/jobs"
	"github.com/diglink-inc/diglink/internal/shared/logger"
	"github.com/diglink-inc/diglink/internal/shared/utils"
)

// TicketUpdateRequest is the enqueue payload. The credentials ride along in
// the request and never land in the registry.
type TicketUpdateRequest struct {
	TicketNumber string `json:"ticket_number" binding:"required"`
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

// JobHandler exposes the ticket update job queue: enqueue, poll, and queue
// status.
type JobHandler struct {
	runner  *jobs.Runner
	manager *jobs.Manager
	logger  logger.Interface
}

func NewJobHandler(runner *jobs.Runner, manager *jobs.Manager, logger logger.Interface) *JobHandler {
	return &JobHandler{
		runner:  runner,
		manager: manager,
		logger:  logger,
	}
}

// Enqueue handles POST /jobs/ticket-update
func (h *JobHandler) Enqueue(c *gin.Context) {
	var req TicketUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "ticket_number, username and password are required")
		return
	}

	job := h.runner.Enqueue(req.TicketNumber, req.Username, req.Password)
	utils.AcceptedResponse(c, job, "ticket update queued")
}

// Get handles GET /jobs/:id
func (h *JobHandler) Get(c *gin.Context) {
	job, ok := h.manager.Get(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusNotFound, "job not found")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", job)
}

// QueueStatus handles GET /jobs/queue/status
func (h *JobHandler) QueueStatus(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "", h.manager.Status())
}
