// Package handlers contains the gin HTTP handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/diglink-inc/diglink/internal/application/sync/usecases"
	"github.com/diglink-inc/diglink/internal/infrastructure/cache"
	"github.com/diglink-inc/diglink/internal/shared/logger"
	"github.com/diglink-inc/diglink/internal/shared/utils"
)

const cronLockHolder = "cron-http"

// CronHandler exposes the scheduler-facing trigger for the sync pipeline.
type CronHandler struct {
	syncUseCase *usecases.SyncTicketsUseCase
	lock        *cache.SyncLock
	logger      logger.Interface
}

func NewCronHandler(
	syncUseCase *usecases.SyncTicketsUseCase,
	lock *cache.SyncLock,
	logger logger.Interface,
) *CronHandler {
	return &CronHandler{
		syncUseCase: syncUseCase,
		lock:        lock,
		logger:      logger,
	}
}

// TriggerSync handles POST /cron/sync. The distributed lock keeps an HTTP
// trigger from overlapping a scheduled worker run; the caller gets the full
// stats object when the run completes.
func (h *CronHandler) TriggerSync(c *gin.Context) {
	ctx := c.Request.Context()

	acquired, err := h.lock.TryAcquire(ctx, cronLockHolder)
	if err != nil {
		h.logger.Errorw("failed to acquire sync lock", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	if !acquired {
		utils.ErrorResponse(c, http.StatusConflict, "a sync run is already in progress")
		return
	}
	defer func() {
		if err := h.lock.Release(ctx, cronLockHolder); err != nil {
			h.logger.Errorw("failed to release sync lock", "error", err)
		}
	}()

	stats, err := h.syncUseCase.Execute(ctx)
	if err != nil {
		h.logger.Errorw("sync run failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "sync completed", stats)
}
