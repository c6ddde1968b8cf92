package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/diglink-inc/diglink/internal/infrastructure/bluestakes"
	"github.com/diglink-inc/diglink/internal/shared/logger"
	"github.com/diglink-inc/diglink/internal/shared/utils"
)

// TokenHandler exposes token cache management: statistics, per-company
// invalidation, and the expiry sweep.
type TokenHandler struct {
	tokens *bluestakes.TokenCache
	logger logger.Interface
}

func NewTokenHandler(tokens *bluestakes.TokenCache, logger logger.Interface) *TokenHandler {
	return &TokenHandler{
		tokens: tokens,
		logger: logger,
	}
}

// GetStats handles GET /tokens/stats
func (h *TokenHandler) GetStats(c *gin.Context) {
	stats, err := h.tokens.CacheStats(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to collect token stats", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", stats)
}

// Invalidate handles DELETE /tokens/:company_id
func (h *TokenHandler) Invalidate(c *gin.Context) {
	companyID, err := strconv.ParseUint(c.Param("company_id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid company id")
		return
	}

	cleared, err := h.tokens.Invalidate(c.Request.Context(), uint(companyID))
	if err != nil {
		h.logger.Errorw("failed to invalidate token", "company_id", companyID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"cleared": cleared})
}

// Sweep handles POST /tokens/sweep
func (h *TokenHandler) Sweep(c *gin.Context) {
	swept, err := h.tokens.SweepExpired(c.Request.Context())
	if err != nil {
		h.logger.Errorw("token sweep failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"swept": swept})
}
