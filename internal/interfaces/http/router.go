// Package http wires the gin router for the sync service.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/diglink-inc/diglink/internal/interfaces/http/handlers"
	"github.com/diglink-inc/diglink/internal/interfaces/http/middleware"
	"github.com/diglink-inc/diglink/internal/shared/config"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Cron   *handlers.CronHandler
	Tokens *handlers.TokenHandler
	Jobs   *handlers.JobHandler
}

// NewRouter builds the gin engine. Mode is set by the caller before this.
func NewRouter(cfg *config.ServerConfig, deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	cron := api.Group("/cron", middleware.CronSecret(cfg.CronSecret))
	{
		cron.POST("/sync", deps.Cron.TriggerSync)
	}

	tokens := api.Group("/tokens")
	{
		tokens.GET("/stats", deps.Tokens.GetStats)
		tokens.POST("/sweep", deps.Tokens.Sweep)
		tokens.DELETE("/:company_id", deps.Tokens.Invalidate)
	}

	jobs := api.Group("/jobs")
	{
		jobs.POST("/ticket-update", deps.Jobs.Enqueue)
		jobs.GET("/queue/status", deps.Jobs.QueueStatus)
		jobs.GET("/:id", deps.Jobs.Get)
	}

	return router
}
