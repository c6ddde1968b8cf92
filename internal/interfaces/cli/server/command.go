// Package server implements the server subcommand: it wires the full
// dependency graph and runs the HTTP surface plus the job garbage collector.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/diglink-inc/diglink/internal/application/jobs"
	syncUsecases "github.com/diglink-inc/diglink/internal/application/sync/usecases"
	"github.com/diglink-inc/diglink/internal/infrastructure/bluestakes"
	"github.com/diglink-inc/diglink/internal/infrastructure/cache"
	"github.com/diglink-inc/diglink/internal/infrastructure/config"
	"github.com/diglink-inc/diglink/internal/infrastructure/crypto"
	"github.com/diglink-inc/diglink/internal/infrastructure/database"
	"github.com/diglink-inc/diglink/internal/infrastructure/repository"
	"github.com/diglink-inc/diglink/internal/infrastructure/updater"
	httpRouter "github.com/diglink-inc/diglink/internal/interfaces/http"
	"github.com/diglink-inc/diglink/internal/interfaces/http/handlers"
	"github.com/diglink-inc/diglink/internal/shared/db"
	"github.com/diglink-inc/diglink/internal/shared/goroutine"
	"github.com/diglink-inc/diglink/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the DigLink sync service with the specified configuration.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Automatically run database migrations on startup (not recommended for production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()
	log.Infow("starting server", "environment", env, "auto_migrate", autoMigrate)

	gin.SetMode(mapEnvToGinMode(env))
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if autoMigrate {
		if err := database.AutoMigrate(); err != nil {
			return fmt.Errorf("auto-migrate failed: %w", err)
		}
		log.Infow("database schema migrated")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	cipher, err := crypto.NewAEADCipher(cfg.Encryption.Key)
	if err != nil {
		return fmt.Errorf("failed to initialize credential cipher: %w", err)
	}

	companyRepo := repository.NewCompanyRepository(database.Get())
	ticketRepo := repository.NewProjectTicketRepository(database.Get())
	updatableRepo := repository.NewUpdatableTicketRepository(database.Get())

	bsClient := bluestakes.NewClient(&cfg.BlueStakes, log)
	tokens := bluestakes.NewTokenCache(companyRepo, bsClient, cfg.BlueStakes.TokenTTL(), log)
	bsService := bluestakes.NewService(bsClient, tokens, log)

	txManager := db.NewTransactionManager(database.Get())
	linker := syncUsecases.NewLinkOrphansUseCase(ticketRepo, txManager, log)
	scanner := syncUsecases.NewScanUpdatableUseCase(ticketRepo, updatableRepo, bsService, log)
	responses := syncUsecases.NewSyncResponsesUseCase(ticketRepo, bsService, cfg.Sync.TicketDelay(), log)
	syncUseCase := syncUsecases.NewSyncTicketsUseCase(
		companyRepo, ticketRepo, bsService, cipher,
		linker, scanner, responses,
		&cfg.Sync, log,
	)

	syncLock := cache.NewSyncLock(redisClient, cfg.Sync.LockTTL())

	jobManager := jobs.NewManager(cfg.Jobs.GateCapacity, cfg.Jobs.MaxAge(), log)
	ticketUpdater := updater.NewHTTPUpdater(&cfg.Updater, log)
	jobRunner := jobs.NewRunner(jobManager, ticketUpdater, cfg.Jobs.Timeout(), log)

	router := httpRouter.NewRouter(&cfg.Server, httpRouter.RouterDeps{
		Cron:   handlers.NewCronHandler(syncUseCase, syncLock, log),
		Tokens: handlers.NewTokenHandler(tokens, log),
		Jobs:   handlers.NewJobHandler(jobRunner, jobManager, log),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Jobs live in this process, so their GC runs here rather than in the
	// worker.
	goroutine.SafeGo(log, "job-gc", func() {
		ticker := time.NewTicker(cfg.Jobs.GCInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				jobManager.GC()
			case <-ctx.Done():
				return
			}
		}
	})

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Minute, // cron sync runs inside a request
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server listening", "address", cfg.Server.GetAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("server stopped unexpectedly", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Infow("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func mapEnvToGinMode(env string) string {
	switch env {
	case "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
