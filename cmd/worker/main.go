package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	syncUsecases "github.com/diglink-inc/diglink/internal/application/sync/usecases"
	"github.com/diglink-inc/diglink/internal/infrastructure/bluestakes"
	"github.com/diglink-inc/diglink/internal/infrastructure/cache"
	"github.com/diglink-inc/diglink/internal/infrastructure/config"
	"github.com/diglink-inc/diglink/internal/infrastructure/crypto"
	"github.com/diglink-inc/diglink/internal/infrastructure/database"
	"github.com/diglink-inc/diglink/internal/infrastructure/repository"
	"github.com/diglink-inc/diglink/internal/shared/db"
	"github.com/diglink-inc/diglink/internal/shared/logger"
)

const workerLockHolder = "worker"

func main() {
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger()
	log.Infow("starting sync worker", "environment", env)

	if err := database.Init(&cfg.Database); err != nil {
		log.Errorw("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Errorw("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	cipher, err := crypto.NewAEADCipher(cfg.Encryption.Key)
	if err != nil {
		log.Errorw("failed to initialize credential cipher", "error", err)
		os.Exit(1)
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

	scheduler := cron.New()

	// Scheduled jobs log-and-continue on failure; a bad run must never kill
	// the scheduler.
	if _, err := scheduler.AddFunc(cfg.Sync.Schedule, func() {
		runSync(syncUseCase, syncLock, log)
	}); err != nil {
		log.Errorw("invalid sync schedule", "schedule", cfg.Sync.Schedule, "error", err)
		os.Exit(1)
	}

	if _, err := scheduler.AddFunc(cfg.Sync.TokenSweepCron, func() {
		if _, err := tokens.SweepExpired(context.Background()); err != nil {
			log.Errorw("token sweep failed", "error", err)
		}
	}); err != nil {
		log.Errorw("invalid token sweep schedule", "schedule", cfg.Sync.TokenSweepCron, "error", err)
		os.Exit(1)
	}

	scheduler.Start()
	log.Infow("scheduler started",
		"sync_schedule", cfg.Sync.Schedule,
		"token_sweep_schedule", cfg.Sync.TokenSweepCron,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Infow("shutting down worker")
	<-scheduler.Stop().Done()
}

func runSync(syncUseCase *syncUsecases.SyncTicketsUseCase, lock *cache.SyncLock, log logger.Interface) {
	ctx := context.Background()

	acquired, err := lock.TryAcquire(ctx, workerLockHolder)
	if err != nil {
		log.Errorw("failed to acquire sync lock", "error", err)
		return
	}
	if !acquired {
		log.Warnw("skipping scheduled sync, another run holds the lock")
		return
	}
	defer func() {
		if err := lock.Release(ctx, workerLockHolder); err != nil {
			log.Errorw("failed to release sync lock", "error", err)
		}
	}()

	stats, err := syncUseCase.Execute(ctx)
	if err != nil {
		log.Errorw("scheduled sync failed", "error", err)
		return
	}
	log.Infow("scheduled sync completed",
		"companies_processed", stats.CompaniesProcessed,
		"tickets_added", stats.TicketsAdded,
		"tickets_updated", stats.TicketsUpdated,
		"errors", len(stats.Errors),
	)
}
