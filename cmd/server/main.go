package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/godeposit/internal/adapter/calendar"
	httpAdapter "github.com/iho/godeposit/internal/adapter/http"
	"github.com/iho/godeposit/internal/adapter/http/handler"
	"github.com/iho/godeposit/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/godeposit/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/godeposit/internal/adapter/repository/redis"
	"github.com/iho/godeposit/internal/infrastructure/clock"
	"github.com/iho/godeposit/internal/infrastructure/config"
	"github.com/iho/godeposit/internal/infrastructure/journalrelay"
	"github.com/iho/godeposit/internal/infrastructure/logger"
	"github.com/iho/godeposit/internal/infrastructure/metrics"
	"github.com/iho/godeposit/internal/infrastructure/postgres"
	"github.com/iho/godeposit/internal/infrastructure/redis"
	"github.com/iho/godeposit/internal/usecase"
)

const migrationsPath = "migrations"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "godeposit",
	})

	ctx := context.Background()

	if err := postgres.RunMigrations(log, cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns, cfg.DatabaseTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transferRepo := postgresRepo.NewTransferRepository(pool)
	journalRepo := postgresRepo.NewJournalOutboxRepository(pool)
	holidayRepo := postgresRepo.NewHolidayRepository(pool)
	currencyRepo := postgresRepo.NewCurrencyRepository(pool)
	retrier := postgresRepo.NewRetrier(log)
	idGen := postgresRepo.NewULIDGenerator()
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)

	calendarSvc := calendar.NewService(cfg.WeekendDays, holidayRepo, cache, cfg.CalendarCacheTTL)
	clk := clock.System{}

	// Use cases
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, journalRepo, currencyRepo, idGen, clk, retrier)
	transactionUC := usecase.NewTransactionUseCase(txManager, accountRepo, journalRepo, calendarSvc, idGen, clk, retrier)
	interestUC := usecase.NewInterestUseCase(txManager, accountRepo, journalRepo, idGen, clk, retrier)
	chargeUC := usecase.NewChargeUseCase(txManager, accountRepo, journalRepo, calendarSvc, idGen, clk, retrier)
	transferUC := usecase.NewTransferUseCase(txManager, accountRepo, transferRepo, journalRepo, idGen, clk, retrier)

	// HTTP
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC, accountUC),
		InterestHandler:    handler.NewInterestHandler(interestUC, accountUC),
		ChargeHandler:      handler.NewChargeHandler(chargeUC, accountUC),
		TransferHandler:    handler.NewTransferHandler(transferUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:   idempotencyStore,
		RateLimiter:        middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	// Journal outbox relay
	relay := journalrelay.NewRelay(journalrelay.Config{
		Outbox:    journalRepo,
		Poster:    journalrelay.NewLogPoster(log),
		Logger:    log,
		BatchSize: cfg.RelayBatchSize,
		Interval:  cfg.RelayInterval,
	})
	go func() {
		if err := relay.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("journal relay stopped")
		}
	}()

	if cfg.BatchJobsEnabled {
		go runBatchJobs(workerCtx, log, m, cfg, interestUC, chargeUC)
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// interestBatchRunner is the slice of InterestUseCase the batch cycle
// needs.
type interestBatchRunner interface {
	PostInterestForAccounts(ctx context.Context, upTo time.Time) (usecase.BatchResult, error)
	UpdateMaturedAccounts(ctx context.Context, asOf time.Time) (usecase.BatchResult, error)
}

// chargeBatchRunner is the slice of ChargeUseCase the batch cycle needs.
type chargeBatchRunner interface {
	ApplyChargesDueForAccounts(ctx context.Context, asOf time.Time) (usecase.BatchResult, error)
}

// runBatchJobs runs the nightly processing cycle: post due interest,
// collect due charges, refresh maturity state.
func runBatchJobs(
	ctx context.Context,
	log zerolog.Logger,
	m *metrics.Metrics,
	cfg *config.Config,
	interestUC interestBatchRunner,
	chargeUC chargeBatchRunner,
) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(cfg.BatchStartupDelay):
	}

	ticker := time.NewTicker(cfg.BatchInterval)
	defer ticker.Stop()

	for {
		runBatchCycle(ctx, log, m, interestUC, chargeUC)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func runBatchCycle(
	ctx context.Context,
	log zerolog.Logger,
	m *metrics.Metrics,
	interestUC interestBatchRunner,
	chargeUC chargeBatchRunner,
) {
	jobs := []struct {
		name string
		run  func(context.Context) (usecase.BatchResult, error)
	}{
		{"post_interest", func(ctx context.Context) (usecase.BatchResult, error) {
			return interestUC.PostInterestForAccounts(ctx, time.Time{})
		}},
		{"apply_charges", func(ctx context.Context) (usecase.BatchResult, error) {
			return chargeUC.ApplyChargesDueForAccounts(ctx, time.Time{})
		}},
		{"update_matured", func(ctx context.Context) (usecase.BatchResult, error) {
			return interestUC.UpdateMaturedAccounts(ctx, time.Time{})
		}},
	}

	for _, job := range jobs {
		start := time.Now()
		result, err := job.run(ctx)
		m.BatchDuration.WithLabelValues(job.name).Observe(time.Since(start).Seconds())

		if err != nil {
			m.BatchRuns.WithLabelValues(job.name, "error").Inc()
			log.Error().Err(err).Str("job", job.name).Msg("batch job failed")
			continue
		}

		m.BatchRuns.WithLabelValues(job.name, "ok").Inc()
		m.BatchFailures.WithLabelValues(job.name).Add(float64(result.Failed()))
		log.Info().
			Str("job", job.name).
			Int("processed", result.Processed).
			Int("succeeded", result.Succeeded).
			Int("failed", result.Failed()).
			Msg("batch job completed")
	}
}
