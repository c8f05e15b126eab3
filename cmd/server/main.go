package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/moneyledger/moneyledger/internal/adapter/http"
	"github.com/moneyledger/moneyledger/internal/adapter/http/handler"
	"github.com/moneyledger/moneyledger/internal/adapter/http/middleware"
	postgresRepo "github.com/moneyledger/moneyledger/internal/adapter/repository/postgres"
	redisRepo "github.com/moneyledger/moneyledger/internal/adapter/repository/redis"
	"github.com/moneyledger/moneyledger/internal/infrastructure/auth"
	"github.com/moneyledger/moneyledger/internal/infrastructure/config"
	"github.com/moneyledger/moneyledger/internal/infrastructure/eventpublisher"
	"github.com/moneyledger/moneyledger/internal/infrastructure/logger"
	"github.com/moneyledger/moneyledger/internal/infrastructure/metrics"
	"github.com/moneyledger/moneyledger/internal/infrastructure/notification"
	"github.com/moneyledger/moneyledger/internal/infrastructure/postgres"
	"github.com/moneyledger/moneyledger/internal/infrastructure/redis"
	"github.com/moneyledger/moneyledger/internal/usecase"
)

func main() {
	// .env is optional; real deployments configure the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "moneyledger-api"})
	log.Logger = appLogger

	if cfg.JWTSecret == "" {
		appLogger.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		URL:            cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
		appLogger.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	postingRepo := postgresRepo.NewPostingRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(appLogger)

	// Notifications
	var notifier usecase.Notifier
	var dispatcher *notification.Dispatcher
	if cfg.SMTPEnabled() {
		mailer := notification.NewSMTPMailer(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		dispatcher = notification.NewDispatcher(notification.DispatcherConfig{
			Accounts: accountRepo,
			Users:    userRepo,
			Mailer:   mailer,
			Logger:   appLogger,
			Metrics:  m,
		})
		notifier = dispatcher
	}

	// Use cases
	userUC := usecase.NewUserUseCase(userRepo, idGen)
	accountUC := usecase.NewAccountUseCase(accountRepo, idGen)
	ledgerUC := usecase.NewLedgerUseCase(postingRepo, accountRepo, cache, appLogger)
	transferUC := usecase.NewTransferUseCase(usecase.TransferUseCaseConfig{
		TxManager:       txManager,
		AccountRepo:     accountRepo,
		TransactionRepo: transactionRepo,
		PostingRepo:     postingRepo,
		OutboxRepo:      outboxRepo,
		IDGen:           idGen,
		Retrier:         retrier,
		Cache:           cache,
		Notifier:        notifier,
		Logger:          appLogger,
	})

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	// Outbox publisher
	var publisher eventpublisher.Publisher
	if cfg.KafkaEnabled() {
		kafkaPublisher := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		appLogger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("kafka publishing enabled")
	} else {
		publisher = eventpublisher.NewLogPublisher(appLogger)
	}

	outboxWorker := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  publisher,
		Logger:     appLogger,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollPeriod,
		Retention:  cfg.OutboxRetention,
	})

	go func() {
		if err := outboxWorker.Start(ctx); err != nil {
			appLogger.Error().Err(err).Msg("outbox publisher stopped")
		}
	}()

	if dispatcher != nil {
		go func() {
			if err := dispatcher.Start(ctx); err != nil {
				appLogger.Error().Err(err).Msg("notification dispatcher stopped")
			}
		}()
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:      handler.NewAuthHandler(userUC, jwtManager, m),
		AccountHandler:   handler.NewAccountHandler(accountUC, m),
		TransferHandler:  handler.NewTransferHandler(transferUC, m),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC, m),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		JWTManager:       jwtManager,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Metrics:          m,
		Logger:           appLogger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	// Stop the background workers after in-flight requests drain.
	cancel()

	appLogger.Info().Msg("server stopped")
}
