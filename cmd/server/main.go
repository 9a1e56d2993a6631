package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/splitledger/internal/adapter/http"
	"github.com/iho/splitledger/internal/adapter/http/handler"
	"github.com/iho/splitledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/splitledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/splitledger/internal/adapter/repository/redis"
	sqliteRepo "github.com/iho/splitledger/internal/adapter/repository/sqlite"
	"github.com/iho/splitledger/internal/infrastructure/auth"
	"github.com/iho/splitledger/internal/infrastructure/config"
	"github.com/iho/splitledger/internal/infrastructure/eventpublisher"
	"github.com/iho/splitledger/internal/infrastructure/logger"
	"github.com/iho/splitledger/internal/infrastructure/metrics"
	"github.com/iho/splitledger/internal/infrastructure/postgres"
	"github.com/iho/splitledger/internal/infrastructure/redis"
	"github.com/iho/splitledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil {
		l.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, l zerolog.Logger) error {
	store, err := openStorage(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer store.close()

	var redisClient *goredis.Client
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		l.Info().Msg("connected to redis")
	}

	app := newApplication(cfg, l, store, redisClient, metrics.New(), promhttp.Handler())

	go func() {
		if err := app.publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			l.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	go app.cleanupLimiters(ctx, time.Minute)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	l.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	l.Info().Msg("server stopped")

	return nil
}

// storage is one backend's implementation of the ledger's persistence ports.
type storage struct {
	txManager usecase.TxManager
	users     usecase.UserRepository
	balances  usecase.BalanceStore
	log       usecase.TransactionLog
	expenses  usecase.ExpenseRepository
	outbox    usecase.OutboxRepository
	retrier   usecase.Retrier
	checker   handler.ReadinessCheck
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, l zerolog.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		db, err := sqliteRepo.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		l.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite database")

		return &storage{
			txManager: sqliteRepo.NewTxManager(db),
			users:     sqliteRepo.NewUserRepository(db),
			balances:  sqliteRepo.NewBalanceStore(db),
			log:       sqliteRepo.NewTransactionLog(db),
			expenses:  sqliteRepo.NewExpenseRepository(db),
			outbox:    sqliteRepo.NewOutboxRepository(db),
			retrier:   sqliteRepo.NewRetrier(cfg.LedgerMaxRetries, l),
			checker:   sqliteRepo.NewChecker(db),
			close:     func() { db.Close() },
		}, nil

	default:
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, l).Up(); err != nil {
			return nil, err
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		l.Info().Msg("connected to postgres")

		return &storage{
			txManager: postgresRepo.NewTxManager(pool, cfg.DatabaseLockTimeout),
			users:     postgresRepo.NewUserRepository(pool),
			balances:  postgresRepo.NewBalanceStore(pool),
			log:       postgresRepo.NewTransactionLog(pool),
			expenses:  postgresRepo.NewExpenseRepository(pool),
			outbox:    postgresRepo.NewOutboxRepository(pool),
			retrier:   postgresRepo.NewRetrier(cfg.LedgerMaxRetries, l),
			checker:   postgres.NewChecker(pool),
			close:     pool.Close,
		}, nil
	}
}

type application struct {
	handler     http.Handler
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	logger      zerolog.Logger
}

// newApplication wires use cases and the HTTP surface on top of store.
// redisClient may be nil, in which case caching and idempotency are off
// and outbox events are only logged.
func newApplication(
	cfg *config.Config,
	l zerolog.Logger,
	store *storage,
	redisClient *goredis.Client,
	m *metrics.Metrics,
	metricsHandler http.Handler,
) *application {
	var (
		cache       usecase.Cache
		idempotency usecase.IdempotencyStore
	)

	var publisher eventpublisher.Publisher = eventpublisher.NewLogPublisher(l)
	checks := []handler.ReadinessCheck{store.checker}

	if redisClient != nil {
		cache = redisRepo.NewCache(redisClient)
		idempotency = redisRepo.NewIdempotencyStore(redisClient)
		publisher = redisRepo.NewStreamPublisher(redisClient, cfg.OutboxStream, cfg.OutboxStreamLen)
		checks = append(checks, redis.NewChecker(redisClient))
	}

	ids := postgresRepo.NewULIDGenerator()

	engine := usecase.NewLedgerEngine(usecase.LedgerEngineConfig{
		TxManager: store.txManager,
		Balances:  store.balances,
		Log:       store.log,
		Expenses:  store.expenses,
		IDGen:     ids,
		Outbox:    store.outbox,
		Retrier:   store.retrier,
		Cache:     cache,
		CacheTTL:  cfg.BalanceCacheTTL,
		Metrics:   m,
	})

	userUC := usecase.NewUserUseCase(store.users, ids)
	expenseUC := usecase.NewExpenseUseCase(engine, store.expenses, store.log, store.users)
	settlementUC := usecase.NewSettlementUseCase(engine, store.users)
	balanceUC := usecase.NewBalanceUseCase(store.balances, cache, cfg.BalanceCacheTTL)
	transactionUC := usecase.NewTransactionUseCase(store.log)
	ledgerUC := usecase.NewLedgerUseCase(store.balances)
	reconUC := usecase.NewReconciliationUseCase(store.balances, store.log)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		Logger:            l,
		Metrics:           m,
		MetricsHandler:    metricsHandler,
		RateLimiter:       rateLimiter,
		IdempotencyStore:  idempotency,
		IdempotencyTTL:    cfg.IdempotencyTTL,
		TokenVerifier:     jwtManager,
		AuthHandler:       handler.NewAuthHandler(userUC, jwtManager, m),
		ExpenseHandler:    handler.NewExpenseHandler(expenseUC),
		SettlementHandler: handler.NewSettlementHandler(settlementUC),
		UserHandler:       handler.NewUserHandler(userUC, balanceUC, transactionUC),
		LedgerHandler:     handler.NewLedgerHandler(ledgerUC, reconUC),
		HealthHandler:     handler.NewHealthHandler(checks...),
	})

	return &application{
		handler: router,
		publisher: eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: store.outbox,
			Publisher:  publisher,
			Recorder:   m,
			Logger:     l,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
			Retention:  cfg.OutboxRetention,
		}),
		rateLimiter: rateLimiter,
		logger:      l,
	}
}

// cleanupLimiters drops idle per-client limiters until ctx is cancelled.
func (a *application) cleanupLimiters(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.rateLimiter.CleanupLimiters(10 * every); n > 0 {
				a.logger.Debug().Int("removed", n).Msg("cleaned up idle rate limiters")
			}
		}
	}
}
