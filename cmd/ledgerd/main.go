package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/himanshudhami/InvoiceX-sub009/internal/adapters/database/pgsql"
	portssvc "github.com/himanshudhami/InvoiceX-sub009/internal/core/ports/services"
	"github.com/himanshudhami/InvoiceX-sub009/internal/core/services"
	"github.com/himanshudhami/InvoiceX-sub009/internal/handlers"
	"github.com/himanshudhami/InvoiceX-sub009/internal/middleware"
	"github.com/himanshudhami/InvoiceX-sub009/pkg/config"
	"github.com/himanshudhami/InvoiceX-sub009/pkg/database"
)

// @title Ledger Posting Engine API
// @version 1.0
// @description Rule-driven double-entry posting engine: chart of accounts, idempotent posting, reversals and reporting.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		logger.Error("Failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	container, worker := buildServices(dbPool, cfg, logger)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container, dbPool)

	// The outbox worker drains queued posting requests for the lifetime of
	// the process.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(workerCtx)
	}()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
	}

	stopWorker()
	<-workerDone
	logger.Info("Server exited")
}

// buildServices wires the repository and service graph.
func buildServices(dbPool *pgxpool.Pool, cfg *config.Config, logger *slog.Logger) (*portssvc.ServiceContainer, *services.PostingWorker) {
	accountRepo := pgsql.NewPgxAccountRepository(dbPool)
	journalRepo := pgsql.NewPgxJournalRepository(dbPool, accountRepo)
	ruleRepo := pgsql.NewPgxRuleRepository(dbPool)
	outboxRepo := pgsql.NewPgxOutboxRepository(dbPool)
	reportingRepo := pgsql.NewPgxReportingRepository(dbPool)

	accountService := services.NewAccountService(accountRepo, cfg.AccountCacheTTL)
	postingService := services.NewPostingService(journalRepo, ruleRepo, accountService)

	container := &portssvc.ServiceContainer{
		Account:   accountService,
		Posting:   postingService,
		Reversal:  services.NewReversalService(journalRepo, accountRepo),
		Journal:   services.NewJournalService(journalRepo),
		Rule:      services.NewRuleService(ruleRepo),
		Outbox:    services.NewOutboxService(outboxRepo),
		Reporting: services.NewReportingService(reportingRepo),
	}

	worker := services.NewPostingWorker(outboxRepo, postingService, logger, services.PostingWorkerConfig{
		PollInterval: cfg.OutboxPollInterval,
		BatchSize:    cfg.OutboxBatchSize,
		MaxAttempts:  cfg.OutboxMaxAttempts,
	})

	return container, worker
}

// runMigrations applies all pending "up" migrations using a short-lived
// database/sql connection.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
