package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking-finance-engine/config"
	httpHandler "booking-finance-engine/internal/adapter/http/handler"
	memStorage "booking-finance-engine/internal/adapter/storage/memory"
	pgStorage "booking-finance-engine/internal/adapter/storage/postgres"
	redisStorage "booking-finance-engine/internal/adapter/storage/redis"
	"booking-finance-engine/internal/core/ports"
	"booking-finance-engine/internal/service"
	"booking-finance-engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Storage.Driver).
		Str("base_currency", cfg.Currency.Base).
		Msg("Starting Booking Finance Engine")

	ctx := context.Background()

	// Initialize transaction store per the configured driver
	var (
		store          ports.TransactionStore
		healthCheckers []ports.HealthChecker
	)
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		if err := pgStorage.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare ledger schema")
		}
		store = pgStorage.NewTransactionStore(pool)
		healthCheckers = append(healthCheckers, pgStorage.NewHealthCheck(pool))
	default:
		memStore := memStorage.NewTransactionStore()
		store = memStore
		healthCheckers = append(healthCheckers, memStore)
		log.Warn().Msg("Using in-memory store; the ledger will not survive a restart")
	}

	// Optional Redis idempotency fast path
	var cache ports.IdempotencyCache
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		cache = redisStorage.NewIdempotencyCache(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	}

	// Initialize core services
	rateSvc := service.NewRateService(cfg.Currency)
	pricingSvc := service.NewPricingService(rateSvc, cfg.Commission)
	ledgerSvc := service.NewLedgerService(store, cache, log)
	reportingSvc := service.NewReportingService(store)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		RateSvc:        rateSvc,
		PricingSvc:     pricingSvc,
		LedgerSvc:      ledgerSvc,
		ReportingSvc:   reportingSvc,
		HealthCheckers: healthCheckers,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
