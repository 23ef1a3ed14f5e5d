package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"opticpos/internal/config"
	"opticpos/internal/infra"
	"opticpos/internal/ledger"
	"opticpos/internal/repository"
	"opticpos/internal/router"
	"opticpos/internal/service"
	"opticpos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Shared state: the in-memory ledger and the breaker guarding the
	// remote reporting store. Both the HTTP layer and the worker pool
	// operate on these same instances.
	store := ledger.NewStore()
	remoteCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	recordRepo := repository.NewRecordRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	reportSvc := service.NewReportService(recordRepo, summaryRepo)

	workerHandlers := &worker.WorkerHandlers{
		LedgerSync: worker.NewLedgerSyncWorker(store, recordRepo, reportSvc, remoteCB, rdb, cfg.LocationID),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)
	worker.StartRetryCron(ctx, worker.RetryCronConfig{
		RDB:          rdb,
		CB:           remoteCB,
		TickInterval: time.Duration(cfg.RetryCronSeconds) * time.Second,
	})

	r := router.New(cfg, db, rdb, store, remoteCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("opticpos backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
