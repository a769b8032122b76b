package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storelake/fakestore-etl/internal/config"
	"github.com/storelake/fakestore-etl/internal/fetcher/fakestore"
	"github.com/storelake/fakestore-etl/internal/ingest"
	"github.com/storelake/fakestore-etl/internal/platform/sqlite"
	bronzerepo "github.com/storelake/fakestore-etl/internal/repository/bronze"
	ledgerrepo "github.com/storelake/fakestore-etl/internal/repository/ledger"
	"github.com/storelake/fakestore-etl/internal/runner"
	"github.com/storelake/fakestore-etl/internal/server"
)

func main() {
	cfg := config.Load()

	// Root context: cancelled on SIGINT/SIGTERM so in-flight ingestion runs
	// stop promptly during graceful shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Open database
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// Repositories
	bronzeRepo := bronzerepo.NewRepository(db.DB)
	ledgerRepo := ledgerrepo.NewRepository(db.DB)

	// Upstream client and ingestion engine
	client := fakestore.New(
		fakestore.WithBaseURL(cfg.BaseURL),
		fakestore.WithTimeout(cfg.FetchTimeout),
	)
	engine := ingest.NewEngine(bronzeRepo, client, cfg.SourceSystem)
	run := runner.New(engine, ledgerRepo, cfg.SourceSystem)

	if cfg.RunOnStart {
		go func() {
			if err := run.RunAll(rootCtx); err != nil {
				slog.Error("startup ingestion run failed", "error", err)
			}
		}()
	}

	// Optional built-in scheduler; interval 0 means runs are triggered
	// externally through POST /api/v1/runs.
	sched := runner.NewIntervalScheduler(cfg.RunInterval)
	if err := sched.Start(rootCtx, func(time.Time) {
		if err := run.RunAll(rootCtx); err != nil {
			slog.Error("scheduled ingestion run failed", "error", err)
		}
	}); err != nil {
		slog.Error("failed to start scheduler", "error", err)
	}

	// HTTP server — rootCtx is used as BaseContext so request contexts and
	// triggered runs are cancelled on shutdown.
	srv := server.New(rootCtx, cfg.Port, run, ledgerRepo, bronzeRepo)

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("server started", "port", cfg.Port, "baseURL", cfg.BaseURL)
	<-done

	// Cancel root context first so in-flight runs begin winding down.
	rootCancel()
	_ = sched.Stop(context.Background())

	// Then drain connections with a deadline.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
