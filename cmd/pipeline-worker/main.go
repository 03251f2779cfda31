// Command pipeline-worker executes caption and narrate runs durably through
// DBOS for images stored in simple-content, and serves the full HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tendant/simple-caption-pipeline/internal/bootstrap"
	"github.com/tendant/simple-caption-pipeline/internal/config"
	"github.com/tendant/simple-caption-pipeline/internal/dbosruntime"
	"github.com/tendant/simple-caption-pipeline/internal/handlers"
	"github.com/tendant/simple-caption-pipeline/internal/ledger"
	"github.com/tendant/simple-caption-pipeline/internal/logging"
	"github.com/tendant/simple-caption-pipeline/internal/metrics"
	"github.com/tendant/simple-caption-pipeline/internal/workflows"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := logging.New(cfg.Dev)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatalf("pipeline-worker: %v", err)
	}
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	ctx := context.Background()
	metrics.Register()

	// Source images and derived audio live in simple-content
	content, err := bootstrap.OpenContent(cfg, logger)
	if err != nil {
		return err
	}
	defer content.Close()

	components, err := bootstrap.Build(ctx, cfg, bootstrap.Needs{Caption: true, Translate: true, Speech: true}, logger)
	if err != nil {
		return err
	}
	svc := components.Services()
	svc.Images = content.Reader
	svc.Derived = content.Writer

	// Initialize DBOS runtime (required)
	dbosRuntime, err := dbosruntime.NewRuntime(ctx, dbosruntime.Config{
		DatabaseURL:        cfg.DBOS.DatabaseURL,
		AppName:            cfg.DBOS.AppName,
		QueueName:          cfg.DBOS.QueueName,
		Concurrency:        cfg.DBOS.Concurrency,
		StartsPerMinute:    cfg.DBOS.StartsPerMinute,
		ApplicationVersion: cfg.DBOS.ApplicationVersion,
	}, logger)
	if err != nil {
		return err
	}

	// Workflows must be registered before launch
	runner := workflows.NewWorkflowRunner(dbosRuntime, logger)
	runner.Register(pipeline.JobNarrate, workflows.NewNarrateWorkflow(svc, cfg.MaxLanguageAttempts))
	runner.Register(pipeline.JobCaption, workflows.NewCaptionWorkflow(svc))
	runner.Register(pipeline.JobTranslate, workflows.NewTranslateWorkflow(svc))
	logger.Infof("✓ Registered workflows for jobs: %v", runner.Jobs())

	var runLedger *ledger.Ledger
	if cfg.LedgerDatabaseURL != "" {
		runLedger, err = ledger.Open(ctx, cfg.LedgerDatabaseURL, logger)
		if err != nil {
			return err
		}
		defer runLedger.Close()
		runner.WithLedger(runLedger)
		logger.Info("✓ Run ledger enabled")
	}

	if err := dbosRuntime.Launch(); err != nil {
		return err
	}
	defer dbosRuntime.Shutdown(10 * time.Second)

	if counts, err := dbosRuntime.CountByStatus(ctx); err != nil {
		logger.Warnf("Failed to read workflow backlog: %v", err)
	} else {
		logger.Infof("Workflow backlog: %v", counts)
	}

	h := handlers.New(runner, components.Catalog, logger)
	if content.Upload != nil {
		h.WithUploader(content.Upload)
	}
	if content.Details != nil {
		h.WithContentDetails(content.Details)
	}
	if runLedger != nil {
		h.WithRunHistory(runLedger)
	}

	server := &http.Server{
		Addr: cfg.WorkerHTTPAddr,
		Handler: h.Routes(handlers.RouteOptions{
			RateLimitPerMinute: cfg.RateLimitPerMinute,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Pipeline worker starting on %s (content: %s)", cfg.WorkerHTTPAddr, content.Mode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}
