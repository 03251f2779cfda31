// Command translate-web serves the text translation form and its JSON API.
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
	"github.com/tendant/simple-caption-pipeline/internal/handlers"
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
		logger.Fatalf("translate-web: %v", err)
	}
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	metrics.Register()

	components, err := bootstrap.Build(context.Background(), cfg, bootstrap.Needs{Translate: true}, logger)
	if err != nil {
		return err
	}

	runner := workflows.NewWorkflowRunner(nil, logger)
	runner.Register(pipeline.JobTranslate, workflows.NewTranslateWorkflow(components.Services()))
	logger.Infof("✓ Registered workflow for jobs: %v", runner.Jobs())

	h := handlers.New(runner, components.Catalog, logger)
	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: h.Routes(handlers.RouteOptions{
			RateLimitPerMinute: cfg.RateLimitPerMinute,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Translate form ready on %s", cfg.HTTPAddr)
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	logger.Info("Server stopped")
	return nil
}
