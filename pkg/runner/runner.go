// Package runner embeds the durable caption pipeline in another Go program.
// Runner executes runs in-process; Client only enqueues them for workers.
package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tendant/simple-caption-pipeline/internal/bootstrap"
	"github.com/tendant/simple-caption-pipeline/internal/config"
	"github.com/tendant/simple-caption-pipeline/internal/dbosruntime"
	"github.com/tendant/simple-caption-pipeline/internal/logging"
	"github.com/tendant/simple-caption-pipeline/internal/workflows"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// Config holds the configuration for initializing the pipeline runner.
// Provider credentials are read from the environment like the binaries do.
type Config struct {
	DatabaseURL        string // DBOS PostgreSQL connection string
	AppName            string // Application name for DBOS
	QueueName          string // DBOS queue name
	Concurrency        int    // Number of concurrent workers
	StartsPerMinute    int    // Optional: cap on run starts per minute, 0 is unlimited
	ContentAPIURL      string // URL of the content API server
	ApplicationVersion string // Optional: Override binary hash for version matching
	Logger             *zap.SugaredLogger
}

func (c Config) dbos() dbosruntime.Config {
	return dbosruntime.Config{
		DatabaseURL:        c.DatabaseURL,
		AppName:            c.AppName,
		QueueName:          c.QueueName,
		Concurrency:        c.Concurrency,
		StartsPerMinute:    c.StartsPerMinute,
		ApplicationVersion: c.ApplicationVersion,
	}
}

// Runner provides a high-level API for running pipeline workflows via DBOS
type Runner struct {
	runtime *dbosruntime.Runtime
	runner  *workflows.WorkflowRunner
	content *bootstrap.Content
}

// New creates and initializes a new pipeline runner with DBOS integration
func New(ctx context.Context, cfg Config) (*Runner, error) {
	logger := logging.OrNop(cfg.Logger)

	pcfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.ContentAPIURL != "" {
		pcfg.Content.APIURL = cfg.ContentAPIURL
	}

	content, err := bootstrap.OpenContent(pcfg, logger)
	if err != nil {
		return nil, err
	}

	components, err := bootstrap.Build(ctx, pcfg, bootstrap.Needs{Caption: true, Translate: true, Speech: true}, logger)
	if err != nil {
		content.Close()
		return nil, err
	}
	svc := components.Services()
	svc.Images = content.Reader
	svc.Derived = content.Writer

	dbosRuntime, err := dbosruntime.NewRuntime(ctx, cfg.dbos(), logger)
	if err != nil {
		content.Close()
		return nil, fmt.Errorf("failed to initialize DBOS: %w", err)
	}

	workflowRunner := workflows.NewWorkflowRunner(dbosRuntime, logger)
	workflowRunner.Register(pipeline.JobNarrate, workflows.NewNarrateWorkflow(svc, pcfg.MaxLanguageAttempts))
	workflowRunner.Register(pipeline.JobCaption, workflows.NewCaptionWorkflow(svc))

	// Launch DBOS (must be after workflow registration)
	if err := dbosRuntime.Launch(); err != nil {
		content.Close()
		return nil, fmt.Errorf("failed to launch DBOS: %w", err)
	}

	return &Runner{
		runtime: dbosRuntime,
		runner:  workflowRunner,
		content: content,
	}, nil
}

// RunNarrate enqueues a caption, translate and speak run for a stored image
func (r *Runner) RunNarrate(ctx context.Context, contentID, languageCode string) (string, error) {
	return r.runner.RunAsync(ctx, narrateRequest(contentID, languageCode))
}

// RunCaption enqueues a caption-only run for a stored image
func (r *Runner) RunCaption(ctx context.Context, contentID string) (string, error) {
	return r.runner.RunAsync(ctx, captionRequest(contentID))
}

// Status returns the durable state of a run
func (r *Runner) Status(ctx context.Context, runID string) (*pipeline.RunStatus, error) {
	return r.runner.GetStatus(ctx, runID)
}

// Shutdown gracefully shuts down the pipeline runner
func (r *Runner) Shutdown(timeout time.Duration) {
	if r.runtime != nil {
		r.runtime.Shutdown(timeout)
	}
	if r.content != nil {
		r.content.Close()
	}
}

func narrateRequest(contentID, languageCode string) pipeline.ProcessRequest {
	return pipeline.ProcessRequest{
		ContentID:    contentID,
		Job:          pipeline.JobNarrate,
		LanguageCode: languageCode,
	}
}

func captionRequest(contentID string) pipeline.ProcessRequest {
	return pipeline.ProcessRequest{
		ContentID: contentID,
		Job:       pipeline.JobCaption,
	}
}
