package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/tendant/simple-caption-pipeline/internal/dbosruntime"
	"github.com/tendant/simple-caption-pipeline/internal/logging"
	"github.com/tendant/simple-caption-pipeline/internal/workflows"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// Client provides a client-only API for starting workflows without executing them.
// Workers must be running separately to execute the enqueued workflows.
type Client struct {
	runtime *dbosruntime.Runtime
	runner  *workflows.WorkflowRunner
}

// NewClient creates a client that can start workflows but doesn't execute them
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	logger := logging.OrNop(cfg.Logger)

	dbosRuntime, err := dbosruntime.NewRuntime(ctx, cfg.dbos(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize DBOS: %w", err)
	}

	// No jobs registered: enqueued runs are executed by workers
	workflowRunner := workflows.NewWorkflowRunner(dbosRuntime, logger)

	if err := dbosRuntime.Launch(); err != nil {
		return nil, fmt.Errorf("failed to launch DBOS: %w", err)
	}

	return &Client{
		runtime: dbosRuntime,
		runner:  workflowRunner,
	}, nil
}

// RunNarrate enqueues a narrate run for workers to execute
func (c *Client) RunNarrate(ctx context.Context, contentID, languageCode string) (string, error) {
	return c.runner.RunAsync(ctx, narrateRequest(contentID, languageCode))
}

// RunCaption enqueues a caption run for workers to execute
func (c *Client) RunCaption(ctx context.Context, contentID string) (string, error) {
	return c.runner.RunAsync(ctx, captionRequest(contentID))
}

// Status returns the durable state of a run
func (c *Client) Status(ctx context.Context, runID string) (*pipeline.RunStatus, error) {
	return c.runner.GetStatus(ctx, runID)
}

// Shutdown gracefully shuts down the client
func (c *Client) Shutdown(timeout time.Duration) {
	if c.runtime != nil {
		c.runtime.Shutdown(timeout)
	}
}
