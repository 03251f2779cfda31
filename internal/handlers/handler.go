// Package handlers is the request/response surface of the pipeline: the
// translate form, JSON endpoints for each job and the durable run API.
package handlers

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tendant/simple-caption-pipeline/internal/languages"
	"github.com/tendant/simple-caption-pipeline/internal/logging"
	"github.com/tendant/simple-caption-pipeline/internal/workflows"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// Runner executes pipeline jobs
type Runner interface {
	Run(wctx *workflows.WorkflowContext) (*workflows.WorkflowResult, error)
	RunAsync(ctx context.Context, req pipeline.ProcessRequest) (string, error)
	GetStatus(ctx context.Context, runID string) (*pipeline.RunStatus, error)
}

// Catalog serves and refreshes the language catalog
type Catalog interface {
	Get(ctx context.Context) (*languages.Catalog, error)
	Refresh(ctx context.Context) (*languages.Catalog, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	runner   Runner
	catalog  Catalog
	uploader Uploader
	details  ContentDetails
	history  RunHistory
	logger   *zap.SugaredLogger
	maxImage int64
}

// New creates the HTTP handlers
func New(runner Runner, catalog Catalog, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		runner:   runner,
		catalog:  catalog,
		logger:   logging.OrNop(logger),
		maxImage: 20 << 20,
	}
}

// run executes a job synchronously under a fresh run ID
func (h *Handler) run(ctx context.Context, req pipeline.ProcessRequest, image []byte) (*workflows.WorkflowResult, error) {
	runID := uuid.New().String()
	h.logger.Infof("[%s] Processing request: job=%s", runID, req.Job)

	return h.runner.Run(&workflows.WorkflowContext{
		Ctx:     ctx,
		Request: req,
		RunID:   runID,
		Image:   image,
	})
}
