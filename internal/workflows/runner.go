package workflows

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dbos-inc/dbos-transact-golang/dbos"
	"go.uber.org/zap"

	"github.com/tendant/simple-caption-pipeline/internal/dbosruntime"
	"github.com/tendant/simple-caption-pipeline/internal/logging"
	"github.com/tendant/simple-caption-pipeline/internal/metrics"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// WorkflowRunner executes workflows
type WorkflowRunner struct {
	workflows   map[string]Workflow
	dbosRuntime *dbosruntime.Runtime
	ledger      RunRecorder
	logger      *zap.SugaredLogger
}

// NewWorkflowRunner creates a new workflow runner. dbosRuntime may be nil for
// synchronous-only use (CLI, web form).
func NewWorkflowRunner(dbosRuntime *dbosruntime.Runtime, logger *zap.SugaredLogger) *WorkflowRunner {
	runner := &WorkflowRunner{
		workflows:   make(map[string]Workflow),
		dbosRuntime: dbosRuntime,
		logger:      logging.OrNop(logger),
	}

	// Register the DBOS workflow function
	if dbosRuntime != nil {
		dbos.RegisterWorkflow(dbosRuntime.Context(), runner.executeWorkflowDBOS)
	}

	return runner
}

// WithLedger records every finished run in l
func (r *WorkflowRunner) WithLedger(l RunRecorder) *WorkflowRunner {
	r.ledger = l
	return r
}

// Register registers a workflow
func (r *WorkflowRunner) Register(job string, workflow Workflow) {
	r.workflows[job] = workflow
}

// Jobs returns the registered job names
func (r *WorkflowRunner) Jobs() []string {
	jobs := make([]string, 0, len(r.workflows))
	for job := range r.workflows {
		jobs = append(jobs, job)
	}
	return jobs
}

// Run executes a workflow for the given job type synchronously
func (r *WorkflowRunner) Run(wctx *WorkflowContext) (*WorkflowResult, error) {
	workflow, ok := r.workflows[wctx.Request.Job]
	if !ok {
		return &WorkflowResult{
			Success: false,
			Error:   ErrWorkflowNotFound,
		}, ErrWorkflowNotFound
	}

	result, err := workflow.Execute(wctx)
	r.finish(wctx, result, err)
	return result, err
}

// finish records metrics and the ledger row for a completed run
func (r *WorkflowRunner) finish(wctx *WorkflowContext, result *WorkflowResult, err error) {
	if result == nil {
		metrics.RunsTotal.WithLabelValues(wctx.Request.Job, "failed").Inc()
		return
	}

	outcome := "succeeded"
	switch {
	case err != nil:
		outcome = "failed"
	case !result.Success:
		outcome = "halted"
	}
	metrics.RunsTotal.WithLabelValues(wctx.Request.Job, outcome).Inc()
	if result.Report.Halt != "" {
		metrics.HaltsTotal.WithLabelValues(result.Report.Halt).Inc()
	}

	if r.ledger == nil {
		return
	}
	// Record even when the request context was canceled
	ctx, cancel := context.WithTimeout(context.WithoutCancel(wctx.Ctx), 5*time.Second)
	defer cancel()
	if lerr := r.ledger.Record(ctx, result.Report); lerr != nil {
		r.logger.Warnf("[%s] Failed to record run: %v", wctx.RunID, lerr)
	}
}

// RunAsync enqueues a workflow for async execution via DBOS
func (r *WorkflowRunner) RunAsync(ctx context.Context, req pipeline.ProcessRequest) (string, error) {
	if r.dbosRuntime == nil {
		return "", errors.New("DBOS runtime not initialized")
	}

	// The workflow ID gives exactly-once semantics
	_, opts := r.dbosRuntime.EnqueueOptions(req, time.Now())

	// Enqueue workflow with DBOS (generic function with type parameters)
	handle, err := dbos.RunWorkflow[pipeline.ProcessRequest, pipeline.RunReport](
		r.dbosRuntime.Context(),
		r.executeWorkflowDBOS,
		req,
		opts...,
	)
	if err != nil {
		return "", err
	}

	return handle.GetWorkflowID(), nil
}

// executeWorkflowDBOS is the DBOS workflow function that wraps registered
// workflows. It returns the serializable report only.
func (r *WorkflowRunner) executeWorkflowDBOS(dbosCtx dbos.DBOSContext, req pipeline.ProcessRequest) (pipeline.RunReport, error) {
	// Get workflow ID from DBOS context
	workflowID, err := dbosCtx.GetWorkflowID()
	if err != nil {
		return pipeline.RunReport{Job: req.Job}, err
	}

	// DBOSContext implements context.Context
	wctx := &WorkflowContext{
		Ctx:     dbosCtx,
		Request: req,
		RunID:   workflowID,
	}

	result, err := r.Run(wctx)
	if result == nil {
		return pipeline.RunReport{RunID: workflowID, Job: req.Job}, err
	}
	return result.Report, err
}

// GetStatus retrieves the status of a workflow execution from DBOS and the
// run ledger
func (r *WorkflowRunner) GetStatus(ctx context.Context, runID string) (*pipeline.RunStatus, error) {
	if r.dbosRuntime == nil && r.ledger == nil {
		return nil, errors.New("status tracking requires DBOS runtime or a run ledger")
	}

	status := &pipeline.RunStatus{RunID: runID}

	if r.dbosRuntime != nil {
		info, err := r.dbosRuntime.GetWorkflowStatus(ctx, runID)
		if err != nil {
			r.logger.Debugf("[%s] No DBOS status: %v", runID, err)
		} else {
			status.State = strings.ToLower(info.Status)
		}
	}

	if r.ledger != nil {
		report, err := r.ledger.Get(ctx, runID)
		if err != nil {
			return nil, err
		}
		if report != nil {
			status.Report = report
			if status.State == "" {
				status.State = "completed"
			}
		}
	}

	if status.State == "" {
		return nil, ErrRunNotFound
	}
	return status, nil
}
