package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/simple-caption-pipeline/internal/workflows"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// HandleProcessAsync handles POST /v1/process - enqueues a durable run and returns immediately
func (h *Handler) HandleProcessAsync(w http.ResponseWriter, r *http.Request) {
	var req pipeline.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	if req.Job == "" {
		writeError(w, http.StatusBadRequest, "job is required")
		return
	}
	if req.Job != pipeline.JobTranslate && req.ContentID == "" {
		writeError(w, http.StatusBadRequest, "content_id is required")
		return
	}

	h.logger.Infof("Enqueueing workflow: content_id=%s, job=%s", req.ContentID, req.Job)

	runID, err := h.runner.RunAsync(r.Context(), req)
	if err != nil {
		h.logger.Errorf("Failed to enqueue workflow: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to enqueue workflow: %v", err))
		return
	}

	h.logger.Infof("Workflow enqueued successfully: run_id=%s", runID)
	writeJSON(w, http.StatusAccepted, pipeline.ProcessResponse{RunID: runID})
}

// HandleStatus handles GET /v1/runs/{runID}
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if runID == "" {
		writeError(w, http.StatusBadRequest, "run_id is required")
		return
	}

	status, err := h.runner.GetStatus(r.Context(), runID)
	if errors.Is(err, workflows.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "Workflow not found")
		return
	}
	if err != nil {
		h.logger.Errorf("Failed to get workflow status: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get workflow status: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, status)
}
