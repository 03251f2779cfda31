package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tendant/simple-caption-pipeline/internal/workflows"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// haltStatus maps how a run ended to an HTTP status: bad input is the
// caller's fault, an empty result is unprocessable, a failing remote
// service is a bad gateway.
func haltStatus(result *workflows.WorkflowResult, err error) int {
	switch {
	case result == nil:
		return http.StatusInternalServerError
	case result.Success:
		return http.StatusOK
	}

	switch {
	case pipeline.IsValidationError(result.Error):
		return http.StatusBadRequest
	case errors.Is(result.Error, pipeline.ErrNoCaption), errors.Is(result.Error, pipeline.ErrNoTranslation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workflows.ErrWorkflowNotFound):
		return http.StatusNotFound
	case pipeline.IsServiceError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
