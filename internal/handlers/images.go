package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/tendant/simple-caption-pipeline/internal/workflows"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

type captionResponse struct {
	RunID      string  `json:"run_id"`
	Caption    string  `json:"caption,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// readImage reads the multipart "image" field and its file name
func (h *Handler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImage)
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, workflows.MessageNoImage)
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read image: %v", err))
		return nil, "", false
	}
	return data, header.Filename, true
}

// HandleCaption handles POST /v1/caption - multipart image, returns its caption
func (h *Handler) HandleCaption(w http.ResponseWriter, r *http.Request) {
	image, _, ok := h.readImage(w, r)
	if !ok {
		return
	}

	result, err := h.run(r.Context(), pipeline.ProcessRequest{Job: pipeline.JobCaption}, image)
	status := haltStatus(result, err)
	if result == nil {
		writeError(w, status, fmt.Sprintf("Workflow execution failed: %v", err))
		return
	}

	resp := captionResponse{RunID: result.Report.RunID}
	if result.Success && result.Caption != nil {
		resp.Caption = result.Caption.Text
		resp.Confidence = result.Caption.Confidence
	} else {
		resp.Error = result.Report.Message
		if resp.Error == "" && err != nil {
			resp.Error = err.Error()
		}
	}
	writeJSON(w, status, resp)
}

// HandleNarrate handles POST /v1/narrate - multipart image and language_code,
// runs caption, translation and speech synchronously and returns the run report
func (h *Handler) HandleNarrate(w http.ResponseWriter, r *http.Request) {
	image, _, ok := h.readImage(w, r)
	if !ok {
		return
	}

	result, err := h.run(r.Context(), pipeline.ProcessRequest{
		Job:          pipeline.JobNarrate,
		LanguageCode: r.FormValue("language_code"),
	}, image)
	status := haltStatus(result, err)
	if result == nil {
		writeError(w, status, fmt.Sprintf("Workflow execution failed: %v", err))
		return
	}
	writeJSON(w, status, result.Report)
}
