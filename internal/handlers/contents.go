package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/tendant/simple-caption-pipeline/internal/storage"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// Uploader stores source images and returns their content IDs
type Uploader interface {
	UploadImage(ctx context.Context, fileName, mimeType string, data []byte) (string, error)
}

// ContentDetails describes stored source content
type ContentDetails interface {
	Details(ctx context.Context, contentID string) (*storage.ImageInfo, error)
}

// RunHistory lists recorded runs of a content ID
type RunHistory interface {
	ListByContent(ctx context.Context, contentID string, limit int) ([]pipeline.RunReport, error)
}

type contentResponse struct {
	ContentID string               `json:"content_id"`
	Image     *storage.ImageInfo   `json:"image,omitempty"`
	Size      string               `json:"size,omitempty"`
	Runs      []pipeline.RunReport `json:"runs,omitempty"`
}

type uploadResponse struct {
	ContentID string `json:"content_id"`
	RunID     string `json:"run_id,omitempty"`
}

// WithUploader enables POST /v1/contents
func (h *Handler) WithUploader(u Uploader) *Handler {
	h.uploader = u
	return h
}

// WithContentDetails enables image details on GET /v1/contents/{contentID}
func (h *Handler) WithContentDetails(d ContentDetails) *Handler {
	h.details = d
	return h
}

// WithRunHistory enables run history on GET /v1/contents/{contentID}
func (h *Handler) WithRunHistory(r RunHistory) *Handler {
	h.history = r
	return h
}

// HandleContent handles GET /v1/contents/{contentID}?limit=N - stored image
// details and the most recent runs for it
func (h *Handler) HandleContent(w http.ResponseWriter, r *http.Request) {
	if h.details == nil && h.history == nil {
		writeError(w, http.StatusNotImplemented, "content details are not configured")
		return
	}

	contentID := chi.URLParam(r, "contentID")
	resp := contentResponse{ContentID: contentID}

	if h.details != nil {
		info, err := h.details.Details(r.Context(), contentID)
		if err != nil {
			h.logger.Warnf("Failed to get content details for %s: %v", contentID, err)
			writeError(w, http.StatusNotFound, fmt.Sprintf("source content not found: %s", contentID))
			return
		}
		resp.Image = info
		resp.Size = humanize.Bytes(uint64(info.Size))
	}

	if h.history != nil {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		runs, err := h.history.ListByContent(r.Context(), contentID, limit)
		if err != nil {
			h.logger.Errorf("Failed to list runs for %s: %v", contentID, err)
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list runs: %v", err))
			return
		}
		resp.Runs = runs
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUpload handles POST /v1/contents - stores an image and, when a
// language_code is given, enqueues a narrate run for it
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		writeError(w, http.StatusNotImplemented, "content upload is not configured")
		return
	}

	image, fileName, ok := h.readImage(w, r)
	if !ok {
		return
	}
	mimeType := http.DetectContentType(image)

	contentID, err := h.uploader.UploadImage(r.Context(), fileName, mimeType, image)
	if err != nil {
		h.logger.Errorf("Failed to upload content: %v", err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("Failed to upload content: %v", err))
		return
	}
	h.logger.Infof("Uploaded content: content_id=%s, file=%s", contentID, fileName)

	resp := uploadResponse{ContentID: contentID}
	if code := r.FormValue("language_code"); code != "" {
		runID, err := h.runner.RunAsync(r.Context(), pipeline.ProcessRequest{
			ContentID:    contentID,
			Job:          pipeline.JobNarrate,
			LanguageCode: code,
			Metadata:     map[string]string{"source": "upload"},
		})
		if err != nil {
			// The upload stands; the caller can trigger processing later
			h.logger.Warnf("Failed to enqueue narrate run for content_id=%s: %v", contentID, err)
		} else {
			resp.RunID = runID
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}
