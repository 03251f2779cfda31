package handlers

import (
	"net/http"

	"github.com/tendant/simple-caption-pipeline/internal/languages"
	"github.com/tendant/simple-caption-pipeline/internal/metrics"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

type languagesResponse struct {
	Count     int                 `json:"count"`
	Languages []pipeline.Language `json:"languages"`
}

func catalogResponse(c *languages.Catalog) languagesResponse {
	metrics.CatalogLanguages.Set(float64(c.Len()))
	return languagesResponse{Count: c.Len(), Languages: c.Languages()}
}

// HandleLanguages handles GET /v1/languages
func (h *Handler) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.catalog.Get(r.Context())
	if err != nil {
		h.logger.Warnf("Failed to load language catalog: %v", err)
		writeError(w, http.StatusBadGateway, diagnostic(err))
		return
	}
	writeJSON(w, http.StatusOK, catalogResponse(catalog))
}

// HandleRefreshLanguages handles POST /v1/languages/refresh. The previous
// catalog stays in use when the refresh fails.
func (h *Handler) HandleRefreshLanguages(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.catalog.Refresh(r.Context())
	if err != nil {
		h.logger.Warnf("Failed to refresh language catalog: %v", err)
		writeError(w, http.StatusBadGateway, diagnostic(err))
		return
	}
	h.logger.Infof("Language catalog refreshed: %d languages", catalog.Len())
	writeJSON(w, http.StatusOK, catalogResponse(catalog))
}
