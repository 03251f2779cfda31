package handlers

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// formPage is the data rendered by the translate form
type formPage struct {
	Languages      []pipeline.Language
	InputText      string
	TargetLanguage string
	SourceLanguage string
	TranslatedText string
	Error          string
}

// translate runs the translate job and returns the user-facing response
func (h *Handler) translate(r *http.Request, req pipeline.TranslateRequest) (pipeline.TranslateResponse, int) {
	result, err := h.run(r.Context(), pipeline.ProcessRequest{
		Job:          pipeline.JobTranslate,
		Text:         req.InputText,
		LanguageCode: req.LanguageCode,
	}, nil)

	status := haltStatus(result, err)
	if result == nil || status != http.StatusOK {
		msg := "An error occurred."
		if result != nil && result.Report.Message != "" {
			msg = result.Report.Message
		} else if err != nil {
			msg = fmt.Sprintf("An error occurred: %v", err)
		}
		return pipeline.TranslateResponse{Error: msg}, status
	}

	return pipeline.TranslateResponse{
		TranslatedText: result.Report.TranslatedText,
		SourceLanguage: result.Report.SourceLanguage,
	}, http.StatusOK
}

// HandleForm handles GET and POST / - the translate form
func (h *Handler) HandleForm(w http.ResponseWriter, r *http.Request) {
	page := formPage{}

	// The language list is rendered on every response
	catalog, err := h.catalog.Get(r.Context())
	if err != nil {
		h.logger.Warnf("Failed to load language catalog: %v", err)
		page.Error = fmt.Sprintf("An error occurred: %s", diagnostic(err))
	} else {
		page.Languages = catalog.Languages()
	}

	if r.Method == http.MethodPost && page.Error == "" {
		req := pipeline.TranslateRequest{
			InputText:    r.FormValue("input_text"),
			LanguageCode: r.FormValue("language_code"),
		}
		resp, _ := h.translate(r, req)
		page.Error = resp.Error
		if resp.Error == "" {
			page.InputText = req.InputText
			page.TargetLanguage = req.LanguageCode
			page.SourceLanguage = resp.SourceLanguage
			page.TranslatedText = resp.TranslatedText
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, page); err != nil {
		h.logger.Errorf("Failed to render form: %v", err)
	}
}

// HandleTranslate handles POST /v1/translate
func (h *Handler) HandleTranslate(w http.ResponseWriter, r *http.Request) {
	var req pipeline.TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp, status := h.translate(r, req)
	writeJSON(w, status, resp)
}

func diagnostic(err error) string {
	var se *pipeline.ServiceError
	if errors.As(err, &se) {
		return se.Diagnostic()
	}
	return err.Error()
}
