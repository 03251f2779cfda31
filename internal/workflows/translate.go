package workflows

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tendant/simple-caption-pipeline/internal/languages"
	"github.com/tendant/simple-caption-pipeline/internal/metrics"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// User-facing messages of the translate form
const (
	MessageMissingFields     = "Please provide both text and a target language."
	MessageTranslationFailed = "Translation failed. Please try again."
)

// TranslateWorkflow translates request text into a catalog language
type TranslateWorkflow struct {
	svc *Services
}

// NewTranslateWorkflow creates the text translation workflow
func NewTranslateWorkflow(svc *Services) *TranslateWorkflow {
	return &TranslateWorkflow{svc: svc}
}

// Name returns the workflow name
func (w *TranslateWorkflow) Name() string {
	return "TranslateWorkflow"
}

// Execute runs the translate workflow
func (w *TranslateWorkflow) Execute(wctx *WorkflowContext) (*WorkflowResult, error) {
	logger := w.svc.logger()
	r := newRun(wctx, logger)

	// Step 1: Validate request
	text := wctx.Request.Text
	code := strings.TrimSpace(wctx.Request.LanguageCode)
	if strings.TrimSpace(text) == "" || code == "" {
		return r.halt(HaltInvalidRequest, MessageMissingFields, &pipeline.ValidationError{Message: MessageMissingFields})
	}

	// Step 2: Validate the language against the catalog
	catalog, err := timed("catalog", func() (*languages.Catalog, error) {
		return w.svc.Catalog.Get(wctx.Ctx)
	})
	if err != nil {
		return r.halt(HaltCatalogUnavailable, fmt.Sprintf("An error occurred: %s", diagnostic(err)), err)
	}
	metrics.CatalogLanguages.Set(float64(catalog.Len()))

	target, ok := catalog.Lookup(code)
	if !ok {
		verr := pipeline.NewUnsupportedLanguageError(code)
		return r.halt(HaltInvalidLanguage, verr.Message, verr)
	}
	r.advance(StageLanguageSelected, target.Code())

	// Step 3: Translate
	r.advance(StageTranslationRequested, "")
	translation, err := timed("translate", func() (*pipeline.TranslationResult, error) {
		return w.svc.Translator.Translate(wctx.Ctx, text, target)
	})
	if errors.Is(err, pipeline.ErrNoTranslation) {
		return r.halt(HaltTranslationFailed, MessageTranslationFailed, err)
	}
	if err != nil {
		return r.halt(HaltTranslationFailed, fmt.Sprintf("An error occurred: %s", diagnostic(err)), err)
	}

	r.result.Translation = translation
	r.result.Report.TranslatedText = translation.TranslatedText
	r.result.Report.SourceLanguage = translation.DetectedSourceLanguage
	r.advance(StageTranslationObtained, translation.TranslatedText)

	return r.done()
}
