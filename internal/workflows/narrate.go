package workflows

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tendant/simple-caption-pipeline/internal/languages"
	"github.com/tendant/simple-caption-pipeline/internal/metrics"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// NarrateWorkflow captions an image, translates the caption and speaks it
type NarrateWorkflow struct {
	svc         *Services
	maxAttempts int
}

// NewNarrateWorkflow creates the caption, translate and speak workflow.
// maxAttempts bounds interactive language prompts; 0 means unbounded.
func NewNarrateWorkflow(svc *Services, maxAttempts int) *NarrateWorkflow {
	return &NarrateWorkflow{
		svc:         svc,
		maxAttempts: maxAttempts,
	}
}

// Name returns the workflow name
func (w *NarrateWorkflow) Name() string {
	return "NarrateWorkflow"
}

// Execute runs the narrate workflow
func (w *NarrateWorkflow) Execute(wctx *WorkflowContext) (*WorkflowResult, error) {
	logger := w.svc.logger()
	r := newRun(wctx, logger)
	logger.Infof("[%s] Starting narrate workflow for content_id=%s", wctx.RunID, wctx.Request.ContentID)

	// Step 1: Validate request. Without a prompter the code must come with it.
	if wctx.Prompter == nil && r.result.Report.LanguageCode == "" {
		return r.halt(HaltInvalidRequest, "A target language is required.", &pipeline.ValidationError{
			Field:   "language_code",
			Message: "A target language is required.",
		})
	}

	// Step 2: Caption the image
	caption, halt, message, err := w.svc.captionImage(r)
	if halt != "" {
		if halt == HaltCaptionFailed {
			message = fmt.Sprintf("Error during image analysis: %s", message)
		}
		return r.halt(halt, message, err)
	}

	// Step 3: Load the language catalog for this run
	catalog, err := timed("catalog", func() (*languages.Catalog, error) {
		return w.svc.Catalog.Get(wctx.Ctx)
	})
	if err != nil {
		return r.halt(HaltCatalogUnavailable, fmt.Sprintf("Error loading supported languages: %s", diagnostic(err)), err)
	}
	metrics.CatalogLanguages.Set(float64(catalog.Len()))

	// Step 4: Select a language from the catalog
	target, halt, err := w.selectLanguage(wctx, catalog)
	if halt != "" {
		return r.halt(halt, err.Error(), err)
	}
	r.result.Report.LanguageCode = target.Code()
	r.advance(StageLanguageSelected, target.Code())

	// Step 5: Translate the caption
	r.advance(StageTranslationRequested, "")
	translation, err := timed("translate", func() (*pipeline.TranslationResult, error) {
		return w.svc.Translator.Translate(wctx.Ctx, caption.Text, target)
	})
	if errors.Is(err, pipeline.ErrNoTranslation) {
		return r.halt(HaltTranslationFailed, "Translation failed.", err)
	}
	if err != nil {
		return r.halt(HaltTranslationFailed, fmt.Sprintf("Error during translation: %s", diagnostic(err)), err)
	}
	r.result.Translation = translation
	r.result.Report.TranslatedText = translation.TranslatedText
	r.result.Report.SourceLanguage = translation.DetectedSourceLanguage
	r.advance(StageTranslationObtained, translation.TranslatedText)

	// Step 6: Speak the translation. A failed synthesis is recorded but the
	// caption and translation already delivered stand.
	r.advance(StageSynthesisRequested, "")
	outcome, err := timed("synthesize", func() (*pipeline.SynthesisOutcome, error) {
		return w.svc.Synthesizer.Synthesize(wctx.Ctx, translation.TranslatedText)
	})
	if err != nil {
		r.result.Error = err
		r.result.Report.Halt = string(HaltSynthesisFailed)
		r.result.Report.Message = fmt.Sprintf("Error during speech synthesis: %s", diagnostic(err))
		r.result.Report.SynthesisStatus = string(pipeline.SynthesisCanceled)
		r.result.Report.SynthesisReason = pipeline.CancelReasonError
		r.result.Report.SynthesisDetails = diagnostic(err)
		logger.Warnf("[%s] Speech synthesis failed: %v", wctx.RunID, err)
		return r.done()
	}

	r.result.Synthesis = outcome
	r.result.Report.SynthesisStatus = string(outcome.Status)
	r.result.Report.SynthesisReason = outcome.Reason
	r.result.Report.SynthesisDetails = outcome.Details
	r.result.Report.AudioLocation = outcome.Location
	if !outcome.Completed() {
		r.result.Report.Halt = string(HaltSynthesisFailed)
		r.result.Report.Message = fmt.Sprintf("Speech synthesis canceled: %s", outcome.Reason)
		logger.Warnf("[%s] Speech synthesis canceled: %s (%s)", wctx.RunID, outcome.Reason, outcome.Details)
		return r.done()
	}
	r.result.Report.Message = "Speech synthesized successfully."

	// Step 7: Store the audio next to the source image
	w.svc.storeSpeech(r, outcome)

	logger.Infof("[%s] Narrate workflow completed", wctx.RunID)
	return r.done()
}

// selectLanguage resolves the target language, prompting until the user
// enters a code from the catalog. The returned halt is empty on success.
func (w *NarrateWorkflow) selectLanguage(wctx *WorkflowContext, catalog *languages.Catalog) (languages.Target, Halt, error) {
	code := strings.TrimSpace(wctx.Request.LanguageCode)
	if code != "" {
		if target, ok := catalog.Lookup(code); ok {
			return target, "", nil
		}
		if wctx.Prompter == nil {
			return languages.Target{}, HaltInvalidLanguage, pipeline.NewUnsupportedLanguageError(code)
		}
	}

	prompter := wctx.Prompter
	prompter.Announce(catalog)

	attempts := 0
	if code != "" {
		prompter.Rejected(code)
		attempts++
	}

	for w.maxAttempts <= 0 || attempts < w.maxAttempts {
		next, err := prompter.NextCode(wctx.Ctx)
		if err != nil {
			if wctx.Ctx.Err() != nil {
				return languages.Target{}, HaltInvalidRequest, err
			}
			return languages.Target{}, HaltInvalidRequest, &pipeline.ValidationError{
				Field:   "language_code",
				Message: fmt.Sprintf("No target language entered: %v", err),
			}
		}
		attempts++

		code = strings.TrimSpace(next)
		if target, ok := catalog.Lookup(code); ok {
			return target, "", nil
		}
		prompter.Rejected(code)
	}

	return languages.Target{}, HaltInvalidLanguage, pipeline.NewUnsupportedLanguageError(code)
}
