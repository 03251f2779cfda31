package workflows

import (
	"context"
	"io"

	"github.com/tendant/simple-caption-pipeline/internal/languages"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// Stage is the cursor of a pipeline run. Runs only move forward.
type Stage string

const (
	StageIdle                 Stage = "Idle"
	StageCaptionRequested     Stage = "CaptionRequested"
	StageCaptionObtained      Stage = "CaptionObtained"
	StageLanguageSelected     Stage = "LanguageSelected"
	StageTranslationRequested Stage = "TranslationRequested"
	StageTranslationObtained  Stage = "TranslationObtained"
	StageSynthesisRequested   Stage = "SynthesisRequested"
	StageDone                 Stage = "Done"
)

// Halt names why a run stopped short of its goal
type Halt string

const (
	HaltInvalidRequest     Halt = "InvalidRequest"
	HaltSourceUnavailable  Halt = "SourceUnavailable"
	HaltCaptionFailed      Halt = "CaptionFailed"
	HaltNoCaption          Halt = "NoCaption"
	HaltCatalogUnavailable Halt = "CatalogUnavailable"
	HaltInvalidLanguage    Halt = "InvalidLanguage"
	HaltTranslationFailed  Halt = "TranslationFailed"
	HaltSynthesisFailed    Halt = "SynthesisFailed" // recorded, the run still ends in Done
)

// WorkflowContext contains context for workflow execution
type WorkflowContext struct {
	Ctx     context.Context
	Request pipeline.ProcessRequest
	RunID   string

	// Image is the source image for interactive and upload callers.
	// Durable runs leave it empty and load Request.ContentID instead.
	Image []byte

	// Prompter asks for a language code when the request has none or an
	// invalid one. Nil in request/response mode.
	Prompter LanguagePrompter

	// Reporter receives stage progress. Nil means no progress output.
	Reporter Reporter
}

// WorkflowResult contains the result of workflow execution
type WorkflowResult struct {
	Success bool
	Error   error
	Report  pipeline.RunReport

	Caption     *pipeline.Caption
	Translation *pipeline.TranslationResult
	Synthesis   *pipeline.SynthesisOutcome
}

// Workflow defines the interface for processing workflows
type Workflow interface {
	// Execute runs the workflow
	Execute(wctx *WorkflowContext) (*WorkflowResult, error)

	// Name returns the workflow name
	Name() string
}

// CaptionProvider describes an image. A nil caption with a nil error means
// the service had nothing to say about the image.
type CaptionProvider interface {
	Caption(ctx context.Context, image []byte) (*pipeline.Caption, error)
}

// CatalogSource hands out the language catalog snapshot for a run
type CatalogSource interface {
	Get(ctx context.Context) (*languages.Catalog, error)
}

// Translator translates text into a verified target language.
// Returns pipeline.ErrNoTranslation when the service produced no entries.
type Translator interface {
	Translate(ctx context.Context, text string, target languages.Target) (*pipeline.TranslationResult, error)
}

// SpeechSynthesizer speaks text. Service-side cancellations are reported in
// the outcome, not as errors.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (*pipeline.SynthesisOutcome, error)
}

// LanguagePrompter obtains language codes from an interactive user
type LanguagePrompter interface {
	// Announce is called once before the first prompt
	Announce(catalog *languages.Catalog)

	// NextCode blocks until the user enters a code. An error ends the run.
	NextCode(ctx context.Context) (string, error)

	// Rejected tells the user code is not in the catalog
	Rejected(code string)
}

// Reporter receives stage transitions as they happen
type Reporter interface {
	Report(stage Stage, detail string)
}

// ContentReader interface for reading source images from content storage
type ContentReader interface {
	GetReaderByContentID(ctx context.Context, contentID string) (io.ReadCloser, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// DerivedWriter interface for writing derived content (speech audio)
type DerivedWriter interface {
	HasDerived(ctx context.Context, contentID string, derivedType string, variant string) (bool, error)
	PutDerived(ctx context.Context, contentID string, derivedType string, variant string, r io.Reader, meta map[string]string) (string, error)
}

// RunRecorder persists run reports
type RunRecorder interface {
	Record(ctx context.Context, report pipeline.RunReport) error
	Get(ctx context.Context, runID string) (*pipeline.RunReport, error)
}
