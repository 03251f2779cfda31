package workflows

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tendant/simple-caption-pipeline/internal/imageprep"
	"github.com/tendant/simple-caption-pipeline/internal/logging"
	"github.com/tendant/simple-caption-pipeline/internal/metrics"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// MessageNoImage is reported when a run has neither image bytes nor a content ID
const MessageNoImage = "No image selected."

// Services bundles the capabilities shared by all workflows
type Services struct {
	Captioner   CaptionProvider
	Catalog     CatalogSource
	Translator  Translator
	Synthesizer SpeechSynthesizer

	// Images and Derived are optional; durable runs read the source image
	// from content storage and write speech audio back as derived content.
	Images  ContentReader
	Derived DerivedWriter

	Logger            *zap.SugaredLogger
	MaxImageDimension int
}

func (s *Services) logger() *zap.SugaredLogger {
	return logging.OrNop(s.Logger)
}

// run tracks the stage cursor and report of a single execution
type run struct {
	wctx   *WorkflowContext
	logger *zap.SugaredLogger
	result *WorkflowResult
}

func newRun(wctx *WorkflowContext, logger *zap.SugaredLogger) *run {
	return &run{
		wctx:   wctx,
		logger: logger,
		result: &WorkflowResult{
			Report: pipeline.RunReport{
				RunID:        wctx.RunID,
				Job:          wctx.Request.Job,
				ContentID:    wctx.Request.ContentID,
				Stage:        string(StageIdle),
				LanguageCode: strings.TrimSpace(wctx.Request.LanguageCode),
			},
		},
	}
}

// advance moves the cursor forward and notifies the reporter
func (r *run) advance(stage Stage, detail string) {
	r.result.Report.Stage = string(stage)
	if detail != "" {
		r.logger.Infof("[%s] %s: %s", r.wctx.RunID, stage, detail)
	} else {
		r.logger.Infof("[%s] %s", r.wctx.RunID, stage)
	}
	if r.wctx.Reporter != nil {
		r.wctx.Reporter.Report(stage, detail)
	}
}

// halt ends the run at the current stage. Bad input and empty results end
// the run with a nil error; anything else (service, storage, context
// failures) is returned as well.
func (r *run) halt(halt Halt, message string, cause error) (*WorkflowResult, error) {
	if cause == nil {
		cause = errors.New(message)
	}
	r.result.Success = false
	r.result.Error = cause
	r.result.Report.Success = false
	r.result.Report.Halt = string(halt)
	r.result.Report.Message = message
	r.logger.Warnf("[%s] Halted at %s (%s): %v", r.wctx.RunID, r.result.Report.Stage, halt, cause)

	if expected(cause) {
		return r.result, nil
	}
	return r.result, cause
}

// expected reports whether err is an ordinary outcome rather than a failure
func expected(err error) bool {
	return pipeline.IsValidationError(err) ||
		errors.Is(err, pipeline.ErrNoCaption) ||
		errors.Is(err, pipeline.ErrNoTranslation)
}

// done marks the run as completed
func (r *run) done() (*WorkflowResult, error) {
	r.result.Success = true
	r.result.Report.Success = true
	r.advance(StageDone, "")
	return r.result, nil
}

// timed runs fn and records its duration under stage
func timed[T any](stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	defer metrics.ObserveStage(stage, start)
	return fn()
}

// loadImage returns the source image of the run, resized for the vision
// service. Returns a *pipeline.ValidationError when the run has no usable image.
func (s *Services) loadImage(wctx *WorkflowContext) (*imageprep.Prepared, error) {
	data := wctx.Image
	if len(data) == 0 {
		contentID := wctx.Request.ContentID
		if contentID == "" || s.Images == nil {
			return nil, &pipeline.ValidationError{Field: "image", Message: MessageNoImage}
		}

		exists, err := s.Images.Exists(wctx.Ctx, contentID)
		if err != nil {
			return nil, fmt.Errorf("content check failed: %w", err)
		}
		if !exists {
			return nil, &pipeline.ValidationError{
				Field:   "content_id",
				Value:   contentID,
				Message: fmt.Sprintf("source content not found: %s", contentID),
			}
		}

		reader, err := s.Images.GetReaderByContentID(wctx.Ctx, contentID)
		if err != nil {
			return nil, fmt.Errorf("download failed: %w", err)
		}
		defer reader.Close()

		if data, err = io.ReadAll(reader); err != nil {
			return nil, fmt.Errorf("image read failed: %w", err)
		}
		if len(data) == 0 {
			return nil, &pipeline.ValidationError{Field: "content_id", Value: contentID, Message: MessageNoImage}
		}
	}

	prepared, err := imageprep.Prepare(data, s.MaxImageDimension)
	if errors.Is(err, imageprep.ErrNotImage) {
		return nil, &pipeline.ValidationError{Field: "image", Message: "The selected file is not a supported image."}
	}
	return prepared, err
}

// captionImage loads the image and asks the vision service to describe it.
// The returned halt is empty on success. Vision failures carry the provider
// diagnostic as message so callers can phrase it their own way.
func (s *Services) captionImage(r *run) (*pipeline.Caption, Halt, string, error) {
	prepared, err := s.loadImage(r.wctx)
	if err != nil {
		if pipeline.IsValidationError(err) {
			return nil, HaltInvalidRequest, err.Error(), err
		}
		return nil, HaltSourceUnavailable, fmt.Sprintf("Error loading the image: %s", err), err
	}
	if prepared.Resized {
		r.logger.Infof("[%s] Image resized to %dx%d", r.wctx.RunID, prepared.Width, prepared.Height)
	}

	r.advance(StageCaptionRequested, "")
	caption, err := timed("caption", func() (*pipeline.Caption, error) {
		return s.Captioner.Caption(r.wctx.Ctx, prepared.Data)
	})
	if err != nil {
		return nil, HaltCaptionFailed, diagnostic(err), err
	}
	if caption == nil || strings.TrimSpace(caption.Text) == "" {
		return nil, HaltNoCaption, "No caption found.", pipeline.ErrNoCaption
	}

	r.result.Caption = caption
	r.result.Report.Caption = caption.Text
	r.advance(StageCaptionObtained, caption.Text)
	return caption, "", "", nil
}

// storeSpeech writes synthesized audio back to content storage as a derived
// variant of the source image. Failures are logged only.
func (s *Services) storeSpeech(r *run, outcome *pipeline.SynthesisOutcome) {
	contentID := r.wctx.Request.ContentID
	if s.Derived == nil || contentID == "" || !outcome.Completed() || len(outcome.Audio) == 0 {
		return
	}

	variant := fmt.Sprintf("%s_%s", pipeline.DerivedTypeSpeech, r.result.Report.LanguageCode)

	// Skip if the audio for this language was already stored
	has, err := s.Derived.HasDerived(r.wctx.Ctx, contentID, pipeline.DerivedTypeSpeech, variant)
	if err != nil {
		r.logger.Warnf("[%s] Failed to check derived content: %v", r.wctx.RunID, err)
	} else if has {
		r.logger.Infof("[%s] Derived content already exists (variant=%s) - skipping", r.wctx.RunID, variant)
		return
	}

	derivedID, err := s.Derived.PutDerived(r.wctx.Ctx, contentID, pipeline.DerivedTypeSpeech, variant,
		bytes.NewReader(outcome.Audio), map[string]string{
			"file_name": fmt.Sprintf("%s.wav", variant),
			"mime_type": outcome.MimeType,
			"language":  r.result.Report.LanguageCode,
			"text":      r.result.Report.TranslatedText,
		})
	if err != nil {
		r.logger.Warnf("[%s] Failed to store speech audio: %v", r.wctx.RunID, err)
		return
	}

	r.result.Report.DerivedContentID = derivedID
	r.logger.Infof("[%s] Speech audio stored as derived content %s", r.wctx.RunID, derivedID)
}

// diagnostic extracts the provider's own message from err when it has one
func diagnostic(err error) string {
	var se *pipeline.ServiceError
	if errors.As(err, &se) {
		return se.Diagnostic()
	}
	return err.Error()
}
