package workflows

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-caption-pipeline/internal/languages"
	"github.com/tendant/simple-caption-pipeline/internal/providers/stub"
	"github.com/tendant/simple-caption-pipeline/internal/speech"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

type MockCaptioner struct {
	mock.Mock
}

func (m *MockCaptioner) Caption(ctx context.Context, image []byte) (*pipeline.Caption, error) {
	args := m.Called(ctx, image)
	caption, _ := args.Get(0).(*pipeline.Caption)
	return caption, args.Error(1)
}

type MockTranslator struct {
	mock.Mock
}

func (m *MockTranslator) Translate(ctx context.Context, text string, target languages.Target) (*pipeline.TranslationResult, error) {
	args := m.Called(ctx, text, target.Code())
	result, _ := args.Get(0).(*pipeline.TranslationResult)
	return result, args.Error(1)
}

type MockSynthesizer struct {
	mock.Mock
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, text string) (*pipeline.SynthesisOutcome, error) {
	args := m.Called(ctx, text)
	outcome, _ := args.Get(0).(*pipeline.SynthesisOutcome)
	return outcome, args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Get(ctx context.Context) (*languages.Catalog, error) {
	args := m.Called(ctx)
	catalog, _ := args.Get(0).(*languages.Catalog)
	return catalog, args.Error(1)
}

// scriptedPrompter answers NextCode from a fixed list, then returns io.EOF
type scriptedPrompter struct {
	codes     []string
	announced int
	rejected  []string
}

func (p *scriptedPrompter) Announce(catalog *languages.Catalog) { p.announced++ }

func (p *scriptedPrompter) NextCode(ctx context.Context) (string, error) {
	if len(p.codes) == 0 {
		return "", io.EOF
	}
	code := p.codes[0]
	p.codes = p.codes[1:]
	return code, nil
}

func (p *scriptedPrompter) Rejected(code string) { p.rejected = append(p.rejected, code) }

type recordingReporter struct {
	stages []Stage
}

func (r *recordingReporter) Report(stage Stage, detail string) { r.stages = append(r.stages, stage) }

type memDerived struct {
	existing map[string]bool
	puts     map[string][]byte
}

func (d *memDerived) HasDerived(ctx context.Context, contentID, derivedType, variant string) (bool, error) {
	return d.existing[contentID+"/"+variant], nil
}

func (d *memDerived) PutDerived(ctx context.Context, contentID, derivedType, variant string, r io.Reader, meta map[string]string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if d.puts == nil {
		d.puts = map[string][]byte{}
	}
	d.puts[contentID+"/"+variant] = data
	return "derived-" + variant, nil
}

type memImages map[string][]byte

func (m memImages) GetReaderByContentID(ctx context.Context, contentID string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m[contentID])), nil
}

func (m memImages) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m[key]
	return ok, nil
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testCatalog() *languages.Catalog {
	return languages.NewCatalog([]pipeline.Language{{Code: "en"}, {Code: "fr"}, {Code: "de"}})
}

type fixture struct {
	captioner   *MockCaptioner
	translator  *MockTranslator
	synthesizer *MockSynthesizer
	svc         *Services
}

func newFixture() *fixture {
	f := &fixture{
		captioner:   &MockCaptioner{},
		translator:  &MockTranslator{},
		synthesizer: &MockSynthesizer{},
	}
	f.svc = &Services{
		Captioner:   f.captioner,
		Catalog:     languages.NewStaticStore(testCatalog()),
		Translator:  f.translator,
		Synthesizer: f.synthesizer,
	}
	return f
}

func translateContext(text, code string) *WorkflowContext {
	return &WorkflowContext{
		Ctx:     context.Background(),
		RunID:   "run-1",
		Request: pipeline.ProcessRequest{Job: pipeline.JobTranslate, Text: text, LanguageCode: code},
	}
}

func TestTranslateReportsSourceAndOutput(t *testing.T) {
	f := newFixture()
	f.translator.On("Translate", mock.Anything, "Hello", "fr").
		Return(&pipeline.TranslationResult{TranslatedText: "Bonjour", DetectedSourceLanguage: "en", TargetLanguage: "fr"}, nil)

	result, err := NewTranslateWorkflow(f.svc).Execute(translateContext("Hello", "fr"))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Bonjour", result.Report.TranslatedText)
	assert.Equal(t, "en", result.Report.SourceLanguage)
	assert.Equal(t, string(StageDone), result.Report.Stage)
	f.translator.AssertExpectations(t)
}

func TestTranslateRequiresBothFields(t *testing.T) {
	for _, tc := range []struct{ text, code string }{{"", "fr"}, {"Hello", ""}, {"  ", " "}} {
		f := newFixture()

		result, err := NewTranslateWorkflow(f.svc).Execute(translateContext(tc.text, tc.code))
		require.NoError(t, err)

		assert.False(t, result.Success)
		assert.Equal(t, string(HaltInvalidRequest), result.Report.Halt)
		assert.Equal(t, MessageMissingFields, result.Report.Message)
		assert.True(t, pipeline.IsValidationError(result.Error))
		f.translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestTranslateRejectsUnknownLanguage(t *testing.T) {
	f := newFixture()

	result, err := NewTranslateWorkflow(f.svc).Execute(translateContext("Hello", "xx"))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, string(HaltInvalidLanguage), result.Report.Halt)
	assert.Equal(t, "xx is not a supported language.", result.Report.Message)
	f.translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything)
}

func TestTranslateLanguageCodeIsCaseSensitive(t *testing.T) {
	f := newFixture()

	result, err := NewTranslateWorkflow(f.svc).Execute(translateContext("Hello", "FR"))
	require.NoError(t, err)
	assert.Equal(t, string(HaltInvalidLanguage), result.Report.Halt)
}

func TestTranslateEmptyResult(t *testing.T) {
	f := newFixture()
	f.translator.On("Translate", mock.Anything, "Hello", "fr").Return(nil, pipeline.ErrNoTranslation)

	result, err := NewTranslateWorkflow(f.svc).Execute(translateContext("Hello", "fr"))
	require.NoError(t, err)

	assert.Equal(t, string(HaltTranslationFailed), result.Report.Halt)
	assert.Equal(t, MessageTranslationFailed, result.Report.Message)
}

func TestTranslateServiceErrorIsReturned(t *testing.T) {
	f := newFixture()
	svcErr := &pipeline.ServiceError{Service: "translator", Op: "translate", StatusCode: 401, Message: "invalid subscription key"}
	f.translator.On("Translate", mock.Anything, "Hello", "fr").Return(nil, svcErr)

	result, err := NewTranslateWorkflow(f.svc).Execute(translateContext("Hello", "fr"))
	require.Error(t, err)

	assert.True(t, pipeline.IsServiceError(err))
	assert.Equal(t, "An error occurred: invalid subscription key", result.Report.Message)
}

func TestTranslateCatalogUnavailable(t *testing.T) {
	f := newFixture()
	catalog := &MockCatalog{}
	catalog.On("Get", mock.Anything).Return(nil, &pipeline.ServiceError{Service: "translator", Op: "languages", Message: "dial tcp: timeout"})
	f.svc.Catalog = catalog

	result, err := NewTranslateWorkflow(f.svc).Execute(translateContext("Hello", "fr"))
	require.Error(t, err)
	assert.Equal(t, string(HaltCatalogUnavailable), result.Report.Halt)
	f.translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything)
}

func narrateContext(t *testing.T, code string) *WorkflowContext {
	return &WorkflowContext{
		Ctx:     context.Background(),
		RunID:   "run-2",
		Image:   testPNG(t),
		Request: pipeline.ProcessRequest{Job: pipeline.JobNarrate, LanguageCode: code},
	}
}

func TestNarrateCompletes(t *testing.T) {
	f := newFixture()
	f.captioner.On("Caption", mock.Anything, mock.Anything).Return(&pipeline.Caption{Text: "a dog on a beach"}, nil)
	f.translator.On("Translate", mock.Anything, "a dog on a beach", "fr").
		Return(&pipeline.TranslationResult{TranslatedText: "un chien sur une plage", DetectedSourceLanguage: "en"}, nil)
	f.synthesizer.On("Synthesize", mock.Anything, "un chien sur une plage").
		Return(&pipeline.SynthesisOutcome{Status: pipeline.SynthesisCompleted, Location: "speaker"}, nil)

	reporter := &recordingReporter{}
	wctx := narrateContext(t, "fr")
	wctx.Reporter = reporter

	result, err := NewNarrateWorkflow(f.svc, 0).Execute(wctx)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.Report.Halt)
	assert.Equal(t, "a dog on a beach", result.Report.Caption)
	assert.Equal(t, "un chien sur une plage", result.Report.TranslatedText)
	assert.Equal(t, string(pipeline.SynthesisCompleted), result.Report.SynthesisStatus)
	assert.Equal(t, []Stage{
		StageCaptionRequested, StageCaptionObtained, StageLanguageSelected,
		StageTranslationRequested, StageTranslationObtained, StageSynthesisRequested, StageDone,
	}, reporter.stages)
}

func TestNarrateNoCaptionStopsPipeline(t *testing.T) {
	f := newFixture()
	f.captioner.On("Caption", mock.Anything, mock.Anything).Return(nil, nil)

	result, err := NewNarrateWorkflow(f.svc, 0).Execute(narrateContext(t, "fr"))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, string(HaltNoCaption), result.Report.Halt)
	assert.Equal(t, "No caption found.", result.Report.Message)
	assert.ErrorIs(t, result.Error, pipeline.ErrNoCaption)
	f.translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything)
	f.synthesizer.AssertNotCalled(t, "Synthesize", mock.Anything, mock.Anything)
}

func TestNarrateCaptionServiceError(t *testing.T) {
	f := newFixture()
	f.captioner.On("Caption", mock.Anything, mock.Anything).
		Return(nil, &pipeline.ServiceError{Service: "vision", Op: "caption", StatusCode: 403, Message: "quota exceeded"})

	result, err := NewNarrateWorkflow(f.svc, 0).Execute(narrateContext(t, "fr"))
	require.Error(t, err)

	assert.Equal(t, string(HaltCaptionFailed), result.Report.Halt)
	assert.Equal(t, "Error during image analysis: quota exceeded", result.Report.Message)
	f.translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything)
}

func TestNarrateEmptyTranslationSkipsSynthesis(t *testing.T) {
	f := newFixture()
	f.captioner.On("Caption", mock.Anything, mock.Anything).Return(&pipeline.Caption{Text: "a cat"}, nil)
	f.translator.On("Translate", mock.Anything, "a cat", "de").Return(nil, pipeline.ErrNoTranslation)

	result, err := NewNarrateWorkflow(f.svc, 0).Execute(narrateContext(t, "de"))
	require.NoError(t, err)

	assert.Equal(t, string(HaltTranslationFailed), result.Report.Halt)
	assert.Equal(t, "Translation failed.", result.Report.Message)
	f.synthesizer.AssertNotCalled(t, "Synthesize", mock.Anything, mock.Anything)
}

func TestNarrateSynthesisCanceledKeepsTranslation(t *testing.T) {
	f := newFixture()
	f.captioner.On("Caption", mock.Anything, mock.Anything).Return(&pipeline.Caption{Text: "a cat"}, nil)
	f.translator.On("Translate", mock.Anything, "a cat", "fr").
		Return(&pipeline.TranslationResult{TranslatedText: "un chat", DetectedSourceLanguage: "en"}, nil)
	f.synthesizer.On("Synthesize", mock.Anything, "un chat").Return(&pipeline.SynthesisOutcome{
		Status:  pipeline.SynthesisCanceled,
		Reason:  pipeline.CancelReasonError,
		Details: "quota exceeded",
	}, nil)

	result, err := NewNarrateWorkflow(f.svc, 0).Execute(narrateContext(t, "fr"))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "un chat", result.Report.TranslatedText)
	assert.Equal(t, "en", result.Report.SourceLanguage)
	assert.Equal(t, string(HaltSynthesisFailed), result.Report.Halt)
	assert.Equal(t, pipeline.CancelReasonError, result.Report.SynthesisReason)
	assert.Equal(t, "quota exceeded", result.Report.SynthesisDetails)
	assert.Equal(t, string(StageDone), result.Report.Stage)
}

func TestNarrateSynthesisTransportErrorIsRecorded(t *testing.T) {
	f := newFixture()
	f.captioner.On("Caption", mock.Anything, mock.Anything).Return(&pipeline.Caption{Text: "a cat"}, nil)
	f.translator.On("Translate", mock.Anything, "a cat", "fr").
		Return(&pipeline.TranslationResult{TranslatedText: "un chat", DetectedSourceLanguage: "en"}, nil)
	f.synthesizer.On("Synthesize", mock.Anything, "un chat").
		Return(nil, &pipeline.ServiceError{Service: "speech", Op: "synthesize", Err: errors.New("connection refused")})

	result, err := NewNarrateWorkflow(f.svc, 0).Execute(narrateContext(t, "fr"))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Error(t, result.Error)
	assert.Equal(t, "Error during speech synthesis: connection refused", result.Report.Message)
}

func TestNarrateInvalidLanguageWithoutPrompter(t *testing.T) {
	f := newFixture()
	f.captioner.On("Caption", mock.Anything, mock.Anything).Return(&pipeline.Caption{Text: "a cat"}, nil)

	result, err := NewNarrateWorkflow(f.svc, 0).Execute(narrateContext(t, "xx"))
	require.NoError(t, err)

	assert.Equal(t, string(HaltInvalidLanguage), result.Report.Halt)
	assert.Equal(t, "xx is not a supported language.", result.Report.Message)
	f.translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything)
}

func TestNarrateRequiresLanguageWithoutPrompter(t *testing.T) {
	f := newFixture()

	result, err := NewNarrateWorkflow(f.svc, 0).Execute(narrateContext(t, ""))
	require.NoError(t, err)

	assert.Equal(t, string(HaltInvalidRequest), result.Report.Halt)
	f.captioner.AssertNotCalled(t, "Caption", mock.Anything, mock.Anything)
}

func TestNarrateRepromptsUntilValid(t *testing.T) {
	f := newFixture()
	f.captioner.On("Caption", mock.Anything, mock.Anything).Return(&pipeline.Caption{Text: "a cat"}, nil)
	f.translator.On("Translate", mock.Anything, "a cat", "de").
		Return(&pipeline.TranslationResult{TranslatedText: "eine Katze", DetectedSourceLanguage: "en"}, nil)
	f.synthesizer.On("Synthesize", mock.Anything, "eine Katze").
		Return(&pipeline.SynthesisOutcome{Status: pipeline.SynthesisCompleted}, nil)

	prompter := &scriptedPrompter{codes: []string{"xx", "DE", "de"}}
	wctx := narrateContext(t, "")
	wctx.Prompter = prompter

	result, err := NewNarrateWorkflow(f.svc, 0).Execute(wctx)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "de", result.Report.LanguageCode)
	assert.Equal(t, 1, prompter.announced)
	assert.Equal(t, []string{"xx", "DE"}, prompter.rejected)
}

func TestNarratePromptAttemptsAreBounded(t *testing.T) {
	f := newFixture()
	f.captioner.On("Caption", mock.Anything, mock.Anything).Return(&pipeline.Caption{Text: "a cat"}, nil)

	prompter := &scriptedPrompter{codes: []string{"xx", "yy", "fr"}}
	wctx := narrateContext(t, "")
	wctx.Prompter = prompter

	result, err := NewNarrateWorkflow(f.svc, 2).Execute(wctx)
	require.NoError(t, err)

	assert.Equal(t, string(HaltInvalidLanguage), result.Report.Halt)
	assert.Equal(t, "yy is not a supported language.", result.Report.Message)
	assert.Equal(t, []string{"fr"}, prompter.codes)
	f.translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything, mock.Anything)
}

func TestNarratePrompterEOFHaltsRun(t *testing.T) {
	f := newFixture()
	f.captioner.On("Caption", mock.Anything, mock.Anything).Return(&pipeline.Caption{Text: "a cat"}, nil)

	wctx := narrateContext(t, "")
	wctx.Prompter = &scriptedPrompter{}

	result, err := NewNarrateWorkflow(f.svc, 0).Execute(wctx)
	require.NoError(t, err)
	assert.Equal(t, string(HaltInvalidRequest), result.Report.Halt)
}

func TestNarrateWithoutImage(t *testing.T) {
	f := newFixture()
	wctx := narrateContext(t, "fr")
	wctx.Image = nil

	result, err := NewNarrateWorkflow(f.svc, 0).Execute(wctx)
	require.NoError(t, err)

	assert.Equal(t, string(HaltInvalidRequest), result.Report.Halt)
	assert.Equal(t, MessageNoImage, result.Report.Message)
	f.captioner.AssertNotCalled(t, "Caption", mock.Anything, mock.Anything)
}

func TestNarrateStoresSpeechAsDerivedContent(t *testing.T) {
	f := newFixture()
	derived := &memDerived{}
	f.svc.Images = memImages{"c-1": testPNG(t)}
	f.svc.Derived = derived

	f.captioner.On("Caption", mock.Anything, mock.Anything).Return(&pipeline.Caption{Text: "a cat"}, nil)
	f.translator.On("Translate", mock.Anything, "a cat", "fr").
		Return(&pipeline.TranslationResult{TranslatedText: "un chat", DetectedSourceLanguage: "en"}, nil)
	f.synthesizer.On("Synthesize", mock.Anything, "un chat").
		Return(&pipeline.SynthesisOutcome{Status: pipeline.SynthesisCompleted, Audio: []byte("RIFF"), MimeType: "audio/wav"}, nil)

	wctx := &WorkflowContext{
		Ctx:     context.Background(),
		RunID:   "run-3",
		Request: pipeline.ProcessRequest{Job: pipeline.JobNarrate, ContentID: "c-1", LanguageCode: "fr"},
	}

	result, err := NewNarrateWorkflow(f.svc, 0).Execute(wctx)
	require.NoError(t, err)

	assert.Equal(t, "derived-speech_fr", result.Report.DerivedContentID)
	assert.Equal(t, []byte("RIFF"), derived.puts["c-1/speech_fr"])
}

func TestNarrateSkipsExistingDerivedSpeech(t *testing.T) {
	f := newFixture()
	derived := &memDerived{existing: map[string]bool{"c-1/speech_fr": true}}
	f.svc.Images = memImages{"c-1": testPNG(t)}
	f.svc.Derived = derived

	f.captioner.On("Caption", mock.Anything, mock.Anything).Return(&pipeline.Caption{Text: "a cat"}, nil)
	f.translator.On("Translate", mock.Anything, "a cat", "fr").
		Return(&pipeline.TranslationResult{TranslatedText: "un chat"}, nil)
	f.synthesizer.On("Synthesize", mock.Anything, "un chat").
		Return(&pipeline.SynthesisOutcome{Status: pipeline.SynthesisCompleted, Audio: []byte("RIFF")}, nil)

	wctx := &WorkflowContext{
		Ctx:     context.Background(),
		RunID:   "run-4",
		Request: pipeline.ProcessRequest{Job: pipeline.JobNarrate, ContentID: "c-1", LanguageCode: "fr"},
	}

	result, err := NewNarrateWorkflow(f.svc, 0).Execute(wctx)
	require.NoError(t, err)

	assert.Empty(t, result.Report.DerivedContentID)
	assert.Empty(t, derived.puts)
}

func TestNarrateMissingContent(t *testing.T) {
	f := newFixture()
	f.svc.Images = memImages{}

	wctx := &WorkflowContext{
		Ctx:     context.Background(),
		RunID:   "run-5",
		Request: pipeline.ProcessRequest{Job: pipeline.JobNarrate, ContentID: "missing", LanguageCode: "fr"},
	}

	result, err := NewNarrateWorkflow(f.svc, 0).Execute(wctx)
	require.NoError(t, err)
	assert.Equal(t, "source content not found: missing", result.Report.Message)
}

func TestCaptionWorkflow(t *testing.T) {
	f := newFixture()
	f.captioner.On("Caption", mock.Anything, mock.Anything).Return(&pipeline.Caption{Text: "a red dot", Confidence: 0.9}, nil)

	wctx := narrateContext(t, "")
	wctx.Request.Job = pipeline.JobCaption

	result, err := NewCaptionWorkflow(f.svc).Execute(wctx)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "a red dot", result.Caption.Text)
}

func TestCaptionWorkflowServiceError(t *testing.T) {
	f := newFixture()
	f.captioner.On("Caption", mock.Anything, mock.Anything).
		Return(nil, &pipeline.ServiceError{Service: "vision", Op: "caption", StatusCode: 401, Message: "Access denied"})

	wctx := narrateContext(t, "")
	wctx.Request.Job = pipeline.JobCaption

	result, err := NewCaptionWorkflow(f.svc).Execute(wctx)
	require.Error(t, err)
	assert.Equal(t, "Error: Access denied", result.Report.Message)
}

func TestCaptionWorkflowRejectsNonImage(t *testing.T) {
	f := newFixture()
	wctx := narrateContext(t, "")
	wctx.Image = []byte("not an image")

	result, err := NewCaptionWorkflow(f.svc).Execute(wctx)
	require.NoError(t, err)
	assert.Equal(t, string(HaltInvalidRequest), result.Report.Halt)
}

type memLedger struct {
	reports map[string]pipeline.RunReport
}

func (l *memLedger) Record(ctx context.Context, report pipeline.RunReport) error {
	l.reports[report.RunID] = report
	return nil
}

func (l *memLedger) Get(ctx context.Context, runID string) (*pipeline.RunReport, error) {
	report, ok := l.reports[runID]
	if !ok {
		return nil, nil
	}
	return &report, nil
}

func TestRunnerRecordsRuns(t *testing.T) {
	f := newFixture()
	f.translator.On("Translate", mock.Anything, "Hello", "fr").
		Return(&pipeline.TranslationResult{TranslatedText: "Bonjour", DetectedSourceLanguage: "en"}, nil)

	ledger := &memLedger{reports: map[string]pipeline.RunReport{}}
	runner := NewWorkflowRunner(nil, nil).WithLedger(ledger)
	runner.Register(pipeline.JobTranslate, NewTranslateWorkflow(f.svc))

	result, err := runner.Run(translateContext("Hello", "fr"))
	require.NoError(t, err)
	assert.True(t, result.Success)

	status, err := runner.GetStatus(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", status.State)
	assert.Equal(t, "Bonjour", status.Report.TranslatedText)

	_, err = runner.GetStatus(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunnerUnknownJob(t *testing.T) {
	runner := NewWorkflowRunner(nil, nil)

	_, err := runner.Run(&WorkflowContext{Ctx: context.Background(), Request: pipeline.ProcessRequest{Job: "thumbnail"}})
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	_, err = runner.RunAsync(context.Background(), pipeline.ProcessRequest{Job: pipeline.JobNarrate})
	assert.Error(t, err)
}

func TestNarrateEndToEndWithStubProviders(t *testing.T) {
	client := stub.NewClient("en,fr")
	svc := &Services{
		Captioner:   client,
		Catalog:     languages.NewStore(client),
		Translator:  client,
		Synthesizer: speech.NewService(client, nil, nil),
	}

	result, err := NewNarrateWorkflow(svc, 0).Execute(narrateContext(t, "en"))
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.Empty(t, result.Report.Halt)
	assert.Equal(t, result.Report.Caption, result.Report.TranslatedText)
	assert.True(t, result.Synthesis.Completed())
}

type unreachableImages struct{}

func (unreachableImages) GetReaderByContentID(ctx context.Context, contentID string) (io.ReadCloser, error) {
	return nil, errors.New("connection refused")
}

func (unreachableImages) Exists(ctx context.Context, key string) (bool, error) {
	return false, errors.New("connection refused")
}

func TestNarrateContentStorageFailure(t *testing.T) {
	f := newFixture()
	f.svc.Images = unreachableImages{}

	wctx := &WorkflowContext{
		Ctx:     context.Background(),
		RunID:   "run-9",
		Request: pipeline.ProcessRequest{Job: pipeline.JobNarrate, ContentID: "c-1", LanguageCode: "fr"},
	}

	result, err := NewNarrateWorkflow(f.svc, 0).Execute(wctx)
	require.Error(t, err)
	assert.False(t, pipeline.IsValidationError(err))
	assert.Contains(t, err.Error(), "connection refused")

	assert.False(t, result.Success)
	assert.Equal(t, string(HaltSourceUnavailable), result.Report.Halt)
	assert.NotEqual(t, string(HaltInvalidRequest), result.Report.Halt)
	assert.Equal(t, "Error loading the image: content check failed: connection refused", result.Report.Message)
	f.captioner.AssertNotCalled(t, "Caption", mock.Anything, mock.Anything)
}

func TestCaptionContentStorageFailure(t *testing.T) {
	f := newFixture()
	f.svc.Images = unreachableImages{}

	wctx := &WorkflowContext{
		Ctx:     context.Background(),
		RunID:   "run-10",
		Request: pipeline.ProcessRequest{Job: pipeline.JobCaption, ContentID: "c-1"},
	}

	result, err := NewCaptionWorkflow(f.svc).Execute(wctx)
	require.Error(t, err)
	assert.Equal(t, string(HaltSourceUnavailable), result.Report.Halt)
}
