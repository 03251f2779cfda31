package console

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-caption-pipeline/internal/languages"
	"github.com/tendant/simple-caption-pipeline/internal/workflows"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// fakeReader replays lines, then returns io.EOF
type fakeReader struct {
	lines       []string
	prompts     []string
	completions []string
}

func (f *fakeReader) Readline() (string, error) {
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

func (f *fakeReader) SetPrompt(prompt string) { f.prompts = append(f.prompts, prompt) }

func (f *fakeReader) SetCompletions(items []string) { f.completions = items }

func TestPrompterConversation(t *testing.T) {
	in := &fakeReader{lines: []string{" fr \n"}}
	var out bytes.Buffer
	p := NewPrompter(in, &out)

	catalog := languages.NewCatalog([]pipeline.Language{{Code: "en"}, {Code: "fr"}})
	p.Announce(catalog)
	p.Rejected("xx")
	code, err := p.NextCode(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "fr", code)
	assert.Equal(t, []string{"Target language: "}, in.prompts)
	assert.Equal(t, []string{"en", "fr"}, in.completions)
	assert.Equal(t, "2 languages supported.\n"+LanguageHint+"\n"+
		"xx is not a supported language. Please try again.\n", out.String())

	_, err = p.NextCode(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestPrompterHonorsCanceledContext(t *testing.T) {
	p := NewPrompter(&fakeReader{lines: []string{"fr"}}, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.NextCode(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReporterPrintsProgress(t *testing.T) {
	var out bytes.Buffer
	r := NewReporter(&out)

	r.Report(workflows.StageCaptionRequested, "")
	r.Report(workflows.StageCaptionObtained, "a dog")
	r.Report(workflows.StageLanguageSelected, "fr")
	r.Report(workflows.StageTranslationRequested, "")
	r.Report(workflows.StageTranslationObtained, "un chien")
	r.Report(workflows.StageSynthesisRequested, "")
	r.Report(workflows.StageDone, "")

	assert.Equal(t, "Analyzing the image...\n"+
		"Image description: a dog\n"+
		"Translating the caption...\n"+
		"Translated description: un chien\n"+
		"Converting text to speech...\n", out.String())
}

func TestPrintNarrateOutcome(t *testing.T) {
	tests := []struct {
		name   string
		result *workflows.WorkflowResult
		want   string
	}{
		{
			name: "completed",
			result: &workflows.WorkflowResult{
				Success:   true,
				Synthesis: &pipeline.SynthesisOutcome{Status: pipeline.SynthesisCompleted, Location: "speaker"},
			},
			want: "Speech synthesized successfully.\n",
		},
		{
			name: "completed to file",
			result: &workflows.WorkflowResult{
				Success:   true,
				Synthesis: &pipeline.SynthesisOutcome{Status: pipeline.SynthesisCompleted, Location: "audio/a.wav", Bytes: 2048},
			},
			want: "Speech synthesized successfully.\nAudio (2.0 kB) written to audio/a.wav\n",
		},
		{
			name: "canceled",
			result: &workflows.WorkflowResult{
				Success:   true,
				Synthesis: &pipeline.SynthesisOutcome{Status: pipeline.SynthesisCanceled},
				Report: pipeline.RunReport{
					Halt:             string(workflows.HaltSynthesisFailed),
					SynthesisReason:  pipeline.CancelReasonError,
					SynthesisDetails: "quota exceeded",
				},
			},
			want: "Speech synthesis canceled: Error\nError details: quota exceeded\n",
		},
		{
			name: "canceled with details from another provider",
			result: &workflows.WorkflowResult{
				Success:   true,
				Synthesis: &pipeline.SynthesisOutcome{Status: pipeline.SynthesisCanceled},
				Report: pipeline.RunReport{
					Halt:             string(workflows.HaltSynthesisFailed),
					SynthesisReason:  "error",
					SynthesisDetails: "quota exceeded",
				},
			},
			want: "Speech synthesis canceled: error\nError details: quota exceeded\n",
		},
		{
			name: "canceled by user",
			result: &workflows.WorkflowResult{
				Success:   true,
				Synthesis: &pipeline.SynthesisOutcome{Status: pipeline.SynthesisCanceled},
				Report: pipeline.RunReport{
					Halt:            string(workflows.HaltSynthesisFailed),
					SynthesisReason: pipeline.CancelReasonCancelledByUser,
				},
			},
			want: "Speech synthesis canceled: CancelledByUser\n",
		},
		{
			name: "synthesis error",
			result: &workflows.WorkflowResult{
				Success: true,
				Report: pipeline.RunReport{
					Halt:    string(workflows.HaltSynthesisFailed),
					Message: "Error during speech synthesis: connection refused",
				},
			},
			want: "Error during speech synthesis: connection refused\n",
		},
		{
			name: "no caption",
			result: &workflows.WorkflowResult{
				Report: pipeline.RunReport{Halt: string(workflows.HaltNoCaption), Message: "No caption found."},
			},
			want: "No caption found.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			PrintNarrateOutcome(&out, tt.result)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestPrintCaption(t *testing.T) {
	var out bytes.Buffer
	PrintCaption(&out, &workflows.WorkflowResult{Success: true, Caption: &pipeline.Caption{Text: "a red car"}})
	PrintCaption(&out, &workflows.WorkflowResult{Report: pipeline.RunReport{Message: "Error: Access denied"}})
	assert.Equal(t, "a red car\nError: Access denied\n", out.String())
}

func TestAskImagePathCompletesImageFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.png"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.JPG"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644))

	assert.Equal(t, []string{filepath.Join(dir, "a.JPG"), filepath.Join(dir, "b.png")}, ImageFiles(dir))

	in := &fakeReader{lines: []string{"  photo.png "}}
	path, err := AskImagePath(in)
	require.NoError(t, err)
	assert.Equal(t, "photo.png", path)
	assert.Equal(t, []string{"Image path: "}, in.prompts)
}
