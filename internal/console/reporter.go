package console

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/tendant/simple-caption-pipeline/internal/workflows"
)

// Reporter prints stage progress lines
type Reporter struct {
	out io.Writer
}

// NewReporter creates a reporter writing to out
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Report implements workflows.Reporter
func (r *Reporter) Report(stage workflows.Stage, detail string) {
	switch stage {
	case workflows.StageCaptionRequested:
		fmt.Fprintln(r.out, "Analyzing the image...")
	case workflows.StageCaptionObtained:
		fmt.Fprintf(r.out, "Image description: %s\n", detail)
	case workflows.StageTranslationRequested:
		fmt.Fprintln(r.out, "Translating the caption...")
	case workflows.StageTranslationObtained:
		fmt.Fprintf(r.out, "Translated description: %s\n", detail)
	case workflows.StageSynthesisRequested:
		fmt.Fprintln(r.out, "Converting text to speech...")
	}
}

// PrintNarrateOutcome prints how a narrate run ended
func PrintNarrateOutcome(out io.Writer, result *workflows.WorkflowResult) {
	report := result.Report

	switch workflows.Halt(report.Halt) {
	case "":
		fmt.Fprintln(out, "Speech synthesized successfully.")
		if s := result.Synthesis; s != nil && s.Location != "" && s.Location != "speaker" {
			fmt.Fprintf(out, "Audio (%s) written to %s\n", humanize.Bytes(uint64(s.Bytes)), s.Location)
		}

	case workflows.HaltSynthesisFailed:
		if result.Synthesis == nil {
			fmt.Fprintln(out, report.Message)
			return
		}
		fmt.Fprintf(out, "Speech synthesis canceled: %s\n", report.SynthesisReason)
		if report.SynthesisDetails != "" {
			fmt.Fprintf(out, "Error details: %s\n", report.SynthesisDetails)
		}

	default:
		fmt.Fprintln(out, report.Message)
	}
}

// PrintCaption prints the caption alone, or the reason there is none
func PrintCaption(out io.Writer, result *workflows.WorkflowResult) {
	if result.Success && result.Caption != nil {
		fmt.Fprintln(out, result.Caption.Text)
		return
	}
	fmt.Fprintln(out, result.Report.Message)
}
