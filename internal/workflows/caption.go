package workflows

import "fmt"

// CaptionWorkflow only describes an image
type CaptionWorkflow struct {
	svc *Services
}

// NewCaptionWorkflow creates the caption-only workflow
func NewCaptionWorkflow(svc *Services) *CaptionWorkflow {
	return &CaptionWorkflow{svc: svc}
}

// Name returns the workflow name
func (w *CaptionWorkflow) Name() string {
	return "CaptionWorkflow"
}

// Execute runs the caption workflow
func (w *CaptionWorkflow) Execute(wctx *WorkflowContext) (*WorkflowResult, error) {
	r := newRun(wctx, w.svc.logger())

	_, halt, message, err := w.svc.captionImage(r)
	if halt != "" {
		if halt == HaltCaptionFailed {
			message = fmt.Sprintf("Error: %s", message)
		}
		return r.halt(halt, message, err)
	}
	return r.done()
}
