package pipeline

// ProcessRequest represents a request to run a pipeline job
type ProcessRequest struct {
	ContentID    string            `json:"content_id,omitempty"`
	ObjectKey    string            `json:"object_key,omitempty"`
	Job          string            `json:"job"` // narrate, translate, caption
	LanguageCode string            `json:"language_code,omitempty"`
	Text         string            `json:"text,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// ProcessResponse represents the response from triggering processing
type ProcessResponse struct {
	RunID string `json:"run_id"`
}

// TranslateRequest is the body of the translate form and JSON endpoint
type TranslateRequest struct {
	InputText    string `json:"input_text"`
	LanguageCode string `json:"language_code"`
}

// TranslateResponse carries either a translation or a user-facing error
type TranslateResponse struct {
	TranslatedText string `json:"translated_text,omitempty"`
	SourceLanguage string `json:"source_language,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Caption is a short natural-language description of an image
type Caption struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Language is one entry of a translation language catalog
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name,omitempty"`
	NativeName string `json:"native_name,omitempty"`
}

// TranslationResult is the first translation entry returned for a text
type TranslationResult struct {
	TranslatedText         string `json:"translated_text"`
	DetectedSourceLanguage string `json:"detected_source_language"`
	TargetLanguage         string `json:"target_language"`
}

// SynthesisStatus is the terminal state of a speech synthesis call
type SynthesisStatus string

const (
	SynthesisCompleted SynthesisStatus = "Completed"
	SynthesisCanceled  SynthesisStatus = "Canceled"
)

// Cancellation reasons reported with a canceled synthesis
const (
	CancelReasonError           = "Error"
	CancelReasonCancelledByUser = "CancelledByUser"
)

// SynthesisOutcome reports how speech synthesis ended
type SynthesisOutcome struct {
	Status   SynthesisStatus `json:"status"`
	Reason   string          `json:"reason,omitempty"`
	Details  string          `json:"details,omitempty"`
	Location string          `json:"location,omitempty"`
	Bytes    int             `json:"bytes,omitempty"`
	MimeType string          `json:"mime_type,omitempty"`
	Audio    []byte          `json:"-"`
}

// Completed reports whether synthesis produced audio
func (o *SynthesisOutcome) Completed() bool {
	return o != nil && o.Status == SynthesisCompleted
}

// RunReport is the serializable summary of one pipeline run
type RunReport struct {
	RunID            string `json:"run_id"`
	Job              string `json:"job"`
	ContentID        string `json:"content_id,omitempty"`
	Success          bool   `json:"success"`
	Stage            string `json:"stage"`
	Halt             string `json:"halt,omitempty"`
	Message          string `json:"message,omitempty"`
	Caption          string `json:"caption,omitempty"`
	LanguageCode     string `json:"language_code,omitempty"`
	TranslatedText   string `json:"translated_text,omitempty"`
	SourceLanguage   string `json:"source_language,omitempty"`
	SynthesisStatus  string `json:"synthesis_status,omitempty"`
	SynthesisReason  string `json:"synthesis_reason,omitempty"`
	SynthesisDetails string `json:"synthesis_details,omitempty"`
	AudioLocation    string `json:"audio_location,omitempty"`
	DerivedContentID string `json:"derived_content_id,omitempty"`
}

// RunStatus combines the durable execution state of a run with its report
type RunStatus struct {
	RunID  string     `json:"run_id"`
	State  string     `json:"state"`
	Report *RunReport `json:"report,omitempty"`
}

// JobType constants
const (
	JobNarrate   = "narrate"
	JobTranslate = "translate"
	JobCaption   = "caption"
)

// DerivedType constants (match simple-content conventions)
const (
	DerivedTypeSpeech = "speech"
)
