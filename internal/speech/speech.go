// Package speech turns text into audio with a TTS client and delivers it to
// an audio sink (speaker, directory, bucket).
package speech

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/tendant/simple-caption-pipeline/internal/logging"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// Audio is encoded speech returned by a TTS client
type Audio struct {
	Data     []byte
	MimeType string
	Ext      string // file extension without the dot
}

// Client synthesizes text into audio.
// Errors carrying an HTTP status are treated as a service-side cancellation;
// transport errors are passed through.
type Client interface {
	Synthesize(ctx context.Context, text string) (*Audio, error)
}

// Sink delivers synthesized audio and returns where it went
type Sink interface {
	Write(ctx context.Context, audio *Audio) (string, error)
}

// Service composes a Client and a Sink into the pipeline's speech capability
type Service struct {
	client Client
	sink   Sink
	logger *zap.SugaredLogger
}

// NewService creates a speech service. A nil sink keeps audio in the outcome only.
func NewService(client Client, sink Sink, logger *zap.SugaredLogger) *Service {
	if sink == nil {
		sink = NopSink{}
	}
	return &Service{
		client: client,
		sink:   sink,
		logger: logging.OrNop(logger),
	}
}

// Synthesize speaks text. Service-side rejections come back as a Canceled
// outcome with a nil error; only failures to reach the service are errors.
func (s *Service) Synthesize(ctx context.Context, text string) (*pipeline.SynthesisOutcome, error) {
	audio, err := s.client.Synthesize(ctx, text)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return canceled(pipeline.CancelReasonCancelledByUser, ""), nil
		}
		var se *pipeline.ServiceError
		if errors.As(err, &se) && se.StatusCode != 0 {
			return canceled(pipeline.CancelReasonError, se.Diagnostic()), nil
		}
		return nil, err
	}

	if audio == nil || len(audio.Data) == 0 {
		return canceled(pipeline.CancelReasonError, "no audio data returned"), nil
	}

	location, err := s.sink.Write(ctx, audio)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return canceled(pipeline.CancelReasonCancelledByUser, ""), nil
		}
		return canceled(pipeline.CancelReasonError, fmt.Sprintf("audio output: %v", err)), nil
	}

	s.logger.Infof("Speech synthesized: %s %s", humanize.Bytes(uint64(len(audio.Data))), audio.MimeType)

	return &pipeline.SynthesisOutcome{
		Status:   pipeline.SynthesisCompleted,
		Location: location,
		Bytes:    len(audio.Data),
		MimeType: audio.MimeType,
		Audio:    audio.Data,
	}, nil
}

func canceled(reason, details string) *pipeline.SynthesisOutcome {
	return &pipeline.SynthesisOutcome{
		Status:  pipeline.SynthesisCanceled,
		Reason:  reason,
		Details: details,
	}
}
