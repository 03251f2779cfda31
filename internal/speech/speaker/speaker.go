// Package speaker plays synthesized speech on the local audio device.
// It links PortAudio through cgo, so only interactive binaries import it.
package speaker

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"github.com/tendant/simple-caption-pipeline/internal/logging"
	"github.com/tendant/simple-caption-pipeline/internal/speech"
)

const framesPerBuffer = 1024

// Sink plays WAV audio on the default output device
type Sink struct {
	mu     sync.Mutex // one clip at a time
	logger *zap.SugaredLogger
}

func NewSink(logger *zap.SugaredLogger) *Sink {
	return &Sink{logger: logging.OrNop(logger)}
}

// Write blocks until playback finishes or ctx is done
func (s *Sink) Write(ctx context.Context, audio *speech.Audio) (string, error) {
	samples, channels, sampleRate, err := speech.DecodeWAV(audio.Data)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := portaudio.Initialize(); err != nil {
		return "", fmt.Errorf("initialize audio: %w", err)
	}
	defer portaudio.Terminate()

	out := make([]int16, framesPerBuffer*channels)
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), framesPerBuffer, &out)
	if err != nil {
		return "", fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return "", fmt.Errorf("starting stream: %w", err)
	}
	defer stream.Stop()

	s.logger.Debugf("Playing %d samples at %d Hz (%d channels)", len(samples), sampleRate, channels)

	for off := 0; off < len(samples); off += len(out) {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		n := copy(out, samples[off:])
		for i := n; i < len(out); i++ {
			out[i] = 0
		}

		if err := stream.Write(); err != nil {
			return "", fmt.Errorf("writing to stream: %w", err)
		}
	}

	return "speaker", nil
}
