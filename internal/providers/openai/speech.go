package openai

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tendant/simple-caption-pipeline/internal/speech"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// SpeechClient synthesizes WAV audio with the OpenAI TTS endpoint
type SpeechClient struct {
	client *openai.Client
	voice  openai.SpeechVoice
}

func NewSpeechClient(client *openai.Client, voice string) *SpeechClient {
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &SpeechClient{client: client, voice: openai.SpeechVoice(voice)}
}

// Synthesize implements speech.Client
func (c *SpeechClient) Synthesize(ctx context.Context, text string) (*speech.Audio, error) {
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          c.voice,
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		return nil, serviceError("speech", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, &pipeline.ServiceError{Service: serviceName, Op: "speech", Err: fmt.Errorf("failed to read audio: %w", err)}
	}

	return &speech.Audio{Data: data, MimeType: "audio/wav", Ext: "wav"}, nil
}
