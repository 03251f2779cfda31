// Package elevenlabs implements speech synthesis with the ElevenLabs API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tendant/simple-caption-pipeline/internal/speech"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

const (
	serviceName     = "elevenlabs"
	defaultBaseURL  = "https://api.elevenlabs.io"
	pcmSampleRate   = 24000
	pcmOutputFormat = "pcm_24000"
	defaultModelID  = "eleven_multilingual_v2"
)

// Client requests raw PCM and wraps it as WAV so it can be played directly
type Client struct {
	baseURL    string
	apiKey     string
	voiceID    string
	httpClient *http.Client
}

// NewClient creates a client. baseURL may be empty for the public API.
func NewClient(apiKey, voiceID, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		voiceID:    voiceID,
		httpClient: httpClient,
	}
}

type synthesizeRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize implements speech.Client
func (c *Client) Synthesize(ctx context.Context, text string) (*speech.Audio, error) {
	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s", c.baseURL, c.voiceID, pcmOutputFormat)

	payload, err := json.Marshal(synthesizeRequest{Text: text, ModelID: defaultModelID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &pipeline.ServiceError{Service: serviceName, Op: "synthesize", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pipeline.ServiceError{Service: serviceName, Op: "synthesize", StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= 300 {
		return nil, &pipeline.ServiceError{
			Service:    serviceName,
			Op:         "synthesize",
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body, resp.StatusCode),
		}
	}

	wavData, err := speech.PCMToWAV(body, pcmSampleRate)
	if err != nil {
		return nil, fmt.Errorf("tts wav wrap failed: %w", err)
	}

	return &speech.Audio{Data: wavData, MimeType: "audio/wav", Ext: "wav"}, nil
}

// errorMessage extracts detail from {"detail":{"message":...}} or {"detail":"..."}
func errorMessage(body []byte, status int) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 {
		var detail struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Detail, &detail); err == nil && detail.Message != "" {
			return detail.Message
		}
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil && s != "" {
			return s
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(status)
}
