package azure

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/tendant/simple-caption-pipeline/internal/speech"
)

const speechOutputFormat = "riff-24khz-16bit-mono-pcm"

// SpeechClient synthesizes speech with the Azure AI Speech REST API
type SpeechClient struct {
	endpoint   string
	key        string
	voice      string
	httpClient *http.Client
}

// NewSpeechClient creates a client for region. endpoint may be empty to use
// the regional TTS endpoint.
func NewSpeechClient(region, key, voice, endpoint string, httpClient *http.Client) *SpeechClient {
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.tts.speech.microsoft.com", region)
	}
	return &SpeechClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		key:        key,
		voice:      voice,
		httpClient: defaultHTTPClient(httpClient),
	}
}

// Synthesize implements speech.Client
func (c *SpeechClient) Synthesize(ctx context.Context, text string) (*speech.Audio, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/cognitiveservices/v1", bytes.NewReader(c.ssml(text)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", speechOutputFormat)
	req.Header.Set("User-Agent", "simple-caption-pipeline")

	body, err := do(c.httpClient, serviceSpeech, "synthesize", req)
	if err != nil {
		return nil, err
	}

	return &speech.Audio{Data: body, MimeType: "audio/wav", Ext: "wav"}, nil
}

func (c *SpeechClient) ssml(text string) []byte {
	var b bytes.Buffer
	b.WriteString(`<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="en-US">`)
	b.WriteString(`<voice name="`)
	_ = xml.EscapeText(&b, []byte(c.voice))
	b.WriteString(`">`)
	_ = xml.EscapeText(&b, []byte(text))
	b.WriteString(`</voice></speak>`)
	return b.Bytes()
}
