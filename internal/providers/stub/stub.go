// Package stub provides deterministic, no-network implementations of every
// capability for CI and local end-to-end runs.
package stub

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/tendant/simple-caption-pipeline/internal/languages"
	"github.com/tendant/simple-caption-pipeline/internal/speech"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// SourceLanguage is the language the stub pretends every input is written in
const SourceLanguage = "en"

// Client implements caption, catalog, translation and speech
type Client struct {
	catalog *languages.StaticFetcher
}

// NewClient serves the given comma separated codes as its catalog
func NewClient(codes string) *Client {
	if codes == "" {
		codes = languages.DefaultCodes
	}
	return &Client{catalog: languages.NewStaticFetcher(codes)}
}

// Caption returns a caption derived from the image hash. Empty input has no caption.
func (c *Client) Caption(ctx context.Context, image []byte) (*pipeline.Caption, error) {
	if len(image) == 0 {
		return nil, nil
	}
	sum := sha256.Sum256(image)
	return &pipeline.Caption{
		Text:       fmt.Sprintf("a stub image %s", hex.EncodeToString(sum[:4])),
		Confidence: 0.5,
	}, nil
}

func (c *Client) Languages(ctx context.Context) ([]pipeline.Language, error) {
	return c.catalog.Languages(ctx)
}

// Translate is the identity when the target is the source language,
// otherwise it prefixes the text with the target code
func (c *Client) Translate(ctx context.Context, text string, target languages.Target) (*pipeline.TranslationResult, error) {
	translated := text
	if target.Code() != SourceLanguage {
		translated = fmt.Sprintf("[%s] %s", target.Code(), text)
	}
	return &pipeline.TranslationResult{
		TranslatedText:         translated,
		DetectedSourceLanguage: SourceLanguage,
		TargetLanguage:         target.Code(),
	}, nil
}

// Synthesize returns silence, 10ms per input character
func (c *Client) Synthesize(ctx context.Context, text string) (*speech.Audio, error) {
	const sampleRate = 16000
	pcm := make([]byte, len(text)*sampleRate/100*2)
	data, err := speech.PCMToWAV(pcm, sampleRate)
	if err != nil {
		return nil, err
	}
	return &speech.Audio{Data: data, MimeType: "audio/wav", Ext: "wav"}, nil
}
