package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tendant/simple-caption-pipeline/internal/languages"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

const translatePrompt = `You are a translation engine. Translate the user's message into the language with code %q.
Respond with a JSON object: {"translated_text": "<translation>", "source_language": "<detected language code of the input>"}.
Do not add explanations.`

// TranslatorClient translates with a chat model in JSON mode
type TranslatorClient struct {
	client *openai.Client
	model  string
}

func NewTranslatorClient(client *openai.Client, model string) *TranslatorClient {
	return &TranslatorClient{client: client, model: model}
}

type translation struct {
	TranslatedText string `json:"translated_text"`
	SourceLanguage string `json:"source_language"`
}

// Translate implements the translation capability
func (c *TranslatorClient) Translate(ctx context.Context, text string, target languages.Target) (*pipeline.TranslationResult, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(translatePrompt, target.Code())},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, serviceError("translate", err)
	}

	if len(resp.Choices) == 0 {
		return nil, pipeline.ErrNoTranslation
	}

	var out translation
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, &pipeline.ServiceError{Service: serviceName, Op: "translate", Err: fmt.Errorf("malformed translation response: %w", err)}
	}
	if out.TranslatedText == "" {
		return nil, pipeline.ErrNoTranslation
	}

	return &pipeline.TranslationResult{
		TranslatedText:         out.TranslatedText,
		DetectedSourceLanguage: out.SourceLanguage,
		TargetLanguage:         target.Code(),
	}, nil
}
