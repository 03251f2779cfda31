package openai

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

const captionPrompt = "Describe this image in one short sentence. Reply with the sentence only. " +
	"If there is nothing recognizable in the image, reply with an empty message."

// VisionClient captions images with a vision-capable chat model
type VisionClient struct {
	client *openai.Client
	model  string
}

func NewVisionClient(client *openai.Client, model string) *VisionClient {
	return &VisionClient{client: client, model: model}
}

// Caption implements the caption capability. An empty completion means the
// model had nothing to describe.
func (c *VisionClient) Caption(ctx context.Context, image []byte) (*pipeline.Caption, error) {
	dataURL := "data:" + http.DetectContentType(image) + ";base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: captionPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailLow},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, serviceError("caption", err)
	}

	if len(resp.Choices) == 0 {
		return nil, nil
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, nil
	}

	return &pipeline.Caption{Text: text}, nil
}
