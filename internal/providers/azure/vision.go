package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

const visionAPIVersion = "2023-10-01"

// VisionClient captions images with Azure AI Vision Image Analysis 4.0
type VisionClient struct {
	endpoint   string
	key        string
	httpClient *http.Client
}

// NewVisionClient creates a client for the given AI services endpoint
func NewVisionClient(endpoint, key string, httpClient *http.Client) *VisionClient {
	return &VisionClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		key:        key,
		httpClient: defaultHTTPClient(httpClient),
	}
}

type analyzeResponse struct {
	CaptionResult *struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"captionResult"`
}

// Caption requests the caption feature for image. A nil caption with a nil
// error means the service found nothing to describe.
func (c *VisionClient) Caption(ctx context.Context, image []byte) (*pipeline.Caption, error) {
	url := fmt.Sprintf("%s/computervision/imageanalysis:analyze?features=caption&api-version=%s", c.endpoint, visionAPIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	body, err := do(c.httpClient, serviceVision, "analyze", req)
	if err != nil {
		return nil, err
	}

	var result analyzeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &pipeline.ServiceError{Service: serviceVision, Op: "analyze", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if result.CaptionResult == nil || strings.TrimSpace(result.CaptionResult.Text) == "" {
		return nil, nil
	}

	return &pipeline.Caption{
		Text:       result.CaptionResult.Text,
		Confidence: result.CaptionResult.Confidence,
	}, nil
}
