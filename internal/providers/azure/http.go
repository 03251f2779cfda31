// Package azure implements the caption, translation and speech capabilities
// on top of the Azure AI services REST APIs.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

const (
	serviceVision     = "vision"
	serviceTranslator = "translator"
	serviceSpeech     = "speech"
)

// errorBody is the error envelope shared by the Azure AI services.
// Translator returns a numeric code, Vision a string one.
type errorBody struct {
	Error struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"error"`
}

func defaultHTTPClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// do executes req and returns the response body. Transport failures and
// non-2xx statuses are reported as *pipeline.ServiceError.
func do(httpClient *http.Client, service, op string, req *http.Request) ([]byte, error) {
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &pipeline.ServiceError{Service: service, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pipeline.ServiceError{Service: service, Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(service, op, resp.StatusCode, body)
	}

	return body, nil
}

func statusError(service, op string, status int, body []byte) *pipeline.ServiceError {
	se := &pipeline.ServiceError{Service: service, Op: op, StatusCode: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
		se.Message = eb.Error.Message
		se.Code = strings.Trim(string(eb.Error.Code), `"`)
		return se
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		se.Message = text
	} else {
		se.Message = http.StatusText(status)
	}
	return se
}

func newJSONRequest(ctx context.Context, method, url string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
