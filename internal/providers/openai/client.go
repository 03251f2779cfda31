// Package openai implements the caption, translation and speech capabilities
// with the OpenAI API.
package openai

import (
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

const serviceName = "openai"

// NewClient builds a go-openai client. baseURL may be empty for the public API.
func NewClient(apiKey, baseURL string, httpClient *http.Client) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return openai.NewClientWithConfig(cfg)
}

// serviceError maps go-openai errors onto *pipeline.ServiceError
func serviceError(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		se := &pipeline.ServiceError{
			Service:    serviceName,
			Op:         op,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
		if apiErr.Code != nil {
			se.Code = fmt.Sprint(apiErr.Code)
		}
		return se
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &pipeline.ServiceError{
			Service:    serviceName,
			Op:         op,
			StatusCode: reqErr.HTTPStatusCode,
			Err:        err,
		}
	}

	return &pipeline.ServiceError{Service: serviceName, Op: op, Err: err}
}
