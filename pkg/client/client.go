// Package client is an HTTP client for the pipeline worker API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// ErrRunNotFound is returned by Status for unknown run IDs
var ErrRunNotFound = errors.New("run not found")

// Client is an HTTP client for triggering pipeline processing
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new pipeline client
func New(baseURL string) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{
		Timeout: 30 * time.Second,
	})
}

// NewWithHTTPClient creates a new pipeline client with a custom HTTP client
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Process enqueues a durable run and returns its run ID
func (c *Client) Process(ctx context.Context, req pipeline.ProcessRequest) (*pipeline.ProcessResponse, error) {
	var resp pipeline.ProcessResponse
	if err := c.postJSON(ctx, "/v1/process", req, http.StatusAccepted, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Translate translates text into a catalog language. A rejected request
// (missing fields, unsupported language, failed translation) is returned as
// an error carrying the server's message.
func (c *Client) Translate(ctx context.Context, text, languageCode string) (*pipeline.TranslateResponse, error) {
	var resp pipeline.TranslateResponse
	err := c.postJSON(ctx, "/v1/translate", pipeline.TranslateRequest{
		InputText:    text,
		LanguageCode: languageCode,
	}, http.StatusOK, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Narrate uploads an image and runs caption, translation and speech synchronously
func (c *Client) Narrate(ctx context.Context, fileName string, image []byte, languageCode string) (*pipeline.RunReport, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := fw.Write(image); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	if err := mw.WriteField("language_code", languageCode); err != nil {
		return nil, fmt.Errorf("failed to write field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/narrate", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	// Halted runs still carry a report, whatever the status code
	var report pipeline.RunReport
	if _, err := c.do(httpReq, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Status returns the state of a run
func (c *Client) Status(ctx context.Context, runID string) (*pipeline.RunStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/runs/"+url.PathEscape(runID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var status pipeline.RunStatus
	code, err := c.do(httpReq, &status)
	if err != nil {
		return nil, err
	}
	switch code {
	case http.StatusOK:
		return &status, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	default:
		return nil, fmt.Errorf("unexpected status %d", code)
	}
}

func (c *Client) postJSON(ctx context.Context, path string, in interface{}, want int, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// do executes req and decodes a JSON body into out for any status
func (c *Client) do(req *http.Request, out interface{}) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}

// statusError turns an unexpected response into an error with the server's message
func statusError(resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(bodyBytes, &e) == nil && e.Error != "" {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, e.Error)
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(bodyBytes))
}
