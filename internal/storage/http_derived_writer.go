package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPDerivedWriter provides write access for derived content via simple-content HTTP API
type HTTPDerivedWriter struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPDerivedWriter creates a new HTTP-based derived content writer
func NewHTTPDerivedWriter(baseURL string, timeout time.Duration) *HTTPDerivedWriter {
	return &HTTPDerivedWriter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type derivedEntry struct {
	ID             string `json:"id"`
	DerivationType string `json:"derivation_type"`
	Variant        string `json:"variant"`
}

// HasDerived checks if a derived output already exists for the given type and variant
func (dw *HTTPDerivedWriter) HasDerived(ctx context.Context, contentID string, derivedType string, variant string) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/v1/contents/%s/derived?derivation_type=%s",
		dw.baseURL, contentID, url.QueryEscape(derivedType))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := dw.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to list derived content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("list derived failed with status %d", resp.StatusCode)
	}

	var entries []derivedEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	for _, e := range entries {
		if e.DerivationType == derivedType && e.Variant == variant {
			return true, nil
		}
	}
	return false, nil
}

// PutDerived uploads derived content as multipart form data via simple-content HTTP API
func (dw *HTTPDerivedWriter) PutDerived(ctx context.Context, contentID string, derivedType string, variant string, r io.Reader, meta map[string]string) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	fields := map[string]string{
		"derivation_type": derivedType,
		"variant":         variant,
		"tags":            strings.Join(derivedTags(derivedType, variant, meta), ","),
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return "", fmt.Errorf("failed to build request: %w", err)
		}
	}

	part, err := form.CreateFormFile("file", fileNameOrDefault(meta, variant))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/contents/%s/derived", dw.baseURL, contentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := dw.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create derived content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("create derived failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var created derivedEntry
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("no ID in response")
	}

	return created.ID, nil
}
