// Package storage reads source images from and writes speech audio back to
// content storage, either an embedded simple-content service, the
// simple-content HTTP API, or a plain directory.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/tendant/simple-content/pkg/simplecontent"
)

// Default owner and tenant for content uploaded by the pipeline
var (
	DefaultOwnerID  = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	DefaultTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

// ContentReader provides read access to content via simple-content service
type ContentReader struct {
	service simplecontent.Service
}

// NewContentReader creates a new content reader using simple-content service
func NewContentReader(service simplecontent.Service) *ContentReader {
	return &ContentReader{
		service: service,
	}
}

// GetReaderByContentID returns a reader for content by content ID
func (cr *ContentReader) GetReaderByContentID(ctx context.Context, contentID string) (io.ReadCloser, error) {
	// Parse content ID
	id, err := uuid.Parse(contentID)
	if err != nil {
		return nil, fmt.Errorf("invalid content ID: %w", err)
	}

	// Download content from simple-content service
	reader, err := cr.service.DownloadContent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to download content: %w", err)
	}

	return reader, nil
}

// Exists checks if content exists by content ID. Malformed IDs do not exist.
func (cr *ContentReader) Exists(ctx context.Context, key string) (bool, error) {
	id, err := uuid.Parse(key)
	if err != nil {
		return false, nil
	}

	// simple-content reports a missing row as an error
	if _, err := cr.service.GetContent(ctx, id); err != nil {
		return false, nil
	}
	return true, nil
}

// ImageInfo describes stored source content
type ImageInfo struct {
	ContentID string `json:"content_id"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mime_type"`
}

// Details returns size and MIME type of stored content
func (cr *ContentReader) Details(ctx context.Context, contentID string) (*ImageInfo, error) {
	id, err := uuid.Parse(contentID)
	if err != nil {
		return nil, fmt.Errorf("invalid content ID: %w", err)
	}

	details, err := cr.service.GetContentDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get content details: %w", err)
	}

	return &ImageInfo{
		ContentID: contentID,
		Size:      details.FileSize,
		MimeType:  details.MimeType,
	}, nil
}

// Uploader stores source images in simple-content
type Uploader struct {
	service simplecontent.Service
}

// NewUploader creates an uploader for service
func NewUploader(service simplecontent.Service) *Uploader {
	return &Uploader{service: service}
}

// UploadImage stores data as new content and returns its content ID
func (u *Uploader) UploadImage(ctx context.Context, fileName, mimeType string, data []byte) (string, error) {
	content, err := u.service.UploadContent(ctx, simplecontent.UploadContentRequest{
		OwnerID:      DefaultOwnerID,
		TenantID:     DefaultTenantID,
		Name:         fileName,
		DocumentType: mimeType,
		Reader:       bytes.NewReader(data),
		FileName:     fileName,
		Tags:         []string{"image", "caption-pipeline"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload content: %w", err)
	}
	return content.ID.String(), nil
}
