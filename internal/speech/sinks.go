package speech

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/tendant/simple-caption-pipeline/internal/logging"
)

// NopSink keeps audio in memory only
type NopSink struct{}

func (NopSink) Write(ctx context.Context, audio *Audio) (string, error) {
	return "", nil
}

// FileSink writes each audio clip to a new file under a directory
type FileSink struct {
	dir    string
	logger *zap.SugaredLogger
}

// NewFileSink creates dir if needed
func NewFileSink(dir string, logger *zap.SugaredLogger) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}
	return &FileSink{dir: dir, logger: logging.OrNop(logger)}, nil
}

func (s *FileSink) Write(ctx context.Context, audio *Audio) (string, error) {
	name := fmt.Sprintf("%s.%s", uuid.New().String(), extOrDefault(audio.Ext))
	p := filepath.Join(s.dir, name)

	if err := os.WriteFile(p, audio.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	s.logger.Infof("Audio written to %s (%s)", p, humanize.Bytes(uint64(len(audio.Data))))
	return p, nil
}

// S3Config configures an S3Sink
type S3Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Prefix        string
	UseSSL        bool
	PublicBaseURL string // defaults to scheme://endpoint/bucket
}

// S3Sink uploads audio to an S3-compatible bucket
type S3Sink struct {
	client  *minio.Client
	bucket  string
	prefix  string
	baseURL string
	logger  *zap.SugaredLogger
}

// NewS3Sink connects to the bucket and checks that it exists
func NewS3Sink(ctx context.Context, cfg S3Config, logger *zap.SugaredLogger) (*S3Sink, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init S3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", cfg.Bucket)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "speech"
	}

	return &S3Sink{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  prefix,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logging.OrNop(logger),
	}, nil
}

func (s *S3Sink) Write(ctx context.Context, audio *Audio) (string, error) {
	key := path.Join(s.prefix, fmt.Sprintf("%s.%s", uuid.New().String(), extOrDefault(audio.Ext)))

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(audio.Data), int64(len(audio.Data)), minio.PutObjectOptions{
		ContentType:  audio.MimeType,
		UserMetadata: map[string]string{"uploaded-at": time.Now().Format(time.RFC3339)},
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	location := s.baseURL + "/" + key
	s.logger.Infof("Audio uploaded to %s (%s)", location, humanize.Bytes(uint64(len(audio.Data))))
	return location, nil
}

func extOrDefault(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return "wav"
	}
	return ext
}
