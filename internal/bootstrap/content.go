package bootstrap

import (
	"fmt"

	"github.com/tendant/simple-content/pkg/simplecontent/presets"
	"go.uber.org/zap"

	"github.com/tendant/simple-caption-pipeline/internal/config"
	"github.com/tendant/simple-caption-pipeline/internal/logging"
	"github.com/tendant/simple-caption-pipeline/internal/storage"
	"github.com/tendant/simple-caption-pipeline/internal/workflows"
)

// Content is the content storage source images are read from and speech
// audio is written back to
type Content struct {
	Reader  workflows.ContentReader
	Writer  workflows.DerivedWriter
	Details *storage.ContentReader // embedded mode only
	Upload  *storage.Uploader      // embedded mode only
	Mode    string
	cleanup func()
}

// OpenContent connects to simple-content over HTTP when CONTENT_API_URL is
// set, otherwise embeds it with the development preset (in-memory
// repository and filesystem storage under STORAGE_DIR)
func OpenContent(cfg *config.Config, logger *zap.SugaredLogger) (*Content, error) {
	logger = logging.OrNop(logger)
	if cfg.Content.APIURL != "" {
		logger.Infof("Using simple-content HTTP API: %s", cfg.Content.APIURL)
		return &Content{
			Reader: storage.NewHTTPContentReader(cfg.Content.APIURL, cfg.HTTPTimeout),
			Writer: storage.NewHTTPDerivedWriter(cfg.Content.APIURL, cfg.HTTPTimeout),
			Mode:   "http",
		}, nil
	}

	svc, cleanup, err := presets.NewDevelopment(
		presets.WithDevStorage(cfg.Content.StorageDir),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize simple-content service: %w", err)
	}
	logger.Infof("Using embedded simple-content (storage directory: %s)", cfg.Content.StorageDir)

	reader := storage.NewContentReader(svc)
	return &Content{
		Reader:  reader,
		Writer:  storage.NewDerivedWriter(svc),
		Details: reader,
		Upload:  storage.NewUploader(svc),
		Mode:    "embedded",
		cleanup: cleanup,
	}, nil
}

// Close releases the embedded service
func (c *Content) Close() {
	if c.cleanup != nil {
		c.cleanup()
	}
}
