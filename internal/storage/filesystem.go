package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/simple-caption-pipeline/internal/imageprep"
)

// FilesystemStorage serves images from a local directory. Content IDs are
// file names relative to the directory. Derived outputs are written under
// <dir>/derived/<content id>/.
type FilesystemStorage struct {
	baseDir string
}

// NewFilesystemStorage creates a storage rooted at an existing directory
func NewFilesystemStorage(baseDir string) (*FilesystemStorage, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("image directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("image directory: %s is not a directory", baseDir)
	}

	return &FilesystemStorage{
		baseDir: filepath.Clean(baseDir),
	}, nil
}

// resolve joins key to the base directory, rejecting paths that escape it
func (fs *FilesystemStorage) resolve(key string) (string, error) {
	path := filepath.Join(fs.baseDir, key)
	rel, err := filepath.Rel(fs.baseDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid key: path traversal detected")
	}
	return path, nil
}

// GetReaderByContentID opens the image file named contentID
func (fs *FilesystemStorage) GetReaderByContentID(ctx context.Context, contentID string) (io.ReadCloser, error) {
	path, err := fs.resolve(contentID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", contentID)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Exists reports whether key names a regular file with an image extension
func (fs *FilesystemStorage) Exists(ctx context.Context, key string) (bool, error) {
	if !imageprep.HasImageExtension(key) {
		return false, nil
	}

	path, err := fs.resolve(key)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file: %w", err)
	}

	return info.Mode().IsRegular(), nil
}

func (fs *FilesystemStorage) derivedPath(contentID, variant string, meta map[string]string) (string, error) {
	return fs.resolve(filepath.Join("derived", contentID, fileNameOrDefault(meta, variant)))
}

// HasDerived checks whether the derived file for variant was already written
func (fs *FilesystemStorage) HasDerived(ctx context.Context, contentID string, derivedType string, variant string) (bool, error) {
	dir, err := fs.resolve(filepath.Join("derived", contentID))
	if err != nil {
		return false, err
	}

	matches, err := filepath.Glob(filepath.Join(dir, variant+".*"))
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

// PutDerived writes r next to the source image and returns the relative path
func (fs *FilesystemStorage) PutDerived(ctx context.Context, contentID string, derivedType string, variant string, r io.Reader, meta map[string]string) (string, error) {
	path, err := fs.derivedPath(contentID, variant, meta)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create derived directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create derived file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write derived file: %w", err)
	}

	rel, _ := filepath.Rel(fs.baseDir, path)
	return rel, nil
}
