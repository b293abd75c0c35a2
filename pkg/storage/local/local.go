// Package local implements the local filesystem storage adapter.
package local

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/yi-nology/lab_portal/pkg/storage/object"
)

// Storage implements the storage.Storage interface using local filesystem.
type Storage struct {
	basePath string
	baseURL  string
}

// New creates a new local storage adapter.
// basePath is the root directory for storing files (e.g., "data/uploads"),
// baseURL the path prefix the router serves it under (e.g., "/uploads").
func New(basePath, baseURL string) (*Storage, error) {
	if basePath == "" {
		basePath = "data/uploads"
	}
	if baseURL == "" {
		baseURL = "/uploads"
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	return &Storage{basePath: basePath, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// PutObject writes a file to the local filesystem.
func (s *Storage) PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) (*object.PutResult, error) {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		_ = os.Remove(fullPath)
		return nil, fmt.Errorf("write file: %w", err)
	}

	return &object.PutResult{Key: key, URL: s.objectURL(key), StatusCode: http.StatusOK}, nil
}

// GetObject reads a file from the local filesystem.
func (s *Storage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object not found: %s", key)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}

	return f, nil
}

// DeleteObject removes a file. A missing file is reported as a 404 result.
func (s *Storage) DeleteObject(ctx context.Context, key string) (*object.DeleteResult, error) {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return nil, err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return &object.DeleteResult{StatusCode: http.StatusNotFound}, nil
		}
		return nil, fmt.Errorf("delete file: %w", err)
	}

	// Ignore error if directory is not empty
	_ = os.Remove(filepath.Dir(fullPath))

	return &object.DeleteResult{StatusCode: http.StatusNoContent}, nil
}

// ObjectExists checks if a file exists in the local filesystem.
func (s *Storage) ObjectExists(ctx context.Context, key string) (bool, error) {
	fullPath, err := s.keyToPath(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat file: %w", err)
	}

	return true, nil
}

// SignURL returns the plain serving URL; local files are never private.
func (s *Storage) SignURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return s.objectURL(key), nil
}

// Type returns "local" as the storage type identifier.
func (s *Storage) Type() string {
	return "local"
}

func (s *Storage) objectURL(key string) string {
	return s.baseURL + "/" + strings.TrimPrefix(key, "/")
}

// keyToPath converts an object key to a full filesystem path inside basePath.
func (s *Storage) keyToPath(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.basePath, filepath.FromSlash(clean)), nil
}
