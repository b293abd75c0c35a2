// Package storage defines the object storage abstraction behind the upload provider.
// Backends: local filesystem (development) and S3-compatible object storage, which is
// how Aliyun OSS is reached.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/yi-nology/lab_portal/pkg/storage/object"
)

// Storage defines the interface for object storage operations.
type Storage interface {
	// PutObject uploads data under key. size may be -1 when unknown.
	PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) (*object.PutResult, error)

	// GetObject retrieves an object. The caller closes the reader.
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)

	// DeleteObject removes an object.
	DeleteObject(ctx context.Context, key string) (*object.DeleteResult, error)

	// ObjectExists checks if an object exists.
	ObjectExists(ctx context.Context, key string) (bool, error)

	// SignURL returns a time-limited GET URL for key.
	SignURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Type returns the storage type identifier: "local" or "s3".
	Type() string
}

// Is2xx reports whether status is a success code.
func Is2xx(status int) bool {
	return status >= 200 && status < 300
}
