// Package upload implements the custom OSS upload provider: it stores media
// under a content-derived key and rewrites the public URL of the file descriptor.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/yi-nology/lab_portal/pkg/config"
	"github.com/yi-nology/lab_portal/pkg/storage"
	"github.com/yi-nology/lab_portal/pkg/storage/object"
	"go.uber.org/zap"
)

// ProviderName is recorded on every file stored by this provider.
const ProviderName = "custom-oss"

// DefaultSignedURLExpiry applies when no expiry is configured.
const DefaultSignedURLExpiry = 1800 * time.Second

var (
	// ErrNoContent is returned when a file carries neither a buffer nor a stream.
	ErrNoContent = errors.New("file must contain a buffer or a stream")
	// ErrTooLarge is returned when a streamed file exceeds the size limit.
	ErrTooLarge = errors.New("file exceeds the upload size limit")
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lab_portal_upload_provider_operations_total",
		Help: "Upload provider operations by kind and outcome.",
	}, []string{"operation", "outcome"})
	uploadedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lab_portal_upload_provider_bytes_total",
		Help: "Bytes transferred to the object store.",
	})
)

// File is the descriptor exchanged with the upload pipeline.
type File struct {
	Name             string
	Hash             string
	Ext              string
	Mime             string
	Size             int64
	Buffer           []byte
	Stream           io.Reader
	URL              string
	Provider         string
	ProviderMetadata *ProviderMetadata
}

// ProviderMetadata records where a file ended up.
type ProviderMetadata struct {
	UploadPath string `json:"uploadPath"`
	OSSURL     string `json:"ossUrl"`
	Region     string `json:"region"`
	Bucket     string `json:"bucket"`
}

// SignedURL is a time-limited read URL.
type SignedURL struct {
	URL string `json:"url"`
}

// Store is the subset of the object store the provider needs.
type Store interface {
	PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) (*object.PutResult, error)
	DeleteObject(ctx context.Context, key string) (*object.DeleteResult, error)
	SignURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Config holds the provider options.
type Config struct {
	UploadPath      string
	BaseURL         string
	Region          string
	Bucket          string
	ACL             string
	SignedURLExpiry time.Duration
	// SizeLimit caps how much of a stream is buffered; zero disables the cap.
	SizeLimit int64
}

// ConfigFrom maps service configuration onto provider options.
func ConfigFrom(oss config.OSSConfig, sizeLimit int64) Config {
	return Config{
		UploadPath:      oss.UploadPath,
		BaseURL:         oss.BaseURL,
		Region:          oss.Region,
		Bucket:          oss.Bucket,
		ACL:             oss.ACL,
		SignedURLExpiry: time.Duration(oss.SignedURLExpiry) * time.Second,
		SizeLimit:       sizeLimit,
	}
}

// Provider is the host contract of a storage provider.
type Provider interface {
	Upload(ctx context.Context, file *File) error
	UploadStream(ctx context.Context, file *File) error
	Delete(ctx context.Context, file *File) error
	IsPrivate() bool
	GetSignedURL(ctx context.Context, file *File) (*SignedURL, error)
}

// OSSProvider stores files in an S3-compatible bucket.
type OSSProvider struct {
	cfg   Config
	store Store
	log   *zap.Logger
}

var _ Provider = (*OSSProvider)(nil)

// New builds the provider around a long-lived store client.
func New(cfg Config, store Store, log *zap.Logger) *OSSProvider {
	if cfg.SignedURLExpiry <= 0 {
		cfg.SignedURLExpiry = DefaultSignedURLExpiry
	}
	cfg.UploadPath = strings.Trim(cfg.UploadPath, "/")
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("upload.provider")
	log.Info("provider initialised",
		zap.String("region", cfg.Region),
		zap.String("bucket", cfg.Bucket),
		zap.String("upload_path", cfg.UploadPath),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("private", cfg.ACL == "private"))
	return &OSSProvider{cfg: cfg, store: store, log: log}
}

// Key returns the object key of a file: {prefix}/{hash}{ext}.
func (p *OSSProvider) Key(file *File) string {
	return ObjectKey(p.cfg.UploadPath, file.Hash, file.Ext)
}

// ObjectKey derives the storage key. An empty prefix yields no prefix segment.
func ObjectKey(prefix, hash, ext string) string {
	name := hash + ext
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Upload transfers the file content and rewrites its URL.
func (p *OSSProvider) Upload(ctx context.Context, file *File) error {
	key := p.Key(file)
	log := p.log.With(zap.String("name", file.Name), zap.String("key", key))

	content, err := p.content(file)
	if err != nil {
		operationsTotal.WithLabelValues("upload", "rejected").Inc()
		log.Error("upload rejected", zap.Error(err))
		return err
	}

	res, err := p.store.PutObject(ctx, key, bytes.NewReader(content), file.Mime, int64(len(content)))
	if err != nil {
		operationsTotal.WithLabelValues("upload", "error").Inc()
		log.Error("upload failed", zap.Error(err))
		return fmt.Errorf("upload %s: %w", key, err)
	}
	operationsTotal.WithLabelValues("upload", "ok").Inc()
	uploadedBytesTotal.Add(float64(len(content)))

	if p.cfg.BaseURL != "" {
		file.URL = p.cfg.BaseURL + "/" + strings.TrimPrefix(res.Key, "/")
	} else {
		file.URL = res.URL
	}
	file.Provider = ProviderName
	file.ProviderMetadata = &ProviderMetadata{
		UploadPath: key,
		OSSURL:     res.URL,
		Region:     p.cfg.Region,
		Bucket:     p.cfg.Bucket,
	}

	log.Info("upload finished",
		zap.Int("status", res.StatusCode),
		zap.Int("bytes", len(content)),
		zap.String("url", file.URL))
	return nil
}

// UploadStream forwards to Upload.
func (p *OSSProvider) UploadStream(ctx context.Context, file *File) error {
	return p.Upload(ctx, file)
}

// Delete removes the stored object. Non-2xx responses are logged, not returned.
func (p *OSSProvider) Delete(ctx context.Context, file *File) error {
	key := p.Key(file)
	log := p.log.With(zap.String("name", file.Name), zap.String("key", key))

	res, err := p.store.DeleteObject(ctx, key)
	if err != nil {
		operationsTotal.WithLabelValues("delete", "error").Inc()
		log.Error("delete failed", zap.Error(err))
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if storage.Is2xx(res.StatusCode) {
		operationsTotal.WithLabelValues("delete", "ok").Inc()
		log.Info("delete finished", zap.Int("status", res.StatusCode))
		return nil
	}
	operationsTotal.WithLabelValues("delete", "non_2xx").Inc()
	log.Warn("delete returned non-2xx status", zap.Int("status", res.StatusCode))
	return nil
}

// IsPrivate reports whether the bucket ACL is private.
func (p *OSSProvider) IsPrivate() bool {
	return p.cfg.ACL == "private"
}

// GetSignedURL presigns a GET of the file.
func (p *OSSProvider) GetSignedURL(ctx context.Context, file *File) (*SignedURL, error) {
	key := p.Key(file)
	signed, err := p.store.SignURL(ctx, key, p.cfg.SignedURLExpiry)
	if err != nil {
		p.log.Error("sign url failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("sign %s: %w", key, err)
	}
	p.log.Debug("signed url issued", zap.String("key", key), zap.Duration("expiry", p.cfg.SignedURLExpiry))
	return &SignedURL{URL: signed}, nil
}

// content returns the bytes to transfer. Streams are buffered fully, capped at SizeLimit.
func (p *OSSProvider) content(file *File) ([]byte, error) {
	if file.Buffer != nil {
		return file.Buffer, nil
	}
	if file.Stream == nil {
		return nil, ErrNoContent
	}

	r := file.Stream
	if p.cfg.SizeLimit > 0 {
		r = io.LimitReader(r, p.cfg.SizeLimit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	if p.cfg.SizeLimit > 0 && int64(len(data)) > p.cfg.SizeLimit {
		return nil, ErrTooLarge
	}
	return data, nil
}
