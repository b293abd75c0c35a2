package storage

import (
	"fmt"
	"time"

	"github.com/yi-nology/lab_portal/pkg/config"
	"github.com/yi-nology/lab_portal/pkg/storage/local"
	"github.com/yi-nology/lab_portal/pkg/storage/s3"
)

// New creates the storage backend selected by configuration.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "local":
		return local.New(cfg.Local.BasePath, cfg.Local.BaseURL)

	case "", "oss", "s3":
		return s3.New(s3.Config{
			Endpoint:  cfg.OSS.Endpoint,
			Region:    cfg.OSS.Region,
			Bucket:    cfg.OSS.Bucket,
			AccessKey: cfg.OSS.AccessKeyID,
			SecretKey: cfg.OSS.AccessKeySecret,
			Secure:    cfg.OSS.Secure,
			Internal:  cfg.OSS.Internal,
			PathStyle: cfg.OSS.PathStyle,
			Timeout:   time.Duration(cfg.OSS.TimeoutMs) * time.Millisecond,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
