// Package s3 implements the S3-compatible object storage adapter.
// Aliyun OSS is addressed through its S3-compatible endpoint
// (https://{bucket}.oss-{region}.aliyuncs.com); MinIO and AWS S3 work the same way.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/yi-nology/lab_portal/pkg/storage/object"
)

const (
	ossDomain      = "aliyuncs.com"
	ossPrefix      = "oss-"
	internalSuffix = "-internal"

	// DefaultTimeout bounds a single request, including the body transfer.
	DefaultTimeout = 60 * time.Second
)

// Config holds S3 storage configuration.
type Config struct {
	// Endpoint overrides the derived OSS endpoint (e.g. MinIO). May omit the scheme.
	Endpoint string
	// Region accepts both "oss-cn-hangzhou" and "cn-hangzhou".
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Secure    bool
	Internal  bool
	PathStyle bool // Use path-style URLs (MinIO, local test servers)
	Timeout   time.Duration
}

// Storage implements the storage.Storage interface using S3-compatible storage.
type Storage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	endpoint      *url.URL
	pathStyle     bool
}

// New creates a new S3 storage adapter. The client never retries: a failed
// request is reported to the caller as is.
func New(cfg Config) (*Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("access key and secret key are required")
	}
	endpoint, signingRegion, err := ResolveEndpoint(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	optFns := []func(*config.LoadOptions) error{
		config.WithRegion(signingRegion),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
		config.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(cfg.Timeout)),
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint.String())
		o.UsePathStyle = cfg.PathStyle
		// OSS rejects the aws-chunked trailing checksums newer SDKs send by default.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &Storage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		endpoint:      endpoint,
		pathStyle:     cfg.PathStyle,
	}, nil
}

// ResolveEndpoint derives the service endpoint and the SigV4 signing region.
func ResolveEndpoint(cfg Config) (*url.URL, string, error) {
	scheme := "http"
	if cfg.Secure {
		scheme = "https"
	}
	region := strings.TrimSpace(cfg.Region)
	signingRegion := strings.TrimPrefix(region, ossPrefix)

	raw := strings.TrimSpace(cfg.Endpoint)
	if raw == "" {
		if region == "" {
			return nil, "", fmt.Errorf("region is required when no endpoint is configured")
		}
		host := ossPrefix + signingRegion
		if cfg.Internal {
			host += internalSuffix
		}
		raw = host + "." + ossDomain
	}
	if !strings.Contains(raw, "://") {
		raw = scheme + "://" + raw
	}
	u, err := url.Parse(strings.TrimSuffix(raw, "/"))
	if err != nil {
		return nil, "", fmt.Errorf("parse endpoint: %w", err)
	}
	if signingRegion == "" {
		signingRegion = "us-east-1"
	}
	return u, signingRegion, nil
}

// PutObject uploads a file.
func (s *Storage) PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) (*object.PutResult, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}

	output, err := s.client.PutObject(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}

	return &object.PutResult{
		Key:        key,
		URL:        s.ObjectURL(key),
		StatusCode: rawStatus(output.ResultMetadata, http.StatusOK),
	}, nil
}

// GetObject retrieves a file.
func (s *Storage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}

	return output.Body, nil
}

// DeleteObject removes a file. HTTP-level rejections (404, 403, ...) come back as a
// DeleteResult; only failures without a response are returned as errors.
func (s *Storage) DeleteObject(ctx context.Context, key string) (*object.DeleteResult, error) {
	output, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var respErr *awshttp.ResponseError
		if errors.As(err, &respErr) {
			return &object.DeleteResult{StatusCode: respErr.HTTPStatusCode()}, nil
		}
		return nil, fmt.Errorf("delete object: %w", err)
	}

	return &object.DeleteResult{StatusCode: rawStatus(output.ResultMetadata, http.StatusNoContent)}, nil
}

// ObjectExists checks if an object exists.
func (s *Storage) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var respErr *awshttp.ResponseError
		if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("head object: %w", err)
	}

	return true, nil
}

// SignURL generates a presigned GET URL.
func (s *Storage) SignURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	presignResult, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("presign url: %w", err)
	}

	return presignResult.URL, nil
}

// ObjectURL returns the public origin URL of key.
func (s *Storage) ObjectURL(key string) string {
	escaped := escapeKey(key)
	if s.pathStyle {
		return fmt.Sprintf("%s://%s/%s/%s", s.endpoint.Scheme, s.endpoint.Host, s.bucket, escaped)
	}
	return fmt.Sprintf("%s://%s.%s/%s", s.endpoint.Scheme, s.bucket, s.endpoint.Host, escaped)
}

// Type returns "s3" as the storage type identifier.
func (s *Storage) Type() string {
	return "s3"
}

func escapeKey(key string) string {
	parts := strings.Split(strings.TrimPrefix(key, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func rawStatus(md middleware.Metadata, fallback int) int {
	if resp, ok := awsmiddleware.GetRawResponse(md).(*smithyhttp.Response); ok && resp != nil && resp.Response != nil {
		return resp.StatusCode
	}
	return fallback
}
