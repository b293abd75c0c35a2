package validator

import (
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file too large")
	ErrMissingType     = errors.New("missing content type")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// UploadConfig defines constraints for file uploads.
type UploadConfig struct {
	MaxFileSize      int64
	AllowedMimeTypes map[string]bool
}

// NewUploadConfig builds upload constraints from a size limit and a MIME whitelist.
func NewUploadConfig(maxFileSize int64, allowed []string) *UploadConfig {
	types := make(map[string]bool, len(allowed))
	for _, t := range allowed {
		if n := normalizeMime(t); n != "" {
			types[n] = true
		}
	}
	return &UploadConfig{MaxFileSize: maxFileSize, AllowedMimeTypes: types}
}

// ValidateFileSize checks if the file size is within the allowed limit.
func (c *UploadConfig) ValidateFileSize(size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if c.MaxFileSize > 0 && size > c.MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// ValidateMimeType checks if the MIME type is in the allowed whitelist.
func (c *UploadConfig) ValidateMimeType(mimeType string) error {
	normalized := normalizeMime(mimeType)
	if normalized == "" {
		return ErrMissingType
	}
	if !c.AllowedMimeTypes[normalized] {
		return ErrUnsupportedType
	}
	return nil
}

// ResolveMimeType picks the MIME type to store: the declared type when it is
// specific, otherwise the type sniffed from content.
func (c *UploadConfig) ResolveMimeType(data []byte, declaredType string) string {
	declared := normalizeMime(declaredType)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return normalizeMime(mimetype.Detect(data).String())
}

// Validate performs full validation on an upload and returns the resolved MIME type.
func (c *UploadConfig) Validate(size int64, declaredType string, data []byte) (string, error) {
	if err := c.ValidateFileSize(size); err != nil {
		return "", err
	}
	mime := c.ResolveMimeType(data, declaredType)
	if err := c.ValidateMimeType(mime); err != nil {
		return mime, err
	}
	return mime, nil
}

// normalizeMime lower-cases and strips parameters (e.g. "text/plain; charset=utf-8").
func normalizeMime(mimeType string) string {
	normalized := strings.ToLower(strings.TrimSpace(mimeType))
	if idx := strings.Index(normalized, ";"); idx > 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	return normalized
}
