package model

import (
	"time"

	"github.com/yi-nology/lab_portal/pkg/upload"
	"gorm.io/gorm"
)

// FileFormat is a resized variant of an uploaded image.
type FileFormat struct {
	Name   string `json:"name"`
	Hash   string `json:"hash"`
	Ext    string `json:"ext"`
	Mime   string `json:"mime"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"`
	URL    string `json:"url"`
}

// UploadFile stores the descriptor of a file handled by the upload provider.
type UploadFile struct {
	ID               uint                     `gorm:"primaryKey" json:"id,omitempty"`
	CreatedAt        time.Time                `json:"created_at,omitempty"`
	UpdatedAt        time.Time                `json:"updated_at,omitempty"`
	DeletedAt        gorm.DeletedAt           `gorm:"index" json:"-"`
	FileID           string                   `gorm:"column:file_id;uniqueIndex:idx_upload_file" json:"file_id"`
	Name             string                   `gorm:"column:name;type:varchar(255)" json:"name"`
	AlternativeText  string                   `gorm:"column:alternative_text;type:varchar(512)" json:"alternative_text,omitempty"`
	Caption          string                   `gorm:"column:caption;type:varchar(512)" json:"caption,omitempty"`
	Hash             string                   `gorm:"column:hash;index:idx_upload_hash" json:"hash"`
	Ext              string                   `gorm:"column:ext;type:varchar(32)" json:"ext"`
	Mime             string                   `gorm:"column:mime;type:varchar(255)" json:"mime"`
	Size             int64                    `gorm:"column:size" json:"size"`
	Width            int                      `gorm:"column:width" json:"width,omitempty"`
	Height           int                      `gorm:"column:height" json:"height,omitempty"`
	URL              string                   `gorm:"column:url;type:text" json:"url"`
	Provider         string                   `gorm:"column:provider;type:varchar(64)" json:"provider"`
	ProviderMetadata *upload.ProviderMetadata `gorm:"column:provider_metadata;type:text;serializer:json" json:"provider_metadata,omitempty"`
	Formats          map[string]FileFormat    `gorm:"column:formats;type:text;serializer:json" json:"formats,omitempty"`
}

// TableName overrides gorm to use upload_file table.
func (UploadFile) TableName() string {
	return "upload_file"
}
