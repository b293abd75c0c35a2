package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/yi-nology/lab_portal/biz/dal/model"
	"gorm.io/gorm"
)

// UploadFileDAO handles CRUD operations for upload descriptors.
type UploadFileDAO struct{}

func NewUploadFileDAO() *UploadFileDAO { return &UploadFileDAO{} }

func (dao *UploadFileDAO) Create(ctx context.Context, db *gorm.DB, file *model.UploadFile) error {
	if file == nil {
		return errors.New("upload file must not be nil")
	}
	if file.FileID == "" {
		file.FileID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(file).Error
}

func (dao *UploadFileDAO) GetByFileID(ctx context.Context, db *gorm.DB, fileID string) (*model.UploadFile, error) {
	var file model.UploadFile
	if err := db.WithContext(ctx).Where("file_id = ?", fileID).First(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// List returns a page of descriptors, newest first, and the total count.
func (dao *UploadFileDAO) List(ctx context.Context, db *gorm.DB, offset, limit int) ([]model.UploadFile, int64, error) {
	var (
		files []model.UploadFile
		total int64
	)
	if err := db.WithContext(ctx).Model(&model.UploadFile{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&files).Error; err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

// CountByHash counts descriptors sharing a stored object.
func (dao *UploadFileDAO) CountByHash(ctx context.Context, db *gorm.DB, hash, ext string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&model.UploadFile{}).
		Where("hash = ? AND ext = ?", hash, ext).
		Count(&n).Error
	return n, err
}

func (dao *UploadFileDAO) DeleteByFileID(ctx context.Context, db *gorm.DB, fileID string) error {
	result := db.WithContext(ctx).Unscoped().Where("file_id = ?", fileID).Delete(&model.UploadFile{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
