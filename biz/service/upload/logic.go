package upload

import (
	"context"
	"errors"

	"github.com/yi-nology/lab_portal/biz/dal/db"
	"github.com/yi-nology/lab_portal/biz/dal/model"
	"gorm.io/gorm"
)

var ErrFileNotFound = errors.New("upload file not found")

// Logic contains the persistence rules of the upload ledger.
type Logic struct {
	db      *gorm.DB
	fileDAO *db.UploadFileDAO
}

func NewLogic(dbConn *gorm.DB) *Logic {
	return &Logic{
		db:      dbConn,
		fileDAO: db.NewUploadFileDAO(),
	}
}

func (l *Logic) CreateFile(ctx context.Context, file *model.UploadFile) error {
	return l.fileDAO.Create(ctx, l.db, file)
}

func (l *Logic) GetFile(ctx context.Context, fileID string) (*model.UploadFile, error) {
	file, err := l.fileDAO.GetByFileID(ctx, l.db, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return file, nil
}

func (l *Logic) ListFiles(ctx context.Context, page, pageSize int) ([]model.UploadFile, int64, error) {
	return l.fileDAO.List(ctx, l.db, (page-1)*pageSize, pageSize)
}

// References counts descriptors pointing at the stored content. Keys derive
// from the content hash, so identical uploads share their objects.
func (l *Logic) References(ctx context.Context, hash, ext string) (int64, error) {
	return l.fileDAO.CountByHash(ctx, l.db, hash, ext)
}

func (l *Logic) DeleteFile(ctx context.Context, fileID string) error {
	if err := l.fileDAO.DeleteByFileID(ctx, l.db, fileID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		return err
	}
	return nil
}
