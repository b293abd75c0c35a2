// Package upload hosts the storage provider: it validates incoming media, derives
// responsive variants, stores everything through the provider and keeps a ledger
// of descriptors.
package upload

import (
	"context"
	"errors"
	"fmt"

	"github.com/yi-nology/lab_portal/biz/dal/model"
	"github.com/yi-nology/lab_portal/pkg/common"
	"github.com/yi-nology/lab_portal/pkg/config"
	"github.com/yi-nology/lab_portal/pkg/imaging"
	"github.com/yi-nology/lab_portal/pkg/lock"
	provider "github.com/yi-nology/lab_portal/pkg/upload"
	"github.com/yi-nology/lab_portal/pkg/validator"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Input is one file received by the upload endpoint.
type Input struct {
	Name            string
	Mime            string
	Data            []byte
	AlternativeText string
	Caption         string
}

// Page is a slice of the ledger.
type Page struct {
	Files     []model.UploadFile `json:"files"`
	Page      int                `json:"page"`
	PageSize  int                `json:"pageSize"`
	PageCount int                `json:"pageCount"`
	Total     int64              `json:"total"`
}

// Service wraps the upload provider and the ledger.
type Service struct {
	logic       *Logic
	provider    provider.Provider
	validator   *validator.UploadConfig
	breakpoints map[string]int
	locker      lock.Locker
	log         *zap.Logger
}

// NewService builds the upload service. locker serializes uploads and deletes of
// the same content; nil means an in-process lock.
func NewService(dbConn *gorm.DB, p provider.Provider, cfg config.UploadConfig, locker lock.Locker, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &Service{
		logic:       NewLogic(dbConn),
		provider:    p,
		validator:   validator.NewUploadConfig(cfg.SizeLimit, cfg.AllowedTypes),
		breakpoints: cfg.Breakpoints,
		locker:      locker,
		log:         log.Named("upload.service"),
	}
}

// IsValidationError reports whether err was caused by the uploaded content
// rather than by the store or the ledger.
func IsValidationError(err error) bool {
	return errors.Is(err, validator.ErrEmptyFile) ||
		errors.Is(err, validator.ErrFileTooLarge) ||
		errors.Is(err, validator.ErrMissingType) ||
		errors.Is(err, validator.ErrUnsupportedType) ||
		errors.Is(err, provider.ErrTooLarge) ||
		errors.Is(err, provider.ErrNoContent)
}

// Upload stores a file and its responsive variants, then records the descriptor.
// Objects already stored are removed again when a later step fails.
func (s *Service) Upload(ctx context.Context, in Input) (*model.UploadFile, error) {
	mime, err := s.validator.Validate(int64(len(in.Data)), in.Mime, in.Data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", in.Name, err)
	}

	hash := common.ContentHash(in.Data)
	ext := common.FileExt(in.Name)
	log := s.log.With(zap.String("name", in.Name), zap.String("hash", hash))

	var record *model.UploadFile
	err = s.withObjectLock(ctx, hash, ext, func() error {
		var storeErr error
		record, storeErr = s.store(ctx, in, mime, hash, ext)
		return storeErr
	})
	if err != nil {
		return nil, err
	}

	log.Info("file uploaded",
		zap.String("file_id", record.FileID),
		zap.Int("formats", len(record.Formats)))
	return record, nil
}

// store writes the objects and the descriptor. The caller holds the object lock,
// so a concurrent delete of the same content cannot remove what is written here.
func (s *Service) store(ctx context.Context, in Input, mime, hash, ext string) (*model.UploadFile, error) {
	original := &provider.File{
		Name:   in.Name,
		Hash:   hash,
		Ext:    ext,
		Mime:   mime,
		Size:   int64(len(in.Data)),
		Buffer: in.Data,
	}
	if err := s.provider.Upload(ctx, original); err != nil {
		return nil, err
	}
	stored := []*provider.File{original}

	record := &model.UploadFile{
		Name:             in.Name,
		AlternativeText:  in.AlternativeText,
		Caption:          in.Caption,
		Hash:             hash,
		Ext:              ext,
		Mime:             mime,
		Size:             original.Size,
		URL:              original.URL,
		Provider:         original.Provider,
		ProviderMetadata: original.ProviderMetadata,
	}

	if width, height, err := imaging.Dimensions(in.Data); err == nil {
		record.Width, record.Height = width, height
		formats, files, err := s.uploadFormats(ctx, in, hash)
		stored = append(stored, files...)
		if err != nil {
			s.rollback(ctx, record, stored)
			return nil, err
		}
		record.Formats = formats
	}

	if err := s.logic.CreateFile(ctx, record); err != nil {
		s.log.Error("persist descriptor failed", zap.String("name", in.Name), zap.Error(err))
		// Rollback: delete uploaded objects
		s.rollback(ctx, record, stored)
		return nil, fmt.Errorf("persist %s: %w", in.Name, err)
	}
	return record, nil
}

func (s *Service) uploadFormats(ctx context.Context, in Input, hash string) (map[string]model.FileFormat, []*provider.File, error) {
	variants, err := imaging.Breakpoints(in.Data, s.breakpoints)
	if err != nil {
		s.log.Warn("skip responsive formats", zap.String("name", in.Name), zap.Error(err))
		return nil, nil, nil
	}
	if len(variants) == 0 {
		return nil, nil, nil
	}

	formats := make(map[string]model.FileFormat, len(variants))
	files := make([]*provider.File, 0, len(variants))
	for _, v := range variants {
		file := &provider.File{
			Name:   v.Name + "_" + in.Name,
			Hash:   v.Name + "_" + hash,
			Ext:    v.Ext,
			Mime:   v.Mime,
			Size:   int64(len(v.Data)),
			Buffer: v.Data,
		}
		if err := s.provider.Upload(ctx, file); err != nil {
			return nil, files, fmt.Errorf("format %s: %w", v.Name, err)
		}
		files = append(files, file)
		formats[v.Name] = model.FileFormat{
			Name:   file.Name,
			Hash:   file.Hash,
			Ext:    file.Ext,
			Mime:   file.Mime,
			Width:  v.Width,
			Height: v.Height,
			Size:   file.Size,
			URL:    file.URL,
		}
	}
	return formats, files, nil
}

// rollback removes freshly stored objects unless an earlier descriptor owns them.
func (s *Service) rollback(ctx context.Context, record *model.UploadFile, files []*provider.File) {
	n, err := s.logic.References(ctx, record.Hash, record.Ext)
	if err == nil && n > 0 {
		s.log.Warn("rollback skipped, objects referenced", zap.String("hash", record.Hash), zap.Int64("refs", n))
		return
	}
	for _, f := range files {
		if err := s.provider.Delete(ctx, f); err != nil {
			s.log.Error("rollback delete failed", zap.String("hash", f.Hash), zap.Error(err))
		}
	}
}

// Get returns one descriptor. URLs are signed when the bucket is private.
func (s *Service) Get(ctx context.Context, fileID string) (*model.UploadFile, error) {
	file, err := s.logic.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.signURLs(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

// List returns a page of descriptors, newest first.
func (s *Service) List(ctx context.Context, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	files, total, err := s.logic.ListFiles(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	for i := range files {
		if err := s.signURLs(ctx, &files[i]); err != nil {
			return nil, err
		}
	}
	return &Page{
		Files:     files,
		Page:      page,
		PageSize:  pageSize,
		PageCount: int((total + int64(pageSize) - 1) / int64(pageSize)),
		Total:     total,
	}, nil
}

// Delete removes the stored objects of a descriptor, then the descriptor.
// Objects still referenced by another descriptor are kept.
func (s *Service) Delete(ctx context.Context, fileID string) error {
	file, err := s.logic.GetFile(ctx, fileID)
	if err != nil {
		return err
	}

	var shared bool
	err = s.withObjectLock(ctx, file.Hash, file.Ext, func() error {
		refs, err := s.logic.References(ctx, file.Hash, file.Ext)
		if err != nil {
			return err
		}
		shared = refs > 1
		if !shared {
			for _, f := range objectsOf(file) {
				if err := s.provider.Delete(ctx, f); err != nil {
					return err
				}
			}
		}
		return s.logic.DeleteFile(ctx, fileID)
	})
	if err != nil {
		return err
	}
	s.log.Info("file deleted", zap.String("file_id", fileID), zap.Bool("objects_kept", shared))
	return nil
}

// withObjectLock runs fn while holding the lock on the objects of hash+ext.
// Uploads and deletes of the same content are serialized through it.
func (s *Service) withObjectLock(ctx context.Context, hash, ext string, fn func() error) error {
	name := "media:" + hash + ext
	token, err := s.locker.Acquire(ctx, name)
	if err != nil {
		return fmt.Errorf("lock %s: %w", name, err)
	}
	defer func() {
		if err := s.locker.Release(ctx, name, token); err != nil {
			s.log.Warn("release lock failed", zap.String("lock", name), zap.Error(err))
		}
	}()
	return fn()
}

func (s *Service) signURLs(ctx context.Context, file *model.UploadFile) error {
	if !s.provider.IsPrivate() {
		return nil
	}
	signed, err := s.provider.GetSignedURL(ctx, &provider.File{Name: file.Name, Hash: file.Hash, Ext: file.Ext})
	if err != nil {
		return err
	}
	file.URL = signed.URL
	for name, f := range file.Formats {
		signed, err := s.provider.GetSignedURL(ctx, &provider.File{Name: f.Name, Hash: f.Hash, Ext: f.Ext})
		if err != nil {
			return err
		}
		f.URL = signed.URL
		file.Formats[name] = f
	}
	return nil
}

func objectsOf(file *model.UploadFile) []*provider.File {
	files := []*provider.File{{Name: file.Name, Hash: file.Hash, Ext: file.Ext}}
	for _, f := range file.Formats {
		files = append(files, &provider.File{Name: f.Name, Hash: f.Hash, Ext: f.Ext})
	}
	return files
}
