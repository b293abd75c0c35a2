package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/yi-nology/lab_portal/biz/dal/model"
	uploadservice "github.com/yi-nology/lab_portal/biz/service/upload"
)

// UploadService is the media library behind the upload API.
type UploadService interface {
	Upload(ctx context.Context, in uploadservice.Input) (*model.UploadFile, error)
	Get(ctx context.Context, fileID string) (*model.UploadFile, error)
	List(ctx context.Context, page, pageSize int) (*uploadservice.Page, error)
	Delete(ctx context.Context, fileID string) error
}

// UploadHandler exposes the media upload endpoints.
type UploadHandler struct {
	service   UploadService
	sizeLimit int64
}

func NewUploadHandler(service UploadService, sizeLimit int64) *UploadHandler {
	return &UploadHandler{service: service, sizeLimit: sizeLimit}
}

// Upload handles multipart uploads. Every part named "files" is stored; the
// first failure stops the request and earlier files stay in the library.
func (h *UploadHandler) Upload(ctx context.Context, c *app.RequestContext) {
	form, err := c.MultipartForm()
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		WriteBadRequest(c, errors.New("no files in request"))
		return
	}

	alt := string(c.FormValue("alternativeText"))
	caption := string(c.FormValue("caption"))
	files := make([]*model.UploadFile, 0, len(headers))
	for _, fh := range headers {
		data, err := h.read(fh)
		if err != nil {
			WriteInternalError(c, err)
			return
		}
		file, err := h.service.Upload(ctx, uploadservice.Input{
			Name:            fh.Filename,
			Mime:            fh.Header.Get("Content-Type"),
			Data:            data,
			AlternativeText: alt,
			Caption:         caption,
		})
		if err != nil {
			if uploadservice.IsValidationError(err) {
				WriteBadRequest(c, fmt.Errorf("%s: %w", fh.Filename, err))
				return
			}
			WriteInternalError(c, err)
			return
		}
		files = append(files, file)
	}
	RespondData(c, files)
}

// read buffers one part, one byte past the limit so oversized files are rejected.
func (h *UploadHandler) read(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if h.sizeLimit > 0 {
		r = io.LimitReader(f, h.sizeLimit+1)
	}
	return io.ReadAll(r)
}

func (h *UploadHandler) ListFiles(ctx context.Context, c *app.RequestContext) {
	page, err := h.service.List(ctx, queryInt(c, "page"), queryInt(c, "pageSize"))
	if err != nil {
		WriteInternalError(c, err)
		return
	}
	RespondData(c, page)
}

func (h *UploadHandler) GetFile(ctx context.Context, c *app.RequestContext) {
	file, err := h.service.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, uploadservice.ErrFileNotFound) {
			WriteNotFound(c, err)
			return
		}
		WriteInternalError(c, err)
		return
	}
	RespondData(c, file)
}

func (h *UploadHandler) DeleteFile(ctx context.Context, c *app.RequestContext) {
	if err := h.service.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, uploadservice.ErrFileNotFound) {
			WriteNotFound(c, err)
			return
		}
		WriteInternalError(c, err)
		return
	}
	RespondOK(c)
}
