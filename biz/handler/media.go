package handler

import (
	"context"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gabriel-vasile/mimetype"
)

// Object keys carry the content hash, so a key never changes its bytes.
const mediaCacheControl = "public, max-age=31536000, immutable"

// MediaStore is the read side of the object store.
type MediaStore interface {
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
	ObjectExists(ctx context.Context, key string) (bool, error)
}

// MediaHandler serves uploads kept by the local storage backend.
type MediaHandler struct {
	store MediaStore
}

func NewMediaHandler(store MediaStore) *MediaHandler {
	return &MediaHandler{store: store}
}

// Serve handles GET {base}/*filepath.
func (h *MediaHandler) Serve(ctx context.Context, c *app.RequestContext) {
	key := strings.TrimPrefix(path.Clean("/"+c.Param("filepath")), "/")
	if key == "" {
		c.Data(consts.StatusNotFound, consts.MIMETextPlainUTF8, []byte("not found"))
		return
	}

	ok, err := h.store.ObjectExists(ctx, key)
	if err != nil {
		c.Data(consts.StatusInternalServerError, consts.MIMETextPlainUTF8, []byte(internalErrorBody))
		return
	}
	if !ok {
		c.Data(consts.StatusNotFound, consts.MIMETextPlainUTF8, []byte("not found"))
		return
	}

	rc, err := h.store.GetObject(ctx, key)
	if err != nil {
		c.Data(consts.StatusInternalServerError, consts.MIMETextPlainUTF8, []byte(internalErrorBody))
		return
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		c.Data(consts.StatusInternalServerError, consts.MIMETextPlainUTF8, []byte(internalErrorBody))
		return
	}

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	c.Response.Header.Set("Cache-Control", mediaCacheControl)
	c.Data(consts.StatusOK, contentType, data)
}
