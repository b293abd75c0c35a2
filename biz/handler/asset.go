package handler

import (
	"context"
	"io/fs"
	"mime"
	"path"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gabriel-vasile/mimetype"
)

const assetCacheControl = "public, max-age=3600"

// AssetHandler serves the stylesheet and images embedded in the binary.
type AssetHandler struct {
	fsys fs.FS
}

func NewAssetHandler(fsys fs.FS) *AssetHandler {
	return &AssetHandler{fsys: fsys}
}

// Serve handles GET /assets/*filepath.
func (h *AssetHandler) Serve(_ context.Context, c *app.RequestContext) {
	name := path.Clean("/" + c.Param("filepath"))
	data, err := fs.ReadFile(h.fsys, "assets"+name)
	if err != nil || strings.HasSuffix(name, "/") {
		c.Data(consts.StatusNotFound, consts.MIMETextPlainUTF8, []byte("not found"))
		return
	}
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}
	c.Response.Header.Set("Cache-Control", assetCacheControl)
	c.Data(consts.StatusOK, contentType, data)
}
