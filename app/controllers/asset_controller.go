package controllers

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/shashiranjanraj/storefront/pkg/ctx"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// Files reads stored uploads.
type Files interface {
	GetStream(ctx context.Context, path string) (io.ReadCloser, error)
}

// AssetController serves uploaded product images from the configured disk.
type AssetController struct {
	files Files
}

func NewAssetController(files Files) *AssetController {
	return &AssetController{files: files}
}

// Image handles GET /images/*.
func (h *AssetController) Image(c *ctx.Context) {
	name := path.Clean("/" + c.Param("*"))
	if name == "/" || strings.Contains(name, "..") {
		c.NotFound()
		return
	}

	rc, err := h.files.GetStream(c.Context(), "images"+name)
	if errors.Is(err, storage.ErrNotExist) {
		c.NotFound()
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	defer rc.Close()

	ct := mime.TypeByExtension(path.Ext(name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.SetHeader("Content-Type", ct)
	c.SetHeader("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.W, rc); err != nil {
		c.Logger().Warn("image: copy aborted", "path", name, "error", err)
	}
}

// HealthController reports whether the store is reachable.
type HealthController struct {
	ping func(ctx context.Context) error
}

func NewHealthController(ping func(ctx context.Context) error) *HealthController {
	return &HealthController{ping: ping}
}

// Check handles GET /healthz.
func (h *HealthController) Check(c *ctx.Context) {
	if h.ping != nil {
		if err := h.ping(c.Context()); err != nil {
			c.Logger().Warn("health: store unreachable", "error", err)
			c.Error(http.StatusServiceUnavailable, "Store unavailable")
			return
		}
	}
	c.Success(map[string]string{"status": "ok"})
}
