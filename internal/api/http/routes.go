package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts every handler on r.
func RegisterRoutes(r gin.IRouter, h *Handlers) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	files := r.Group("/api/files")
	{
		files.GET("", h.ListDirectory)
		files.GET("/info", h.FileInfo)
		files.GET("/search", h.Search)
		files.GET("/download", h.Download)
		files.GET("/clipboard", h.ClipboardState)

		files.POST("/read", h.ReadFile)
		files.POST("/write", h.WriteFile)
		files.POST("/create", h.Create)
		files.POST("/delete", h.Delete)
		files.POST("/rename", h.Rename)
		files.POST("/copy", h.CopyToClipboard)
		files.POST("/cut", h.CutToClipboard)
		files.POST("/paste", h.Paste)
		files.POST("/clipboard/clear", h.ClearClipboard)
		files.POST("/duplicate", h.Duplicate)
		files.POST("/move", h.Move)
		files.POST("/compress", h.Compress)
		files.POST("/extract", h.Extract)
		files.POST("/upload", h.Upload)
	}

	if h.system == nil {
		return
	}
	r.GET("/api/system/info", h.SystemInfo)
	r.GET("/api/packages", h.ListPackages)
	r.POST("/api/packages/install", h.InstallPackage)
	r.POST("/api/packages/remove", h.RemovePackage)
	r.POST("/api/ping", h.Ping)
}
