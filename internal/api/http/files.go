package http

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/RouterPanel/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/RouterPanel/backend/internal/providers/filesystem"
)

type pathRequest struct {
	Path string `json:"path"`
}

type writeRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type createRequest struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
}

type renameRequest struct {
	OldPath string `json:"old_path"`
	NewName string `json:"new_name"`
}

type selectionRequest struct {
	Paths []string `json:"paths"`
}

type pasteRequest struct {
	DestPath string `json:"dest_path"`
}

type moveRequest struct {
	SourcePath string `json:"source_path"`
	DestPath   string `json:"dest_path"`
}

type compressRequest struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

type extractRequest struct {
	ZipPath   string `json:"zip_path"`
	ExtractTo string `json:"extract_to"`
}

// ListDirectory lists a directory; no path means the root.
func (h *Handlers) ListDirectory(c *gin.Context) {
	listing, err := h.files.List(c.Query("path"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"path":  listing.Path,
		"items": listing.Items,
	})
}

// FileInfo returns detailed metadata for one entry.
func (h *Handlers) FileInfo(c *gin.Context) {
	info, err := h.files.Info(c.Query("path"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"info": info})
}

// ReadFile returns a text file's content.
func (h *Handlers) ReadFile(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	content, err := h.files.ReadText(req.Path)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"content": content})
}

// WriteFile replaces a file's content, creating the file when absent.
func (h *Handlers) WriteFile(c *gin.Context) {
	var req writeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	done := h.track("write")
	err := h.files.WriteText(req.Path, req.Content)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// Create makes an empty file or directory inside path.
func (h *Handlers) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	done := h.track("create")
	created, err := h.files.Create(req.Path, req.Name, req.IsDir)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"path": created})
}

// Delete removes a file or a directory tree.
func (h *Handlers) Delete(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	done := h.track("delete")
	err := h.files.Delete(req.Path)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	logging.FromContext(c.Request.Context(), h.logger).Info("deleted", zap.String("path", req.Path))
	respondOK(c, nil)
}

// Rename renames an entry in place.
func (h *Handlers) Rename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	done := h.track("rename")
	newPath, err := h.files.Rename(req.OldPath, req.NewName)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"new_path": newPath})
}

// CopyToClipboard replaces the clipboard with a copy selection.
func (h *Handlers) CopyToClipboard(c *gin.Context) {
	h.selectPaths(c, h.files.CopyToClipboard)
}

// CutToClipboard replaces the clipboard with a cut selection.
func (h *Handlers) CutToClipboard(c *gin.Context) {
	h.selectPaths(c, h.files.CutToClipboard)
}

func (h *Handlers) selectPaths(c *gin.Context, sel func([]string) (int, error)) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	count, err := sel(req.Paths)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"count": count})
}

// ClipboardState reports the pending selection.
func (h *Handlers) ClipboardState(c *gin.Context) {
	state := h.files.Clipboard()
	respondOK(c, gin.H{
		"items":     state.Items,
		"operation": state.Operation,
		"count":     len(state.Items),
	})
}

// ClearClipboard drops the pending selection.
func (h *Handlers) ClearClipboard(c *gin.Context) {
	h.files.ClearClipboard()
	respondOK(c, nil)
}

// Paste copies or moves the clipboard items into dest_path.
func (h *Handlers) Paste(c *gin.Context) {
	var req pasteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := h.operationContext(c)
	defer cancel()

	done := h.track("paste")
	res, err := h.files.Paste(ctx, req.DestPath)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordPaste(string(res.Operation), res.Count, res.Failed)
	}
	respondOK(c, gin.H{
		"count":     res.Count,
		"failed":    res.Failed,
		"paths":     res.Paths,
		"operation": res.Operation,
	})
}

// Duplicate copies an entry next to itself under a fresh name.
func (h *Handlers) Duplicate(c *gin.Context) {
	var req pathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := h.operationContext(c)
	defer cancel()

	done := h.track("duplicate")
	newPath, err := h.files.Duplicate(ctx, req.Path)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"new_path": newPath})
}

// Move moves an entry into another directory.
func (h *Handlers) Move(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := h.operationContext(c)
	defer cancel()

	done := h.track("move")
	newPath, err := h.files.Move(ctx, req.SourcePath, req.DestPath)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"new_path": newPath})
}

// Compress archives an entry next to itself.
func (h *Handlers) Compress(c *gin.Context) {
	var req compressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	format, err := filesystem.ParseArchiveFormat(req.Format)
	if err != nil {
		h.respondError(c, err)
		return
	}

	ctx, cancel := h.operationContext(c)
	defer cancel()

	done := h.track("compress")
	archive, err := h.files.Compress(ctx, req.Path, format)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"zip_path": archive})
}

// Extract unpacks an archive, by default next to itself.
func (h *Handlers) Extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := h.operationContext(c)
	defer cancel()

	done := h.track("extract")
	dest, err := h.files.Extract(ctx, req.ZipPath, req.ExtractTo)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"extracted_to": dest})
}

// Upload stores a multipart "file" field inside dest_path.
func (h *Handlers) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			h.respondError(c, fmt.Errorf("%w: no file provided", filesystem.ErrInvalidArgument))
			return
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(c, err)
			return
		}
		badRequest(c, err)
		return
	}

	src, err := fh.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer src.Close()

	ctx, cancel := h.operationContext(c)
	defer cancel()

	done := h.track("upload")
	stored, err := h.files.Upload(ctx, c.PostForm("dest_path"), fh.Filename, src)
	done(err)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.AddUploadBytes(fh.Size)
	}
	respondOK(c, gin.H{"path": stored})
}

// Download streams a file as is, or a directory as a zip archive.
func (h *Handlers) Download(c *gin.Context) {
	dl, err := h.files.OpenDownload(c.Query("path"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": dl.Name})

	if !dl.IsDir {
		f, err := dl.Open()
		if err != nil {
			h.respondError(c, err)
			return
		}
		defer f.Close()
		c.DataFromReader(http.StatusOK, dl.Size, dl.ContentType, f, map[string]string{
			"Content-Disposition": disposition,
		})
		return
	}

	c.Header("Content-Type", dl.ContentType)
	c.Header("Content-Disposition", disposition)
	c.Status(http.StatusOK)
	if err := h.files.WriteArchive(c.Request.Context(), dl.Path, c.Writer); err != nil {
		if !c.Writer.Written() {
			c.Writer.Header().Del("Content-Type")
			c.Writer.Header().Del("Content-Disposition")
			h.respondError(c, err)
			return
		}
		// Headers are gone; the client sees a truncated archive.
		logging.FromContext(c.Request.Context(), h.logger).Warn("directory download aborted",
			zap.String("path", dl.Path), zap.Error(err))
		c.Abort()
	}
}

// Search finds entries by name below path.
func (h *Handlers) Search(c *gin.Context) {
	glob, _ := strconv.ParseBool(c.Query("glob"))

	res, err := h.files.Search(c.Request.Context(), c.Query("path"), c.Query("query"),
		filesystem.SearchOptions{Glob: glob})
	if err != nil {
		h.respondError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveSearch(res.Count)
	}
	respondOK(c, gin.H{
		"results":   res.Results,
		"count":     res.Count,
		"truncated": res.Truncated,
	})
}
