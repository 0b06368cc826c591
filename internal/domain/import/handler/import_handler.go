// Package handler exposes the import pipeline over HTTP.
package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cofrinho-app/cofrinho-api/internal/domain/import/service"
)

const userIDHeader = "X-User-ID"

// ImportHandler owns the /v1/imports routes.
type ImportHandler struct {
	svc         *service.ImportService
	logger      *slog.Logger
	maxFileSize int64
}

// NewImportHandler builds the handler. maxFileSize bounds one upload in
// bytes.
func NewImportHandler(svc *service.ImportService, logger *slog.Logger, maxFileSize int64) *ImportHandler {
	return &ImportHandler{
		svc:         svc,
		logger:      logger.With(slog.String("component", "import_handler")),
		maxFileSize: maxFileSize,
	}
}

// RegisterRoutes mounts the import endpoints on the router.
func (h *ImportHandler) RegisterRoutes(r gin.IRouter) {
	imports := r.Group("/v1/imports")
	imports.POST("", h.importFile)
	imports.POST("/preview", h.previewFile)
	imports.POST("/previews/:id/commit", h.commitPreview)
}

// importFile parses and persists an upload in one step.
func (h *ImportHandler) importFile(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	filename, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	outcome, err := h.svc.ParseFile(c.Request.Context(), filename, data)
	if err != nil {
		h.renderError(c, err)
		return
	}
	summary, err := h.svc.ImportBatch(c.Request.Context(), userID, outcome.Transactions)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imported":     summary.Imported,
		"failed":       summary.Failed,
		"rows_skipped": outcome.RowsSkipped,
	})
}

// previewFile parses an upload and holds it for an explicit commit.
func (h *ImportHandler) previewFile(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	filename, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	preview, err := h.svc.PreviewFile(c.Request.Context(), userID, filename, data)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

func (h *ImportHandler) commitPreview(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	previewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preview id"})
		return
	}

	summary, err := h.svc.CommitPreview(c.Request.Context(), userID, previewID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ImportHandler) userID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader(userIDHeader)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + userIDHeader + " header"})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + userIDHeader + " header"})
		return uuid.Nil, false
	}
	return userID, true
}

func (h *ImportHandler) readUpload(c *gin.Context) (string, []byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return "", nil, false
	}
	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return "", nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return "", nil, false
	}
	return fileHeader.Filename, data, true
}

// renderError maps typed service errors to specific statuses so the client
// can show the right message per failure class.
func (h *ImportHandler) renderError(c *gin.Context, err error) {
	var missing *service.MissingRegistryError
	switch {
	case errors.Is(err, service.ErrUnsupportedFileFormat):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{
			"error": "unsupported file format, expected csv, xlsx or xls",
		})
	case errors.Is(err, service.ErrEmptyBatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "no valid transactions found, check column names and layout",
		})
	case errors.As(err, &missing):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": missing.Error()})
	case errors.Is(err, service.ErrPreviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "preview session not found or expired"})
	default:
		h.logger.Error("import request failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
