package handlers

import (
	"net/http"
	"time"

	"stocklink/internal/middleware"
	"stocklink/internal/services"

	"github.com/labstack/echo/v4"
)

const maxDocumentSize = 10 << 20 // 10 MB

// DocumentHandlers handles supporting document uploads (count sheets,
// delivery notes) referenced from movement entries
type DocumentHandlers struct {
	documentService services.DocumentService
}

func NewDocumentHandlers(documentService services.DocumentService) *DocumentHandlers {
	return &DocumentHandlers{
		documentService: documentService,
	}
}

// UploadDocument stores a document and returns the object key to use as
// a movement's document_ref
func (h *DocumentHandlers) UploadDocument(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fileHeader.Size > maxDocumentSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file exceeds 10 MB")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read file")
	}
	defer file.Close()

	objectKey, err := h.documentService.Upload(ctx, ownerID, fileHeader.Filename, file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store document")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"document_ref": objectKey,
	})
}

// GetDocumentURL returns a short-lived download link for a stored document
func (h *DocumentHandlers) GetDocumentURL(c echo.Context) error {
	ownerID, ok := middleware.GetOwnerIDFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}

	objectKey := c.QueryParam("document_ref")
	if objectKey == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "document_ref is required")
	}
	// Object keys are prefixed with the owning account's id; an owner can
	// only resolve links for its own documents.
	if len(objectKey) < 37 || objectKey[:36] != ownerID.String() {
		return echo.NewHTTPError(http.StatusForbidden, "document belongs to another owner")
	}

	url, err := h.documentService.GetPresignedURL(objectKey, 15*time.Minute)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate document link")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"url": url,
	})
}
