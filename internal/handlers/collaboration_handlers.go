package handlers

import (
	"net/http"

	"stocklink/internal/common"
	"stocklink/internal/middleware"
	"stocklink/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CollaborationHandlers handles collaboration link requests between owners
type CollaborationHandlers struct {
	collaborationService services.CollaborationService
}

func NewCollaborationHandlers(collaborationService services.CollaborationService) *CollaborationHandlers {
	return &CollaborationHandlers{
		collaborationService: collaborationService,
	}
}

// RequestCollaborationRequest represents a collaboration request payload
type RequestCollaborationRequest struct {
	RecipientID uuid.UUID `json:"recipient_id"`
}

// RequestCollaboration creates a pending collaboration link with another owner
func (h *CollaborationHandlers) RequestCollaboration(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}

	var req RequestCollaborationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.RecipientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "recipient_id is required")
	}

	link, err := h.collaborationService.Request(ctx, ownerID, req.RecipientID)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusCreated, link)
}

// RespondCollaborationRequest represents an accept/reject payload
type RespondCollaborationRequest struct {
	Accept bool `json:"accept"`
}

// RespondCollaboration accepts or rejects a pending collaboration request
func (h *CollaborationHandlers) RespondCollaboration(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}

	linkID, err := common.ValidateUUID(c.Param("id"), "collaboration link id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req RespondCollaborationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	link, err := h.collaborationService.Respond(ctx, ownerID, linkID, req.Accept)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, link)
}

// ListCollaborations returns every link the owner participates in
func (h *CollaborationHandlers) ListCollaborations(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}

	links, err := h.collaborationService.List(ctx, ownerID)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"collaborations": links,
	})
}
