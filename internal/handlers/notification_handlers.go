package handlers

import (
	"net/http"

	"stocklink/internal/middleware"
	"stocklink/internal/services"

	"github.com/labstack/echo/v4"
)

// NotificationHandlers exposes the per-owner notification inbox
type NotificationHandlers struct {
	notificationService services.NotificationService
}

func NewNotificationHandlers(notificationService services.NotificationService) *NotificationHandlers {
	return &NotificationHandlers{
		notificationService: notificationService,
	}
}

// ListNotifications returns the owner's most recent notifications
func (h *NotificationHandlers) ListNotifications(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}

	var req struct {
		Limit int `query:"limit"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	notifications, err := h.notificationService.List(ctx, ownerID, req.Limit)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
	})
}
