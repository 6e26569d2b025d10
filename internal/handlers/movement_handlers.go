package handlers

import (
	"net/http"
	"time"

	"stocklink/internal/common"
	"stocklink/internal/middleware"
	"stocklink/internal/models"
	"stocklink/internal/services"

	"github.com/labstack/echo/v4"
)

// MovementHandlers exposes the movement history
type MovementHandlers struct {
	ledgerService services.LedgerService
}

func NewMovementHandlers(ledgerService services.LedgerService) *MovementHandlers {
	return &MovementHandlers{
		ledgerService: ledgerService,
	}
}

// ListMovementsRequest represents query parameters for movement history
type ListMovementsRequest struct {
	LocationID string `query:"location_id"`
	Direction  string `query:"direction"`
	SKU        string `query:"sku"`
	From       string `query:"from"`
	To         string `query:"to"`
	Limit      int    `query:"limit"`
	Offset     int    `query:"offset"`
}

// ListMovements returns movement entries matching the query filter,
// newest first
func (h *MovementHandlers) ListMovements(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}

	var req ListMovementsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	filter := &models.MovementFilter{
		Limit:  limit,
		Offset: offset,
	}

	if req.LocationID != "" {
		locationID, err := common.ValidateUUID(req.LocationID, "location_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filter.LocationID = &locationID
	}

	if req.Direction != "" {
		direction := models.MovementDirection(req.Direction)
		if direction != models.DirectionIn && direction != models.DirectionOut && direction != models.DirectionAdjustment {
			return echo.NewHTTPError(http.StatusBadRequest, "direction must be in, out or adjustment")
		}
		filter.Direction = &direction
	}

	if req.SKU != "" {
		if err := common.ValidateSKU(req.SKU); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		filter.SKU = &req.SKU
	}

	if req.From != "" {
		from, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "from must be RFC3339 formatted")
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "to must be RFC3339 formatted")
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil {
		if err := common.ValidateDateRange(*filter.From, *filter.To); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	movements, err := h.ledgerService.ListMovements(ctx, ownerID, filter)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"movements": movements,
		"limit":     limit,
		"offset":    offset,
	})
}

// GetMovementsByCorrelation returns every movement entry written under one
// correlation id, e.g. both sides of an internal transfer
func (h *MovementHandlers) GetMovementsByCorrelation(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}

	correlationID, err := common.ValidateUUID(c.Param("id"), "correlation id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	movements, err := h.ledgerService.ListMovementsByCorrelation(ctx, ownerID, correlationID)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"movements": movements,
	})
}
