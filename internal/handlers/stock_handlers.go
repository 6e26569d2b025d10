package handlers

import (
	"net/http"

	"stocklink/internal/common"
	"stocklink/internal/middleware"
	"stocklink/internal/models"
	"stocklink/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// StockHandlers handles stock-related HTTP requests
type StockHandlers struct {
	ledgerService services.LedgerService
}

// NewStockHandlers creates a new stock handlers instance
func NewStockHandlers(ledgerService services.LedgerService) *StockHandlers {
	return &StockHandlers{
		ledgerService: ledgerService,
	}
}

// ListStockRequest represents query parameters for listing stock
type ListStockRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// ListStock returns one location's stock records
func (h *StockHandlers) ListStock(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}

	locationID, err := common.ValidateUUID(c.Param("location"), "location")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req ListStockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	limit, offset, err := common.ValidatePaginationParams(req.Limit, req.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	records, err := h.ledgerService.ListStock(ctx, ownerID, locationID, limit, offset)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"stock":  records,
		"limit":  limit,
		"offset": offset,
	})
}

// GetStock returns a single stock record
func (h *StockHandlers) GetStock(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}

	locationID, err := common.ValidateUUID(c.Param("location"), "location")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sku := c.Param("sku")
	if err := common.ValidateSKU(sku); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	record, err := h.ledgerService.GetStock(ctx, ownerID, locationID, sku)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, record)
}

// MutateStockRequest represents a receive/issue request payload
type MutateStockRequest struct {
	LocationID   uuid.UUID `json:"location_id"`
	SKU          string    `json:"sku"`
	Quantity     int       `json:"quantity"`
	Reason       string    `json:"reason"`
	Subtype      string    `json:"subtype"`
	DocumentRef  *string   `json:"document_ref,omitempty"`
	Name         string    `json:"name,omitempty"`
	Category     string    `json:"category,omitempty"`
	Supplier     string    `json:"supplier,omitempty"`
	Slot         string    `json:"slot,omitempty"`
	SalePrice    float64   `json:"sale_price,omitempty"`
	CostPrice    float64   `json:"cost_price,omitempty"`
	MinThreshold int       `json:"min_threshold,omitempty"`
}

// ReceiveStock credits quantity into a location
func (h *StockHandlers) ReceiveStock(c echo.Context) error {
	return h.mutate(c, models.DirectionIn, "received")
}

// IssueStock debits quantity out of a location
func (h *StockHandlers) IssueStock(c echo.Context) error {
	return h.mutate(c, models.DirectionOut, "issued")
}

func (h *StockHandlers) mutate(c echo.Context, direction models.MovementDirection, defaultSubtype string) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}
	actor, _ := middleware.GetActorFromContext(ctx)

	var req MutateStockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateSKU(req.SKU); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := common.ValidatePositiveInteger(req.Quantity, "quantity", 1000000); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Subtype == "" {
		req.Subtype = defaultSubtype
	}

	mutation, err := h.ledgerService.ApplyDelta(ctx, ownerID, req.LocationID, req.SKU, direction, req.Quantity, models.MutationMeta{
		Name:         req.Name,
		Category:     req.Category,
		Supplier:     req.Supplier,
		Slot:         req.Slot,
		SalePrice:    req.SalePrice,
		CostPrice:    req.CostPrice,
		MinThreshold: req.MinThreshold,
		Subtype:      req.Subtype,
		Reason:       req.Reason,
		DocumentRef:  req.DocumentRef,
		Actor:        actor,
	})
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, mutation)
}

// ListLowStock returns records at or below their minimum threshold
func (h *StockHandlers) ListLowStock(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}

	records, err := h.ledgerService.ListLowStock(ctx, ownerID)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"stock": records,
	})
}

// ConsolidatedStock returns per-item totals across all locations
func (h *StockHandlers) ConsolidatedStock(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}

	rows, err := h.ledgerService.Consolidated(ctx, ownerID)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": rows,
	})
}
