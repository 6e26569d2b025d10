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

// TransferHandlers handles internal and external transfer requests
type TransferHandlers struct {
	transferService services.TransferService
}

func NewTransferHandlers(transferService services.TransferService) *TransferHandlers {
	return &TransferHandlers{
		transferService: transferService,
	}
}

// InternalTransferRequest represents a same-owner transfer payload
type InternalTransferRequest struct {
	SourceLocationID uuid.UUID `json:"source_location_id"`
	DestLocationID   uuid.UUID `json:"dest_location_id"`
	SKU              string    `json:"sku"`
	Quantity         int       `json:"quantity"`
	Reason           string    `json:"reason"`
}

// TransferInternal moves stock between two of the owner's locations in
// one atomic step
func (h *TransferHandlers) TransferInternal(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}
	actor, _ := middleware.GetActorFromContext(ctx)

	var req InternalTransferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateSKU(req.SKU); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := common.ValidatePositiveInteger(req.Quantity, "quantity", 1000000); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.transferService.TransferInternal(ctx, ownerID, req.SourceLocationID, req.DestLocationID, req.SKU, req.Quantity, req.Reason, actor)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, result)
}

// ReserveTransferRequest represents a cross-owner transfer reservation
type ReserveTransferRequest struct {
	SourceLocationID uuid.UUID `json:"source_location_id"`
	DestOwnerID      uuid.UUID `json:"dest_owner_id"`
	DestLocationID   uuid.UUID `json:"dest_location_id"`
	SKU              string    `json:"sku"`
	Quantity         int       `json:"quantity"`
	Reason           string    `json:"reason"`
}

// ReserveTransfer debits the source and creates a pending transfer
// request awaiting the destination owner's decision
func (h *TransferHandlers) ReserveTransfer(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}
	actor, _ := middleware.GetActorFromContext(ctx)

	var req ReserveTransferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateSKU(req.SKU); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := common.ValidatePositiveInteger(req.Quantity, "quantity", 1000000); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DestOwnerID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "dest_owner_id is required")
	}

	request, err := h.transferService.Reserve(ctx, &services.ReserveRequest{
		SourceOwnerID:    ownerID,
		SourceLocationID: req.SourceLocationID,
		DestOwnerID:      req.DestOwnerID,
		DestLocationID:   req.DestLocationID,
		SKU:              req.SKU,
		Quantity:         req.Quantity,
		Reason:           req.Reason,
		Actor:            actor,
	})
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusCreated, request)
}

// ApproveTransfer accepts a pending incoming transfer, crediting the
// destination location
func (h *TransferHandlers) ApproveTransfer(c echo.Context) error {
	return h.resolve(c, true)
}

// RejectTransfer declines a pending incoming transfer, returning the
// quantity to the source location
func (h *TransferHandlers) RejectTransfer(c echo.Context) error {
	return h.resolve(c, false)
}

func (h *TransferHandlers) resolve(c echo.Context, approve bool) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}
	actor, _ := middleware.GetActorFromContext(ctx)

	requestID, err := common.ValidateUUID(c.Param("id"), "transfer request id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var request *models.TransferRequest
	if approve {
		request, err = h.transferService.Approve(ctx, ownerID, requestID, actor)
	} else {
		request, err = h.transferService.Reject(ctx, ownerID, requestID, actor)
	}
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, request)
}

// GetTransfer returns one transfer request visible to the owner
func (h *TransferHandlers) GetTransfer(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}

	requestID, err := common.ValidateUUID(c.Param("id"), "transfer request id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	request, err := h.transferService.GetRequest(ctx, ownerID, requestID)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, request)
}

// ListPendingTransfers returns pending requests addressed to the owner
func (h *TransferHandlers) ListPendingTransfers(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}

	requests, err := h.transferService.ListPending(ctx, ownerID)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"transfers": requests,
	})
}

// ListSentTransfers returns pending requests the owner has initiated
func (h *TransferHandlers) ListSentTransfers(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}

	requests, err := h.transferService.ListSent(ctx, ownerID)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"transfers": requests,
	})
}

// ListResolvedTransfers returns recently resolved requests on either side
func (h *TransferHandlers) ListResolvedTransfers(c echo.Context) error {
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
	limit, _, err := common.ValidatePaginationParams(req.Limit, 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	requests, err := h.transferService.ListResolved(ctx, ownerID, limit)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"transfers": requests,
	})
}
