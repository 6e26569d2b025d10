package handlers

import (
	"net/http"

	"stocklink/internal/common"
	"stocklink/internal/middleware"
	"stocklink/internal/models"
	"stocklink/internal/services"

	"github.com/labstack/echo/v4"
)

// StocktakeHandlers handles physical count reconciliation
type StocktakeHandlers struct {
	stocktakeService services.StocktakeService
}

func NewStocktakeHandlers(stocktakeService services.StocktakeService) *StocktakeHandlers {
	return &StocktakeHandlers{
		stocktakeService: stocktakeService,
	}
}

// SubmitStocktake reconciles a batch of physical counts against the
// ledger in one atomic unit
func (h *StocktakeHandlers) SubmitStocktake(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, ok := middleware.GetOwnerIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Owner not found")
	}
	actor, _ := middleware.GetActorFromContext(ctx)

	var submission models.StocktakeSubmission
	if err := c.Bind(&submission); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if len(submission.Lines) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Submission must contain at least one line")
	}
	for _, line := range submission.Lines {
		if err := common.ValidateSKU(line.SKU); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	result, err := h.stocktakeService.Reconcile(ctx, ownerID, &submission, actor)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(http.StatusOK, result)
}
