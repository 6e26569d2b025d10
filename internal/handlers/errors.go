package handlers

import (
	"errors"
	"net/http"

	"stocklink/internal/common"

	"github.com/labstack/echo/v4"
)

// mapError translates ledger sentinel errors into HTTP errors. The
// calling layer decides retry behavior; the core only guarantees a
// typed outcome.
func mapError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, common.ErrInvalidQuantity):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrInsufficientStock):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrNoCollaboration):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, common.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrAlreadyResolved):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrStorageConflict):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Conflicting concurrent update, please retry")
	case errors.Is(err, common.ErrStorageUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Storage temporarily unavailable, please retry")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Operation failed")
	}
}
