package handlers

import (
	"context"
	"net/http"
	"time"

	"stocklink/internal/caching"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// HealthHandlers reports liveness and readiness
type HealthHandlers struct {
	pool         *pgxpool.Pool
	cacheService caching.CacheService
}

func NewHealthHandlers(pool *pgxpool.Pool, cacheService caching.CacheService) *HealthHandlers {
	return &HealthHandlers{
		pool:         pool,
		cacheService: cacheService,
	}
}

// Health reports process liveness
func (h *HealthHandlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Ready reports whether the storage dependencies are reachable. The
// cache is reported but does not fail readiness: the ledger serves reads
// from the database when redis is down.
func (h *HealthHandlers) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": "ok",
		"cache":    "ok",
	}
	status := http.StatusOK

	if err := h.pool.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := h.cacheService.Ping(ctx); err != nil {
		checks["cache"] = err.Error()
	}

	return c.JSON(status, map[string]interface{}{
		"checks": checks,
	})
}
