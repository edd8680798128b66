package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Nikitosik2311/parserwb/internal/state"
)

// HealthHandler provides liveness and readiness endpoints.
type HealthHandler struct {
	store state.Store
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(s state.Store) *HealthHandler {
	return &HealthHandler{store: s}
}

// Healthz returns 200 while the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 when the state store is reachable, 503 otherwise.
func (h *HealthHandler) Readyz(c echo.Context) error {
	if err := h.store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable"})
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}
