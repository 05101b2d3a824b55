package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skycomfort-server/internal/utils"
)

// Pinger is satisfied by repository.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Env   string
	Store Pinger
}

func NewHealthHandler(env string, store Pinger) *HealthHandler {
	return &HealthHandler{Env: env, Store: store}
}

// Health reports liveness and whether the database answers.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		return utils.JSONError(c, http.StatusServiceUnavailable, "Database unavailable")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":      utils.StatusSuccess,
		"message":     "Server is healthy",
		"environment": h.Env,
		"timestamp":   time.Now().UTC(),
	})
}
