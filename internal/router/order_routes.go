package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skycomfort-server/internal/handler"
	"github.com/iliyamo/skycomfort-server/internal/middleware"
)

// RegisterOrders mounts /api/orders. Passengers create and read their own
// orders; listing everything and status changes are staff-only.
func RegisterOrders(e *echo.Echo, h *handler.OrderHandler, authn echo.MiddlewareFunc) {
	g := e.Group("/api/orders", authn)
	g.POST("", h.Create)
	g.GET("/user", h.Mine)
	g.GET("/user/:userId", h.ForUser)
	g.GET("/:id", h.Get)

	staff := middleware.RequireStaff()
	g.GET("", h.List, staff)
	g.GET("/flight/:flightId", h.ByFlight, staff)
	g.PATCH("/:id/status", h.UpdateStatus, staff)
}

// RegisterSync mounts the offline sync endpoints.
func RegisterSync(e *echo.Echo, h *handler.SyncHandler, authn echo.MiddlewareFunc) {
	g := e.Group("/api/sync", authn)
	g.POST("", h.Sync)
	g.GET("/services", h.Services)
}

// RegisterUsers mounts the staff-only user administration routes.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, authn echo.MiddlewareFunc) {
	g := e.Group("/api/users", authn, middleware.RequireStaff())
	g.GET("", h.List)
	g.GET("/flight/:flightId/seat/:seatNumber", h.BySeat)
	g.GET("/:id", h.Get)
	g.PATCH("/:id/active", h.SetActive)
}
