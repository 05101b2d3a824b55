package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skycomfort-server/internal/handler"
	"github.com/iliyamo/skycomfort-server/internal/middleware"
)

// RegisterPayments mounts /api/payments.
func RegisterPayments(e *echo.Echo, h *handler.PaymentHandler, authn echo.MiddlewareFunc) {
	g := e.Group("/api/payments", authn)
	g.POST("", h.Create)
	g.GET("/transaction/:transactionId", h.ByTransaction)
	g.GET("/order/:orderId", h.ByOrder)

	staff := middleware.RequireStaff()
	g.GET("", h.List, staff)
	g.PATCH("/:id/status", h.UpdateStatus, staff)
}

// RegisterBridge exposes the mock payment channel over HTTP.
func RegisterBridge(e *echo.Echo, h *handler.BridgeHandler, authn echo.MiddlewareFunc) {
	e.POST("/api/bridge/payment", h.Invoke, authn)
}
