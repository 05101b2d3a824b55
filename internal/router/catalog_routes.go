package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skycomfort-server/internal/handler"
	"github.com/iliyamo/skycomfort-server/internal/middleware"
)

// RegisterCatalog mounts /api/services. Reads are public and cached;
// writes need a staff token and purge the cache.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, authn, cache, purge echo.MiddlewareFunc) {
	pub := e.Group("/api/services", cache)
	pub.GET("", h.List)
	pub.GET("/type/:type", h.ByType)
	pub.GET("/category/:category", h.ByCategory)
	pub.GET("/:id", h.Get)

	staff := e.Group("/api/services", authn, middleware.RequireStaff(), purge)
	staff.POST("", h.Create)
	staff.PUT("/:id", h.Update)
	staff.PATCH("/:id/availability", h.SetAvailability)
	staff.DELETE("/:id", h.Delete)
}
