package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skycomfort-server/internal/utils"
)

// RequireStaff allows only staff users through. It must run after JWTAuth.
func RequireStaff() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := CurrentUser(c)
			if u == nil {
				return utils.JSONError(c, http.StatusUnauthorized, "Access denied. No token provided.")
			}
			if !u.IsStaff {
				return utils.JSONError(c, http.StatusForbidden, "Access denied. Staff privileges required.")
			}
			return next(c)
		}
	}
}
