package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/service"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

// Authenticator resolves a raw bearer token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*model.User, error)
}

// JWTAuth rejects requests without a valid bearer token. On success the
// user is stored under "user" and its id under "user_id".
func JWTAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return utils.JSONError(c, http.StatusUnauthorized, "Access denied. No token provided.")
			}
			u, err := auth.Authenticate(c.Request().Context(), raw)
			switch {
			case errors.Is(err, service.ErrAccountDisabled):
				return utils.JSONError(c, http.StatusForbidden, "Account is disabled")
			case errors.Is(err, service.ErrInvalidToken):
				return utils.JSONError(c, http.StatusUnauthorized, "Invalid or expired token")
			case err != nil:
				return err
			}
			c.Set(ctxUser, u)
			c.Set(ctxUserID, u.ID)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
