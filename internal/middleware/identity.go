package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skycomfort-server/internal/model"
)

const (
	ctxUser   = "user"
	ctxUserID = "user_id"
)

// CurrentUser returns the user set by JWTAuth, or nil on public routes.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(ctxUser).(*model.User)
	return u
}

// userKey identifies the caller for rate limiting. Anonymous callers share
// the "anon" bucket per IP.
func userKey(c echo.Context) string {
	if id, ok := c.Get(ctxUserID).(uint64); ok && id != 0 {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
