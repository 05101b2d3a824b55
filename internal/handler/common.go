package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skycomfort-server/internal/middleware"
	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/repository"
	"github.com/iliyamo/skycomfort-server/internal/service"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

const (
	requestTimeout = 5 * time.Second
	defaultLimit   = 10
	maxLimit       = 100
)

// reqCtx bounds the storage work of one request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func badID(c echo.Context) error {
	return utils.JSONError(c, http.StatusBadRequest, "Invalid ID format")
}

func badBody(c echo.Context) error {
	return utils.JSONError(c, http.StatusBadRequest, "Invalid request body")
}

// pagination reads ?page and ?limit, defaulting to page 1 of 10 and
// capping limit at 100.
func pagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	switch {
	case limit < 1:
		limit = defaultLimit
	case limit > maxLimit:
		limit = maxLimit
	}
	return page, limit
}

// actor returns the authenticated user. Routes using it sit behind
// JWTAuth, so a nil user is a wiring bug.
func actor(c echo.Context) *model.User {
	u := middleware.CurrentUser(c)
	if u == nil {
		panic("handler: route requires JWTAuth")
	}
	return u
}

func forbidden(c echo.Context) error {
	return utils.JSONError(c, http.StatusForbidden, "Access denied")
}

// respond maps service and repository errors onto the error envelope.
// Anything unrecognised is returned to echo's HTTPErrorHandler as a 500.
func respond(c echo.Context, err error) error {
	var (
		ve *service.ValidationError
		nf *service.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		return utils.JSONError(c, http.StatusBadRequest, ve.Msg)
	case errors.As(err, &nf):
		return utils.JSONError(c, http.StatusNotFound, nf.Error())
	case errors.Is(err, repository.ErrNotFound):
		return utils.JSONError(c, http.StatusNotFound, "Resource not found")
	case errors.Is(err, service.ErrEmailTaken):
		return utils.JSONError(c, http.StatusConflict, "User with this email already exists")
	case errors.Is(err, service.ErrDuplicateTransaction):
		return utils.JSONError(c, http.StatusConflict, "Payment with this transaction ID already exists")
	case errors.Is(err, repository.ErrDuplicate):
		return utils.JSONError(c, http.StatusConflict, "Resource already exists")
	case errors.Is(err, repository.ErrConflict):
		return utils.JSONError(c, http.StatusConflict, "Resource is still referenced by other records")
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.JSONError(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrInvalidToken):
		return utils.JSONError(c, http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, service.ErrAccountDisabled):
		return utils.JSONError(c, http.StatusForbidden, "Account is disabled")
	case errors.Is(err, repository.ErrForbidden):
		return forbidden(c)
	case errors.Is(err, repository.ErrInvalidReference), errors.Is(err, repository.ErrInvalidFilter):
		return utils.JSONError(c, http.StatusBadRequest, "Invalid reference or filter")
	}
	return err
}
