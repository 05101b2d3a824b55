package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skycomfort-server/internal/repository"
	"github.com/iliyamo/skycomfort-server/internal/service"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

// UserHandler serves the staff-only /api/users routes.
type UserHandler struct {
	Users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

func (h *UserHandler) List(c echo.Context) error {
	page, limit := pagination(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.FindAll(ctx, repository.Filter{}.Page(page, limit))
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONList(c, http.StatusOK, len(users), echo.Map{"users": users})
}

// Get returns a user with their orders.
func (h *UserHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.FindWithOrders(ctx, id)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONSuccess(c, http.StatusOK, echo.Map{"user": u})
}

func (h *UserHandler) BySeat(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.FindByFlightAndSeat(ctx, c.Param("flightId"), c.Param("seatNumber"))
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONSuccess(c, http.StatusOK, echo.Map{"user": u})
}

type activeReq struct {
	IsActive *bool `json:"isActive"`
}

// SetActive enables or disables an account.
func (h *UserHandler) SetActive(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	var req activeReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if req.IsActive == nil {
		return utils.JSONError(c, http.StatusBadRequest, "isActive is required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.SetActive(ctx, id, *req.IsActive)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONSuccess(c, http.StatusOK, echo.Map{"user": u})
}
