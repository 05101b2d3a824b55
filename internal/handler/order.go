package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/service"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

// OrderHandler serves /api/orders.
type OrderHandler struct {
	Orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{Orders: orders}
}

// Create places an order. Passengers always order for themselves; staff
// may name another userId.
func (h *OrderHandler) Create(c echo.Context) error {
	var in service.CreateOrderInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	me := actor(c)
	if !me.IsStaff || in.UserID == 0 {
		in.UserID = me.ID
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	o, err := h.Orders.CreateWithItems(ctx, in)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONSuccess(c, http.StatusCreated, echo.Map{"order": o})
}

func (h *OrderHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	o, err := h.Orders.Details(ctx, id)
	if err != nil {
		return respond(c, err)
	}
	if !service.CanAccess(actor(c), o) {
		return forbidden(c)
	}
	return utils.JSONSuccess(c, http.StatusOK, echo.Map{"order": o})
}

// Mine lists the caller's own orders.
func (h *OrderHandler) Mine(c echo.Context) error {
	return h.listForUser(c, actor(c).ID)
}

// ForUser lists another user's orders; only staff may look at others.
func (h *OrderHandler) ForUser(c echo.Context) error {
	id, ok := pathID(c, "userId")
	if !ok {
		return badID(c)
	}
	if me := actor(c); !me.IsStaff && me.ID != id {
		return forbidden(c)
	}
	return h.listForUser(c, id)
}

func (h *OrderHandler) listForUser(c echo.Context, userID uint64) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	orders, err := h.Orders.FindByUser(ctx, userID)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONList(c, http.StatusOK, len(orders), echo.Map{"orders": orders})
}

// List pages through all orders, optionally by ?status.
func (h *OrderHandler) List(c echo.Context) error {
	page, limit := pagination(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	orders, err := h.Orders.List(ctx, model.OrderStatus(c.QueryParam("status")), page, limit)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONList(c, http.StatusOK, len(orders), echo.Map{"orders": orders})
}

func (h *OrderHandler) ByFlight(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	orders, err := h.Orders.FindByFlight(ctx, c.Param("flightId"))
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONList(c, http.StatusOK, len(orders), echo.Map{"orders": orders})
}

type orderStatusReq struct {
	Status model.OrderStatus `json:"status"`
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	var req orderStatusReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	o, err := h.Orders.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONSuccess(c, http.StatusOK, echo.Map{"order": o})
}
