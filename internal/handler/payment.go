package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skycomfort-server/internal/model"
	"github.com/iliyamo/skycomfort-server/internal/service"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

// PaymentHandler serves /api/payments.
type PaymentHandler struct {
	Payments *service.PaymentService
	Orders   *service.OrderService
}

func NewPaymentHandler(payments *service.PaymentService, orders *service.OrderService) *PaymentHandler {
	return &PaymentHandler{Payments: payments, Orders: orders}
}

func (h *PaymentHandler) Create(c echo.Context) error {
	var in service.ProcessPaymentInput
	if err := c.Bind(&in); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Payments.Process(ctx, actor(c), in)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONSuccess(c, http.StatusCreated, echo.Map{"payment": p})
}

func (h *PaymentHandler) ByTransaction(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Payments.FindByTransactionID(ctx, c.Param("transactionId"))
	if err != nil {
		return respond(c, err)
	}
	if !service.CanAccess(actor(c), p.Order) {
		return forbidden(c)
	}
	return utils.JSONSuccess(c, http.StatusOK, echo.Map{"payment": p})
}

func (h *PaymentHandler) ByOrder(c echo.Context) error {
	id, ok := pathID(c, "orderId")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	o, err := h.Orders.FindByID(ctx, id)
	if err != nil {
		return respond(c, err)
	}
	if !service.CanAccess(actor(c), o) {
		return forbidden(c)
	}
	payments, err := h.Payments.FindByOrder(ctx, id)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONList(c, http.StatusOK, len(payments), echo.Map{"payments": payments})
}

func (h *PaymentHandler) List(c echo.Context) error {
	page, limit := pagination(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	payments, err := h.Payments.List(ctx, model.PaymentStatus(c.QueryParam("status")), page, limit)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONList(c, http.StatusOK, len(payments), echo.Map{"payments": payments})
}

type paymentStatusReq struct {
	Status   model.PaymentStatus `json:"status"`
	Metadata *model.JSONMap      `json:"metadata"`
}

func (h *PaymentHandler) UpdateStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	var req paymentStatusReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Payments.UpdateStatus(ctx, id, req.Status, req.Metadata)
	if err != nil {
		return respond(c, err)
	}
	return utils.JSONSuccess(c, http.StatusOK, echo.Map{"payment": p})
}
