package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/skycomfort-server/internal/paybridge"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

// BridgeHandler exposes the mock payment channel to demo clients.
type BridgeHandler struct {
	Channel *paybridge.Channel
}

func NewBridgeHandler(ch *paybridge.Channel) *BridgeHandler {
	return &BridgeHandler{Channel: ch}
}

type bridgeCall struct {
	Method    string         `json:"method"`
	Arguments map[string]any `json:"arguments"`
}

// Invoke runs one channel method. Method errors come back as 400 (or 501
// for unknown methods) with the channel error code in "error".
func (h *BridgeHandler) Invoke(c echo.Context) error {
	var call bridgeCall
	if err := c.Bind(&call); err != nil {
		return badBody(c)
	}
	if strings.TrimSpace(call.Method) == "" {
		return utils.JSONError(c, http.StatusBadRequest, "method is required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	out, err := h.Channel.Invoke(ctx, call.Method, call.Arguments)
	var me *paybridge.MethodError
	switch {
	case errors.As(err, &me):
		code := http.StatusBadRequest
		if me.Code == paybridge.CodeNotImplemented {
			code = http.StatusNotImplemented
		}
		return c.JSON(code, utils.ErrorBody{Status: utils.StatusError, Message: me.Message, Error: me.Code})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return utils.JSONError(c, http.StatusGatewayTimeout, "Payment processing timed out")
	case err != nil:
		return err
	}
	return utils.JSONSuccess(c, http.StatusOK, echo.Map{"channel": h.Channel.Name(), "method": call.Method, "result": out})
}
