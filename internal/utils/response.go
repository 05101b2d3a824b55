package utils

import (
	"github.com/labstack/echo/v4"
)

// Every JSON body produced by the API is one of three envelopes:
//
//	{"status":"success","data":...}
//	{"status":"success","results":n,"data":[...]}
//	{"status":"error","message":"..."}
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorBody is the error envelope.
type ErrorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// JSONSuccess writes {"status":"success","data":data}.
func JSONSuccess(c echo.Context, code int, data any) error {
	return c.JSON(code, echo.Map{"status": StatusSuccess, "data": data})
}

// JSONList writes a list envelope with a results count.
func JSONList(c echo.Context, code int, results int, data any) error {
	return c.JSON(code, echo.Map{"status": StatusSuccess, "results": results, "data": data})
}

// JSONMessage writes a success envelope carrying only a message.
func JSONMessage(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"status": StatusSuccess, "message": msg})
}

// JSONError writes {"status":"error","message":msg}.
func JSONError(c echo.Context, code int, msg string) error {
	return c.JSON(code, ErrorBody{Status: StatusError, Message: msg})
}
