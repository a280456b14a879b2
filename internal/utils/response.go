package utils // utils provides the uniform response envelope and token helpers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the uniform JSON wrapper returned by every operation.
// Success responses carry a data payload; failures carry only the
// message and code. Codes are namespaced as DOMAIN/REASON so clients
// can branch on them reliably.
type Envelope struct {
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Data    interface{} `json:"data,omitempty"`
}

// Succeed writes a success envelope with HTTP 200.
func Succeed(c echo.Context, message, code string, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Message: message, Code: code, Data: data})
}

// Fail writes an error envelope. The HTTP status defaults to 500 when
// none is given; validation, auth and not-found failures pass an
// explicit status.
func Fail(c echo.Context, message, code string, status ...int) error {
	s := http.StatusInternalServerError
	if len(status) > 0 {
		s = status[0]
	}
	return c.JSON(s, Envelope{Message: message, Code: code})
}
