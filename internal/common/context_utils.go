package common

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestScopeKey holds the tenant and connection bound to the current request.
const RequestScopeKey = "request_scope"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Erro string `json:"erro"`
}

// MessageResponse is returned by delete and informational endpoints.
type MessageResponse struct {
	Mensagem string `json:"mensagem"`
}

// MutationResponse is returned by create and update endpoints.
type MutationResponse struct {
	ID       any    `json:"id"`
	Mensagem string `json:"mensagem"`
}

// SendError writes err as {"erro": message} with the status of its kind.
func SendError(c echo.Context, err error) error {
	appErr := AsAppError(err)
	status := appErr.Kind.Status()

	fields := []zap.Field{
		zap.String("kind", appErr.Kind.String()),
		zap.Int("status", status),
		zap.String("path", c.Path()),
		zap.Error(err),
	}
	if status >= 500 {
		zap.L().Error("request failed", fields...)
	} else {
		zap.L().Debug("request rejected", fields...)
	}

	return c.JSON(status, ErrorResponse{Erro: appErr.Message})
}

// ParseID reads a positive integer path parameter.
func ParseID(c echo.Context, name string) (int64, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewClientInputError("ID inválido: %q", raw)
	}
	return id, nil
}
