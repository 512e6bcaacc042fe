package handlers

import (
	"errors"

	"kidspace/internal/common"
	"kidspace/internal/middleware"
	"kidspace/internal/models"
	"kidspace/pkg/database"

	"github.com/labstack/echo/v4"
)

var errNoScope = errors.New("request has no tenant scope")

// requestScope returns the tenant and connection bound by the tenant middleware.
func requestScope(c echo.Context) (*models.Tenant, database.Conn, error) {
	scope := middleware.RequestScope(c)
	if scope == nil || scope.Lease == nil {
		return nil, nil, common.NewTenantError(errNoScope)
	}
	return scope.Tenant, scope.Conn(), nil
}

// decodeBody reads the JSON object sent by the client.
func decodeBody(c echo.Context) (models.Record, error) {
	rec, err := models.DecodeRecord(c.Request().Body)
	if err != nil {
		if errors.Is(err, models.ErrEmptyPayload) {
			return nil, common.NewClientInputError(common.MsgNoData)
		}
		return nil, common.NewClientInputError("JSON inválido: %v", err)
	}
	if len(rec) == 0 {
		return nil, common.NewClientInputError(common.MsgNoData)
	}
	return rec, nil
}
