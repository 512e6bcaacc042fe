package handlers

import (
	"net/http"

	"kidspace/internal/common"
	"kidspace/internal/services"

	"github.com/labstack/echo/v4"
)

type CEPHandlers struct {
	cepService services.CEPService
}

func NewCEPHandlers(cepService services.CEPService) *CEPHandlers {
	return &CEPHandlers{cepService: cepService}
}

// Lookup handles GET /viacep/:cep
func (h *CEPHandlers) Lookup(c echo.Context) error {
	rec, err := h.cepService.Lookup(c.Request().Context(), c.Param("cep"))
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}
