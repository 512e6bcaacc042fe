package handlers

import (
	"net/http"

	"kidspace/internal/common"
	"kidspace/internal/services"

	"github.com/labstack/echo/v4"
)

// ParameterHandlers serves the tenant's single settings row at /parametro
type ParameterHandlers struct {
	parameterService services.ParameterService
}

func NewParameterHandlers(parameterService services.ParameterService) *ParameterHandlers {
	return &ParameterHandlers{parameterService: parameterService}
}

// Get handles GET /parametro. The empty case answers with a mensagem body.
func (h *ParameterHandlers) Get(c echo.Context) error {
	_, conn, err := requestScope(c)
	if err != nil {
		return common.SendError(c, err)
	}

	rec, err := h.parameterService.Get(c.Request().Context(), conn)
	if common.IsKind(err, common.KindNotFound) {
		return c.JSON(http.StatusNotFound, common.MessageResponse{Mensagem: services.MsgNoParameter})
	}
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, rec)
}

// Create handles POST /parametro
func (h *ParameterHandlers) Create(c echo.Context) error {
	_, conn, err := requestScope(c)
	if err != nil {
		return common.SendError(c, err)
	}
	rec, err := decodeBody(c)
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.parameterService.Create(c.Request().Context(), conn, rec); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusCreated, common.MessageResponse{Mensagem: "Parâmetro criado com sucesso"})
}

// Update handles PUT /parametro
func (h *ParameterHandlers) Update(c echo.Context) error {
	_, conn, err := requestScope(c)
	if err != nil {
		return common.SendError(c, err)
	}
	rec, err := decodeBody(c)
	if err != nil {
		return common.SendError(c, err)
	}

	if err := h.parameterService.Update(c.Request().Context(), conn, rec); err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, common.MessageResponse{Mensagem: "Parâmetro atualizado com sucesso"})
}
