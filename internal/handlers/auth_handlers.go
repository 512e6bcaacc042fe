package handlers

import (
	"net/http"

	"kidspace/internal/common"
	"kidspace/internal/models"
	"kidspace/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles the tenant user login
type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Login handles POST /login
func (h *AuthHandlers) Login(c echo.Context) error {
	_, conn, err := requestScope(c)
	if err != nil {
		return common.SendError(c, err)
	}

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, common.NewClientInputError("JSON inválido"))
	}

	user, err := h.authService.Login(c.Request().Context(), conn, &req)
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
