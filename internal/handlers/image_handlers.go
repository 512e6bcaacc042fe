package handlers

import (
	"fmt"
	"net/http"

	"kidspace/internal/common"
	"kidspace/internal/services"

	"github.com/labstack/echo/v4"
)

// UploadResponse is returned by POST /upload
type UploadResponse struct {
	Mensagem string `json:"mensagem"`
	Caminho  string `json:"caminho"`
}

// ExportResponse is returned by POST /criancas/exportar_imagens
type ExportResponse struct {
	Mensagem string   `json:"mensagem"`
	Arquivos []string `json:"arquivos,omitempty"`
}

type ImageHandlers struct {
	imageService services.ImageService
}

func NewImageHandlers(imageService services.ImageService) *ImageHandlers {
	return &ImageHandlers{imageService: imageService}
}

// Upload handles POST /upload with multipart fields pasta and imagem.
func (h *ImageHandlers) Upload(c echo.Context) error {
	tenant, _, err := requestScope(c)
	if err != nil {
		return common.SendError(c, err)
	}

	folder := c.FormValue("pasta")
	header, err := c.FormFile("imagem")
	if err != nil || folder == "" {
		return common.SendError(c, common.NewClientInputError("Pasta e imagem são obrigatórios"))
	}
	file, err := header.Open()
	if err != nil {
		return common.SendError(c, common.NewClientInputError("imagem ilegível: %v", err))
	}
	defer file.Close()

	key, err := h.imageService.Upload(c.Request().Context(), tenant, folder, header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		return common.SendError(c, err)
	}
	return c.JSON(http.StatusOK, UploadResponse{Mensagem: "Imagem enviada com sucesso", Caminho: key})
}

// ExportChildImages handles POST /criancas/exportar_imagens?limit&offset
func (h *ImageHandlers) ExportChildImages(c echo.Context) error {
	tenant, conn, err := requestScope(c)
	if err != nil {
		return common.SendError(c, err)
	}
	page, err := services.PageFromParams(c.QueryParams())
	if err != nil {
		return common.SendError(c, err)
	}
	limit, offset := services.DefaultExportLimit, 0
	if page.Limit != nil {
		limit = *page.Limit
	}
	if page.Offset != nil {
		offset = *page.Offset
	}

	keys, err := h.imageService.ExportChildImages(c.Request().Context(), conn, tenant, limit, offset)
	if err != nil {
		return common.SendError(c, err)
	}
	if len(keys) == 0 {
		return c.JSON(http.StatusOK, ExportResponse{Mensagem: "Nenhuma imagem encontrada nesse lote"})
	}
	return c.JSON(http.StatusOK, ExportResponse{
		Mensagem: fmt.Sprintf("%d imagens exportadas", len(keys)),
		Arquivos: keys,
	})
}
