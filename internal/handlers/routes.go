package handlers

import (
	"kidspace/internal/query"
	"kidspace/internal/repositories"
	"kidspace/internal/services"

	"github.com/labstack/echo/v4"
)

var resourceMessages = map[string]Messages{
	repositories.Criancas.Name:        {"Criança criada com sucesso", "Criança atualizada com sucesso", "Criança removida com sucesso"},
	repositories.Responsaveis.Name:    {"Responsável criado com sucesso", "Responsável atualizado com sucesso", "Responsável removido com sucesso"},
	repositories.Checkins.Name:        {"Checkin criado com sucesso", "Check-in atualizado com sucesso", "Checkin removido com sucesso"},
	repositories.Atividades.Name:      {"Atividade criada com sucesso", "Atividade atualizada com sucesso", "Atividade removida com sucesso"},
	repositories.CentrosCusto.Name:    {"Centro de custo criado com sucesso", "Centro de custo atualizado com sucesso", "Centro de custo removido com sucesso"},
	repositories.Naturezas.Name:       {"Natureza criada com sucesso", "Natureza atualizada com sucesso", "Natureza removida com sucesso"},
	repositories.Empresas.Name:        {"Empresa criada com sucesso", "Empresa atualizada com sucesso", "Empresa removida com sucesso"},
	repositories.GuardasVolume.Name:   {"Guarda-volume criado com sucesso", "Guarda-volume atualizado com sucesso", "Guarda-volume removido com sucesso"},
	repositories.Parceiros.Name:       {"Parceiro criado com sucesso", "Parceiro atualizado com sucesso", "Parceiro removido com sucesso"},
	repositories.FormasPagamento.Name: {"Forma de pagamento criada com sucesso", "Forma de pagamento atualizada com sucesso", "Forma de pagamento removida com sucesso"},
	repositories.Usuarios.Name:        {"Usuário criado com sucesso", "Usuário atualizado com sucesso", "Usuário removido com sucesso"},
	repositories.Convenios.Name:       {"Convênio criado com sucesso", "Convênio atualizado com sucesso", "Convênio removido com sucesso"},
	repositories.Financeiro.Name:      {"Registro financeiro criado com sucesso", "Registro financeiro atualizado com sucesso", "Registro financeiro removido com sucesso"},
}

// resources with a /search alias of their list route
var searchAliases = map[string]bool{
	repositories.Checkins.Name:   true,
	repositories.Convenios.Name:  true,
	repositories.Financeiro.Name: true,
}

// Services groups what the handlers depend on.
type Services struct {
	Records    services.RecordService
	Children   services.ChildService
	Checkins   services.CheckinService
	Auth       services.AuthService
	CEP        services.CEPService
	Images     services.ImageService
	Parameters services.ParameterService
}

// RegisterRoutes mounts every tenant-scoped route on e.
func RegisterRoutes(e *echo.Echo, svc Services) {
	writers := map[string]CompositeWriter{
		repositories.Criancas.Name: svc.Children,
		repositories.Checkins.Name: svc.Checkins,
	}

	images := NewImageHandlers(svc.Images)
	e.POST("/criancas/exportar_imagens", images.ExportChildImages)
	e.POST("/upload", images.Upload)

	for _, res := range repositories.AllResources() {
		h := newResourceHandlers(res, svc.Records)
		if w, ok := writers[res.Name]; ok && w != nil {
			h.WithWriter(w)
		}
		h.Register(e, searchAliases[res.Name])
	}

	auth := NewAuthHandlers(svc.Auth)
	e.POST("/login", auth.Login)

	cep := NewCEPHandlers(svc.CEP)
	e.GET("/viacep/:cep", cep.Lookup)

	params := NewParameterHandlers(svc.Parameters)
	e.GET("/parametro", params.Get)
	e.POST("/parametro", params.Create)
	e.PUT("/parametro", params.Update)
}

func newResourceHandlers(res *query.Resource, records services.RecordService) *ResourceHandlers {
	return NewResourceHandlers(res, records, resourceMessages[res.Name])
}
