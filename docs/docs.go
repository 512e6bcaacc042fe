// Package docs builds the OpenAPI description served at /swagger from the routes mounted on echo,
// so the document always matches the router.
package docs

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/go-openapi/spec"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

const (
	Title       = "Kidspace API"
	Version     = "1.0"
	description = "Multi-tenant childcare check-in API. Every route except /health and /swagger requires the tenant header."
)

// Operations with a hand-written summary. Everything else gets one from its method and path shape.
var summaries = map[string]string{
	"POST /login":                     "Autentica um usuário",
	"GET /viacep/{cep}":               "Consulta um CEP no ViaCEP",
	"POST /upload":                    "Envia uma imagem para o storage",
	"POST /criancas/exportar_imagens": "Exporta as fotos das crianças para o storage",
	"GET /parametro":                  "Busca o parâmetro da empresa",
	"POST /parametro":                 "Cria o parâmetro da empresa",
	"PUT /parametro":                  "Atualiza o parâmetro da empresa",
	"GET /health":                     "Estado do serviço e dependências",
	"GET /health/live":                "Liveness",
}

type document struct {
	doc string
}

func (d *document) ReadDoc() string { return d.doc }

// Register publishes the document for every route on e. Call it once, after all routes are mounted.
func Register(e *echo.Echo) error {
	raw, err := json.Marshal(Build(e.Routes()))
	if err != nil {
		return err
	}
	swag.Register(swag.Name, &document{doc: string(raw)})
	return nil
}

// Build renders a Swagger 2.0 document for routes.
func Build(routes []*echo.Route) *spec.Swagger {
	paths := map[string]spec.PathItem{}

	sorted := append([]*echo.Route(nil), routes...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Path == sorted[j].Path {
			return sorted[i].Method < sorted[j].Method
		}
		return sorted[i].Path < sorted[j].Path
	})

	for _, r := range sorted {
		if strings.HasPrefix(r.Path, "/swagger") || r.Method == echo.RouteNotFound {
			continue
		}
		path := openAPIPath(r.Path)
		op := operation(r.Method, path)
		if op == nil {
			continue
		}
		item := paths[path]
		switch r.Method {
		case http.MethodGet:
			item.Get = op
		case http.MethodPost:
			item.Post = op
		case http.MethodPut:
			item.Put = op
		case http.MethodDelete:
			item.Delete = op
		case http.MethodPatch:
			item.Patch = op
		default:
			continue
		}
		paths[path] = item
	}

	return &spec.Swagger{SwaggerProps: spec.SwaggerProps{
		Swagger:  "2.0",
		BasePath: "/",
		Consumes: []string{echo.MIMEApplicationJSON},
		Produces: []string{echo.MIMEApplicationJSON},
		Info: &spec.Info{InfoProps: spec.InfoProps{
			Title:       Title,
			Version:     Version,
			Description: description,
		}},
		Paths: &spec.Paths{Paths: paths},
	}}
}

func operation(method, path string) *spec.Operation {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	tag := segments[0]
	if tag == "" {
		return nil
	}

	op := spec.NewOperation(operationID(method, path)).
		WithTags(tag).
		WithSummary(summary(method, path, segments)).
		RespondsWith(http.StatusOK, spec.NewResponse().WithDescription("OK")).
		RespondsWith(http.StatusBadRequest, errorResponse("Requisição inválida")).
		RespondsWith(http.StatusInternalServerError, errorResponse("Erro interno"))

	if tag != "health" {
		op.AddParam(spec.HeaderParam("tenant").Typed("string", "").WithDescription("CNPJ da empresa").AsRequired())
		op.RespondsWith(http.StatusForbidden, errorResponse("Tenant inválido ou inativo"))
	}
	for _, s := range segments {
		if name, ok := strings.CutPrefix(s, "{"); ok {
			name = strings.TrimSuffix(name, "}")
			kind := "integer"
			if name != "id" {
				kind = "string"
			}
			op.AddParam(spec.PathParam(name).Typed(kind, ""))
		}
	}

	paged := method == http.MethodGet && !strings.Contains(path, "{") && tag != "health" && tag != "parametro"
	switch {
	case method == http.MethodPost && path == "/upload":
		op.WithConsumes("multipart/form-data")
		op.AddParam(spec.FormDataParam("pasta").Typed("string", "").AsRequired())
		op.AddParam(spec.FileParam("imagem").AsRequired())
	case method == http.MethodPost && path == "/criancas/exportar_imagens":
		paged = true
	case method == http.MethodPost || method == http.MethodPut:
		op.AddParam(spec.BodyParam("payload", spec.MapProperty(nil)).AsRequired())
	}
	if paged {
		op.AddParam(spec.QueryParam("limit").Typed("integer", ""))
		op.AddParam(spec.QueryParam("offset").Typed("integer", ""))
	}
	if strings.Contains(path, "{") || tag == "parametro" || tag == "viacep" {
		op.RespondsWith(http.StatusNotFound, errorResponse("Não encontrado"))
	}
	return op
}

func summary(method, path string, segments []string) string {
	if s, ok := summaries[method+" "+path]; ok {
		return s
	}
	resource := segments[0]
	last := segments[len(segments)-1]
	switch {
	case method == http.MethodGet && last == "search":
		return "Pesquisa " + resource
	case method == http.MethodGet && strings.HasPrefix(last, "{"):
		return "Busca " + resource + " por id"
	case method == http.MethodGet:
		return "Lista " + resource
	case method == http.MethodPost:
		return "Cria " + resource
	case method == http.MethodPut:
		return "Atualiza " + resource
	case method == http.MethodDelete:
		return "Remove " + resource
	}
	return method + " " + path
}

func errorResponse(description string) *spec.Response {
	return spec.NewResponse().
		WithDescription(description).
		WithSchema(new(spec.Schema).Typed("object", "").SetProperty("erro", *spec.StringProperty()))
}

// operationID turns GET /criancas/{id} into get_criancas_id.
func operationID(method, path string) string {
	id := strings.NewReplacer("/", "_", "{", "", "}", "").Replace(path)
	return strings.ToLower(method) + id
}

// openAPIPath turns /criancas/:id into /criancas/{id}.
func openAPIPath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if name, ok := strings.CutPrefix(s, ":"); ok {
			segments[i] = "{" + name + "}"
		}
	}
	return strings.Join(segments, "/")
}
