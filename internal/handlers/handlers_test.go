package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"kidspace/internal/common"
	"kidspace/internal/middleware"
	"kidspace/internal/models"
	"kidspace/internal/services"
	"kidspace/pkg/database"

	"github.com/labstack/echo/v4"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type HandlersTestSuite struct {
	suite.Suite
	mock   pgxmock.PgxConnIface
	echo   *echo.Echo
	tenant *models.Tenant
}

func (suite *HandlersTestSuite) SetupTest() {
	mock, err := pgxmock.NewConn()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.tenant = &models.Tenant{ID: 1, Nome: "creche_sol", CNPJ: "11222333000181"}

	logger := zap.NewNop()
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lease := database.NewLease(mock, nil)
			c.Set(common.RequestScopeKey, &middleware.Scope{Tenant: suite.tenant, Lease: lease})
			return next(c)
		}
	})
	RegisterRoutes(e, Services{
		Records:    services.NewRecordService(logger),
		Children:   services.NewChildService(logger),
		Checkins:   services.NewCheckinService(logger),
		Auth:       services.NewAuthService(logger),
		Parameters: services.NewParameterService(),
	})
	suite.echo = e
}

func (suite *HandlersTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close(context.Background())
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (suite *HandlersTestSuite) do(method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	suite.echo.ServeHTTP(rec, req)

	var decoded map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec, decoded
}

func (suite *HandlersTestSuite) TestList_Paginates() {
	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM atividade ORDER BY descricao ASC LIMIT $1 OFFSET $2")).
		WithArgs(10, 20).
		WillReturnRows(pgxmock.NewRows([]string{"id", "descricao"}).AddRow(int64(21), "Pintura"))

	rec, _ := suite.do(http.MethodGet, "/atividades?limit=10&offset=20", "")

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.JSONEq(suite.T(), `[{"id":21,"descricao":"Pintura"}]`, rec.Body.String())
}

func (suite *HandlersTestSuite) TestList_EmptyIsArray() {
	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM atividade ORDER BY descricao ASC")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "descricao"}))

	rec, _ := suite.do(http.MethodGet, "/atividades", "")

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.JSONEq(suite.T(), `[]`, rec.Body.String())
}

func (suite *HandlersTestSuite) TestList_RejectsBadParameters() {
	for _, target := range []string{"/atividades?cor=azul", "/atividades?id=abc", "/atividades?limit=-1"} {
		rec, body := suite.do(http.MethodGet, target, "")
		assert.Equal(suite.T(), http.StatusBadRequest, rec.Code, target)
		assert.NotEmpty(suite.T(), body["erro"], target)
	}
}

func (suite *HandlersTestSuite) TestGet_NotFound() {
	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM atividade WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "descricao"}))

	rec, body := suite.do(http.MethodGet, "/atividades/99", "")

	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
	assert.Equal(suite.T(), common.MsgNotFound, body["erro"])
}

func (suite *HandlersTestSuite) TestGet_InvalidID() {
	rec, _ := suite.do(http.MethodGet, "/atividades/abc", "")
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *HandlersTestSuite) TestCreate_ReturnsIDAndMessage() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO atividade ("descricao") VALUES ($1) RETURNING "id"`)).
		WithArgs("Pintura").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))

	rec, _ := suite.do(http.MethodPost, "/atividades", `{"id": 77, "descricao": "Pintura"}`)

	assert.Equal(suite.T(), http.StatusCreated, rec.Code)
	assert.JSONEq(suite.T(), `{"id":5,"mensagem":"Atividade criada com sucesso"}`, rec.Body.String())
}

func (suite *HandlersTestSuite) TestCreate_EmptyAndMissingRequired() {
	rec, body := suite.do(http.MethodPost, "/atividades", `{}`)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(suite.T(), common.MsgNoData, body["erro"])

	rec, _ = suite.do(http.MethodPost, "/atividades", `{"descricao": "  "}`)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *HandlersTestSuite) TestUpdate_NoRowMatched() {
	suite.mock.ExpectExec(regexp.QuoteMeta(`UPDATE natureza SET "descricao" = $1 WHERE "id" = $2`)).
		WithArgs("Receita", int64(8)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	rec, _ := suite.do(http.MethodPut, "/naturezas/8", `{"descricao": "Receita"}`)

	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
}

func (suite *HandlersTestSuite) TestDelete_SecondDeleteIsNotFound() {
	suite.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM natureza WHERE "id" = $1`)).
		WithArgs(int64(8)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM natureza WHERE "id" = $1`)).
		WithArgs(int64(8)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	rec, body := suite.do(http.MethodDelete, "/naturezas/8", "")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "Natureza removida com sucesso", body["mensagem"])

	rec, _ = suite.do(http.MethodDelete, "/naturezas/8", "")
	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
}

func (suite *HandlersTestSuite) TestLogin() {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(suite.T(), err)

	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM usuario WHERE login = $1 LIMIT 1")).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "login", "senha"}).AddRow(int64(1), "alice", string(hash)))
	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM usuario WHERE login = $1 LIMIT 1")).
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"id", "login", "senha"}).AddRow(int64(1), "alice", string(hash)))

	rec, body := suite.do(http.MethodPost, "/login", `{"login":"alice","senha":"secret"}`)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "alice", body["login"])
	assert.NotContains(suite.T(), body, "senha")

	rec, body = suite.do(http.MethodPost, "/login", `{"login":"alice","senha":"wrong"}`)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
	assert.Equal(suite.T(), "Usuário ou senha inválidos", body["erro"])
}

func (suite *HandlersTestSuite) TestFinanceiro_EmbeddedUserHasNoSenha() {
	for _, target := range []string{"/financeiro", "/financeiro/search"} {
		suite.mock.ExpectQuery(`to_jsonb\(u\) - 'senha' AS usuario`).
			WillReturnRows(pgxmock.NewRows([]string{"id", "usuario"}).AddRow(
				int64(1),
				map[string]any{"id": int64(3), "login": "alice", "senha": "$2a$10$abcdefghijklmnopqrstuv"},
			))

		rec := httptest.NewRecorder()
		suite.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

		require.Equal(suite.T(), http.StatusOK, rec.Code, target)
		var rows []map[string]any
		require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &rows))
		require.Len(suite.T(), rows, 1)
		usuario, ok := rows[0]["usuario"].(map[string]any)
		require.True(suite.T(), ok, target)
		assert.Equal(suite.T(), "alice", usuario["login"])
		assert.NotContains(suite.T(), usuario, "senha", target)
	}
}

func (suite *HandlersTestSuite) TestExportImages_RejectsBadPaging() {
	for _, target := range []string{"/criancas/exportar_imagens?limit=abc", "/criancas/exportar_imagens?offset=-5"} {
		rec, body := suite.do(http.MethodPost, target, "")
		assert.Equal(suite.T(), http.StatusBadRequest, rec.Code, target)
		assert.Contains(suite.T(), body["erro"], "inválido", target)
	}
}

func (suite *HandlersTestSuite) TestParametro_EmptyGetAnswersWithMensagem() {
	suite.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM parametro LIMIT 1")).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	rec, body := suite.do(http.MethodGet, "/parametro", "")

	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
	assert.Equal(suite.T(), services.MsgNoParameter, body["mensagem"])
}

func (suite *HandlersTestSuite) TestSearchAliasesAreMounted() {
	routes := map[string]bool{}
	for _, r := range suite.echo.Routes() {
		routes[r.Method+" "+r.Path] = true
	}
	for _, path := range []string{"/checkins/search", "/convenios/search", "/financeiro/search"} {
		assert.True(suite.T(), routes["GET "+path], path)
	}
	assert.False(suite.T(), routes["GET /atividades/search"])
}
