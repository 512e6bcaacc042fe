package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kidspace/internal/models"
	"kidspace/pkg/database"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticResolver map[string]*models.Tenant

func (r staticResolver) Resolve(identifier string) (*models.Tenant, error) {
	if t, ok := r[identifier]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown tenant %q", identifier)
}

type fakeBinder struct {
	err      error
	bound    []string
	released int
}

func (b *fakeBinder) Bind(_ context.Context, db string) (*database.Lease, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.bound = append(b.bound, db)
	return database.NewLease(nil, func() { b.released++ }), nil
}

var tenants = staticResolver{
	"11222333000181": {ID: 1, Nome: "creche_sol", CNPJ: "11222333000181"},
	"44555666000199": {ID: 2, Nome: "creche_lua", CNPJ: "44555666000199"},
}

func newServer(binder Binder, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.Use(TenantMiddleware(tenants, binder, time.Second, zap.NewNop()))
	e.GET("/criancas", handler)
	e.GET("/health", handler)
	e.GET("/swagger/*", handler)
	e.OPTIONS("/criancas", handler)
	return e
}

func serve(e *echo.Echo, method, path, tenant string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if tenant != "" {
		req.Header.Set(TenantHeader, tenant)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func erroOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["erro"]
}

func ok(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

func TestTenantMiddleware_BypassRoutes(t *testing.T) {
	binder := &fakeBinder{}
	e := newServer(binder, ok)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/health"},
		{http.MethodGet, "/swagger/index.html"},
		{http.MethodOptions, "/criancas"},
	} {
		rec := serve(e, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNoContent, rec.Code, tc.path)
	}
	assert.Empty(t, binder.bound)
}

func TestTenantMiddleware_UnknownTenantIsForbidden(t *testing.T) {
	binder := &fakeBinder{}
	e := newServer(binder, ok)

	for _, tenant := range []string{"", "00000000000000"} {
		rec := serve(e, http.MethodGet, "/criancas", tenant)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Tenant inválido ou inativo.", erroOf(t, rec))
	}
	assert.Empty(t, binder.bound)
}

func TestTenantMiddleware_UnmatchedRoutesKeepRouterStatus(t *testing.T) {
	binder := &fakeBinder{}
	e := newServer(binder, ok)

	for _, tc := range []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/nao-existe", http.StatusNotFound},
		{http.MethodGet, "/criancas/x/y", http.StatusNotFound},
		{http.MethodDelete, "/criancas", http.StatusMethodNotAllowed},
	} {
		rec := serve(e, tc.method, tc.path, "")
		assert.Equal(t, tc.status, rec.Code, tc.method+" "+tc.path)
	}
	assert.Empty(t, binder.bound)
}

func TestTenantMiddleware_HeaderMustMatchExactly(t *testing.T) {
	binder := &fakeBinder{}
	e := newServer(binder, ok)

	rec := serve(e, http.MethodGet, "/criancas", " 11222333000181 ")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, binder.bound)
}

func TestTenantMiddleware_BindFailure(t *testing.T) {
	e := newServer(&fakeBinder{err: errors.New("database \"creche_sol\" does not exist")}, ok)

	rec := serve(e, http.MethodGet, "/criancas", "11222333000181")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, erroOf(t, rec), "creche_sol")
}

func TestTenantMiddleware_BindDeadline(t *testing.T) {
	e := newServer(&fakeBinder{err: fmt.Errorf("acquire: %w", context.DeadlineExceeded)}, ok)

	rec := serve(e, http.MethodGet, "/criancas", "11222333000181")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestTenantMiddleware_ReleasesOnceAfterHandler(t *testing.T) {
	binder := &fakeBinder{}
	e := newServer(binder, func(c echo.Context) error {
		scope := RequestScope(c)
		require.NotNil(t, scope)
		assert.Equal(t, 0, binder.released)
		_, hasDeadline := c.Request().Context().Deadline()
		assert.True(t, hasDeadline)
		scope.Lease.Release()
		return c.NoContent(http.StatusOK)
	})

	rec := serve(e, http.MethodGet, "/criancas", "11222333000181")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, binder.released)
}

func TestTenantMiddleware_ReleasesWhenHandlerFails(t *testing.T) {
	binder := &fakeBinder{}
	e := newServer(binder, func(c echo.Context) error {
		return errors.New("boom")
	})

	serve(e, http.MethodGet, "/criancas", "11222333000181")
	assert.Equal(t, 1, binder.released)
}

func TestTenantMiddleware_EachRequestBindsItsOwnTenant(t *testing.T) {
	binder := &fakeBinder{}
	var seen []string
	e := newServer(binder, func(c echo.Context) error {
		seen = append(seen, RequestScope(c).Tenant.CNPJ)
		return c.NoContent(http.StatusOK)
	})

	serve(e, http.MethodGet, "/criancas", "11222333000181")
	serve(e, http.MethodGet, "/criancas", "44555666000199")
	serve(e, http.MethodGet, "/criancas", "11222333000181")

	assert.Equal(t, []string{"creche_sol", "creche_lua", "creche_sol"}, binder.bound)
	assert.Equal(t, []string{"11222333000181", "44555666000199", "11222333000181"}, seen)
	assert.Equal(t, 3, binder.released)
}
