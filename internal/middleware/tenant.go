package middleware

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"kidspace/internal/common"
	"kidspace/internal/models"
	"kidspace/pkg/database"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantHeader carries the tenant's cnpj on every request.
const TenantHeader = "tenant"

// TenantResolver maps the header value to an active tenant.
type TenantResolver interface {
	Resolve(identifier string) (*models.Tenant, error)
}

// Binder hands out a connection to a tenant database for the life of one request.
type Binder interface {
	Bind(ctx context.Context, dbName string) (*database.Lease, error)
}

// Scope is what the tenant middleware attaches to a request.
type Scope struct {
	Tenant *models.Tenant
	Lease  *database.Lease
}

// Conn returns the request's connection.
func (s *Scope) Conn() database.Conn { return s.Lease.Conn() }

// RequestScope returns the scope set by TenantMiddleware, or nil on bypassed routes.
func RequestScope(c echo.Context) *Scope {
	scope, _ := c.Get(common.RequestScopeKey).(*Scope)
	return scope
}

// BypassTenant reports whether a request skips tenant resolution: pre-flight requests, requests
// that matched no route and the documentation and health routes.
func BypassTenant(c echo.Context) bool {
	if c.Request().Method == http.MethodOptions || unrouted(c) {
		return true
	}
	p := c.Request().URL.Path
	return strings.HasPrefix(p, "/swagger") || strings.HasPrefix(p, "/health")
}

var (
	notFoundHandler         = reflect.ValueOf(echo.NotFoundHandler).Pointer()
	methodNotAllowedHandler = reflect.ValueOf(echo.MethodNotAllowedHandler).Pointer()
)

// unrouted is true when the router fell back to its 404 or 405 handler.
func unrouted(c echo.Context) bool {
	h := c.Handler()
	if h == nil {
		return true
	}
	p := reflect.ValueOf(h).Pointer()
	return p == notFoundHandler || p == methodNotAllowedHandler
}

// TenantMiddleware resolves the tenant, binds a connection to its database under a per-request
// deadline and releases the connection once the handler returns.
func TenantMiddleware(resolver TenantResolver, binder Binder, timeout time.Duration, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if BypassTenant(c) {
				return next(c)
			}

			tenant, err := resolver.Resolve(c.Request().Header.Get(TenantHeader))
			if err != nil {
				return common.SendError(c, common.NewTenantError(err))
			}

			ctx := c.Request().Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			lease, err := binder.Bind(ctx, tenant.Nome)
			if err != nil {
				logger.Error("tenant database unavailable", zap.String("tenant", tenant.Nome), zap.Error(err))
				if errors.Is(err, context.DeadlineExceeded) {
					return common.SendError(c, common.NewPersistenceError(err))
				}
				return common.SendError(c, common.NewConnectionError(err))
			}
			defer lease.Release()

			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(common.RequestScopeKey, &Scope{Tenant: tenant, Lease: lease})
			return next(c)
		}
	}
}
