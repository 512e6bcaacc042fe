package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is any dependency able to report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles liveness and readiness probes. They bypass tenant resolution.
type HealthHandlers struct {
	licensing Pinger
	cache     Pinger
	pools     func() []string
	tenants   int
	started   time.Time
}

func NewHealthHandlers(licensing, cache Pinger, pools func() []string, tenants int) *HealthHandlers {
	return &HealthHandlers{
		licensing: licensing,
		cache:     cache,
		pools:     pools,
		tenants:   tenants,
		started:   time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status      string            `json:"status"`
	Timestamp   string            `json:"timestamp"`
	Services    map[string]string `json:"services"`
	Uptime      string            `json:"uptime"`
	Tenants     int               `json:"tenants"`
	OpenTenants []string          `json:"open_tenant_pools"`
}

// HealthCheck handles GET /health
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	health := &HealthStatus{
		Status:      "healthy",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Services:    make(map[string]string),
		Uptime:      time.Since(h.started).Round(time.Second).String(),
		Tenants:     h.tenants,
		OpenTenants: h.pools(),
	}

	// redis is optional and never fails the probe
	if err := h.licensing.Ping(ctx); err != nil {
		health.Services["licensing_database"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["licensing_database"] = "healthy"
	}
	if err := h.cache.Ping(ctx); err != nil {
		health.Services["redis"] = "unhealthy"
	} else {
		health.Services["redis"] = "healthy"
	}

	status := http.StatusOK
	if health.Status == "degraded" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, health)
}

// LivenessCheck handles GET /health/live
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
