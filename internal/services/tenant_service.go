package services

import (
	"context"
	"errors"
	"fmt"

	"kidspace/internal/common"
	"kidspace/internal/models"
	"kidspace/internal/repositories"

	"go.uber.org/zap"
)

// TenantService resolves a request's tenant identifier against the snapshot loaded at startup.
type TenantService interface {
	Resolve(identifier string) (*models.Tenant, error)
	Tenants() []*models.Tenant
}

type tenantService struct {
	tenants []*models.Tenant
	byCNPJ  map[string]*models.Tenant
}

// LoadTenantService reads every active tenant once. The snapshot is never refreshed.
func LoadTenantService(ctx context.Context, tenantRepo repositories.TenantRepository, logger *zap.Logger) (TenantService, error) {
	tenants, err := tenantRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tenant registry: %w", err)
	}
	return NewTenantService(tenants, logger), nil
}

// NewTenantService indexes tenants by cnpj. A cnpj shared by more than one tenant is left out of
// the index so requests carrying it are rejected instead of reaching an arbitrary database.
func NewTenantService(tenants []*models.Tenant, logger *zap.Logger) TenantService {
	counts := make(map[string]int, len(tenants))
	for _, t := range tenants {
		counts[t.CNPJ]++
	}

	s := &tenantService{byCNPJ: make(map[string]*models.Tenant, len(tenants))}
	for _, t := range tenants {
		if t.CNPJ == "" {
			logger.Warn("tenant without cnpj ignored", zap.Int64("tenant_id", t.ID), zap.String("nome", t.Nome))
			continue
		}
		if counts[t.CNPJ] > 1 {
			logger.Error("duplicate tenant cnpj ignored", zap.String("cnpj", t.CNPJ), zap.Int64("tenant_id", t.ID))
			continue
		}
		s.byCNPJ[t.CNPJ] = t
		s.tenants = append(s.tenants, t)
	}

	logger.Info("tenant registry loaded", zap.Int("tenants", len(s.tenants)))
	return s
}

var errUnknownTenant = errors.New("unknown tenant")

func (s *tenantService) Resolve(identifier string) (*models.Tenant, error) {
	if identifier == "" {
		return nil, common.NewTenantError(errors.New("missing tenant header"))
	}
	tenant, ok := s.byCNPJ[identifier]
	if !ok {
		return nil, common.NewTenantError(errUnknownTenant)
	}
	return tenant, nil
}

func (s *tenantService) Tenants() []*models.Tenant {
	out := make([]*models.Tenant, len(s.tenants))
	copy(out, s.tenants)
	return out
}
