package repositories

import (
	"context"

	"kidspace/internal/models"
)

// TenantRepository reads the licensing store.
type TenantRepository interface {
	ListActive(ctx context.Context) ([]*models.Tenant, error)
}

type tenantRepo struct {
	db Database
}

func NewTenantRepo(db Database) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) ListActive(ctx context.Context) ([]*models.Tenant, error) {
	query := `
		SELECT id, nome, cnpj
		FROM empresa
		WHERE ativo = TRUE
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		tenant := &models.Tenant{}
		if err := rows.Scan(&tenant.ID, &tenant.Nome, &tenant.CNPJ); err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	return tenants, rows.Err()
}
