package postgres

import (
	"context"
	"fmt"

	"github.com/upb/inventory-admin/models"
	"github.com/upb/inventory-admin/repositories"
	"go.uber.org/zap"
)

// CatalogRepository implements repositories.CatalogRepository
type CatalogRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *DB, logger *zap.Logger) repositories.CatalogRepository {
	return &CatalogRepository{
		db:     db,
		logger: logger,
	}
}

// Sync upserts every module and permission
func (r *CatalogRepository) Sync(ctx context.Context, modules []models.Module) error {
	moduleQuery := `
		INSERT INTO modules (id, name, sort_order)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, sort_order = EXCLUDED.sort_order
	`
	permissionQuery := `
		INSERT INTO permissions (id, module_id, name, sort_order, required)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET module_id = EXCLUDED.module_id,
		    name = EXCLUDED.name,
		    sort_order = EXCLUDED.sort_order,
		    required = EXCLUDED.required
	`

	exec := GetExecutor(ctx, r.db)
	for _, m := range modules {
		if _, err := exec.ExecContext(ctx, moduleQuery, m.ID, m.Name, m.Order); err != nil {
			return fmt.Errorf("failed to sync module %s: %w", m.ID, err)
		}
		for _, p := range m.Permissions {
			if _, err := exec.ExecContext(ctx, permissionQuery, p.ID, m.ID, p.Name, p.Order, p.Required); err != nil {
				return fmt.Errorf("failed to sync permission %s: %w", p.ID, err)
			}
		}
	}

	r.logger.Debug("catalog synced", zap.Int("modules", len(modules)))
	return nil
}

// ListModules returns modules with their permissions ordered by sort order
func (r *CatalogRepository) ListModules(ctx context.Context) ([]models.Module, error) {
	query := `
		SELECT m.id, m.name, m.sort_order, p.id, p.name, p.sort_order, p.required
		FROM modules m
		JOIN permissions p ON p.module_id = m.id
		ORDER BY m.sort_order, p.sort_order
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	var modules []models.Module
	for rows.Next() {
		var m models.Module
		var p models.Permission
		if err := rows.Scan(&m.ID, &m.Name, &m.Order, &p.ID, &p.Name, &p.Order, &p.Required); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		p.ModuleID = m.ID

		if n := len(modules); n > 0 && modules[n-1].ID == m.ID {
			modules[n-1].Permissions = append(modules[n-1].Permissions, p)
			continue
		}
		m.Permissions = []models.Permission{p}
		modules = append(modules, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating module rows: %w", err)
	}

	return modules, nil
}

// ModuleExists reports whether a module id is persisted
func (r *CatalogRepository) ModuleExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM modules WHERE id = $1)`, id)
}

// PermissionExists reports whether a permission id is persisted
func (r *CatalogRepository) PermissionExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM permissions WHERE id = $1)`, id)
}

// RequiredPermissions returns the required permission ids of a module
func (r *CatalogRepository) RequiredPermissions(ctx context.Context, moduleID string) ([]string, error) {
	query := `
		SELECT id
		FROM permissions
		WHERE module_id = $1 AND required
		ORDER BY sort_order
	`
	return queryStrings(ctx, GetExecutor(ctx, r.db), query, moduleID)
}

func (r *CatalogRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var found bool
	if err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return found, nil
}

// queryStrings runs a single-column query and collects the values, never returning nil
func queryStrings(ctx context.Context, exec Executor, query string, args ...interface{}) ([]string, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return values, nil
}
