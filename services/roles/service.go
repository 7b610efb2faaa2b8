// Package roles manages the role lifecycle and the permissions each role grants.
package roles

import (
	"context"
	"errors"
	"time"

	"github.com/upb/inventory-admin/models"
	"github.com/upb/inventory-admin/repositories"
	"github.com/upb/inventory-admin/services"
	"go.uber.org/zap"
)

// Catalog is the catalog view used by the role service
type Catalog interface {
	CatalogReader

	// ListModules returns the ordered modules with their permissions
	ListModules(ctx context.Context) ([]models.Module, error)
}

// CreateRoleInput is the input of CreateRole
type CreateRoleInput struct {
	Name        string
	Description string
	Modules     []models.ModuleSelection
}

// UpdateRoleInput is the input of UpdateRole
type UpdateRoleInput struct {
	ID          string
	Name        string
	Description string
	Modules     []models.ModuleSelection
}

// Service handles role management
type Service struct {
	txManager repositories.TransactionManager
	roles     repositories.RoleRepository
	grants    repositories.RolePermissionRepository
	users     repositories.UserRepository
	catalog   Catalog
	validator *Validator
	logger    *zap.Logger
}

// NewService creates a new role Service
func NewService(txManager repositories.TransactionManager, repos *repositories.Repositories, catalog Catalog, logger *zap.Logger) *Service {
	return &Service{
		txManager: txManager,
		roles:     repos.Roles,
		grants:    repos.RolePermissions,
		users:     repos.Users,
		catalog:   catalog,
		validator: NewValidator(catalog),
		logger:    logger,
	}
}

// CreateRole validates the selection, then persists the role and its permissions in one transaction
func (s *Service) CreateRole(ctx context.Context, input CreateRoleInput) (*models.Role, error) {
	if err := s.validator.Validate(ctx, input.Name, input.Description, input.Modules); err != nil {
		return nil, err
	}

	role, err := services.WithTransactionResult(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) (*models.Role, error) {
		roles := s.roles.WithTx(tx)
		grants := s.grants.WithTx(tx)

		if err := s.ensureNameAvailable(ctx, roles, input.Name, ""); err != nil {
			return nil, err
		}

		role := models.NewRole(input.Name, input.Description)
		if err := roles.Create(ctx, role); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return nil, duplicateName(input.Name)
			}
			return nil, services.WrapInternal("failed to create role", err)
		}

		if err := grants.Replace(ctx, role.ID, models.FlattenSelection(input.Modules)); err != nil {
			return nil, services.WrapInternal("failed to grant role permissions", err)
		}
		return role, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("role created",
		zap.String("role_id", role.ID),
		zap.String("name", role.Name))
	return role, nil
}

// UpdateRole replaces the role's permissions and fields in one transaction.
// Checks run in order: role exists, role active, selection valid, name free.
func (s *Service) UpdateRole(ctx context.Context, input UpdateRoleInput) (*models.Role, error) {
	role, err := services.WithTransactionResult(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) (*models.Role, error) {
		roles := s.roles.WithTx(tx)
		grants := s.grants.WithTx(tx)

		role, err := s.getRole(ctx, roles, input.ID)
		if err != nil {
			return nil, err
		}
		if !role.Active {
			return nil, services.NewDisabledError("Role with the Id : '%s' it's disabled.", input.ID)
		}

		if err := s.validator.Validate(ctx, input.Name, input.Description, input.Modules); err != nil {
			return nil, err
		}
		if err := s.ensureNameAvailable(ctx, roles, input.Name, role.ID); err != nil {
			return nil, err
		}

		if err := grants.Replace(ctx, role.ID, models.FlattenSelection(input.Modules)); err != nil {
			return nil, services.WrapInternal("failed to replace role permissions", err)
		}

		role.Name = input.Name
		role.Description = input.Description
		role.UpdatedAt = time.Now().UTC()
		if err := roles.Update(ctx, role); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return nil, duplicateName(input.Name)
			}
			return nil, services.WrapInternal("failed to update role", err)
		}
		return role, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("role updated", zap.String("role_id", role.ID))
	return role, nil
}

// EnableRole marks a role active
func (s *Service) EnableRole(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

// DisableRole marks a role inactive. Tokens already issued stay valid until they expire.
func (s *Service) DisableRole(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

func (s *Service) setActive(ctx context.Context, id string, active bool) error {
	err := services.WithTransaction(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) error {
		roles := s.roles.WithTx(tx)

		role, err := s.getRole(ctx, roles, id)
		if err != nil {
			return err
		}
		if role.Active == active {
			return nil
		}

		role.Active = active
		role.UpdatedAt = time.Now().UTC()
		if err := roles.Update(ctx, role); err != nil {
			return services.WrapInternal("failed to update role", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("role status changed",
		zap.String("role_id", id),
		zap.Bool("active", active))
	return nil
}

// DeleteRole deletes a role and its permissions. Roles still assigned to users are kept.
func (s *Service) DeleteRole(ctx context.Context, id string) error {
	err := services.WithTransaction(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) error {
		roles := s.roles.WithTx(tx)

		if _, err := s.getRole(ctx, roles, id); err != nil {
			return err
		}

		assigned, err := s.users.WithTx(tx).CountByRoleID(ctx, id)
		if err != nil {
			return services.WrapInternal("failed to count role users", err)
		}
		if assigned > 0 {
			return services.NewConflictError("The role with the Id %s is assigned to %d user(s).", id, assigned)
		}

		if err := s.grants.WithTx(tx).Replace(ctx, id, nil); err != nil {
			return services.WrapInternal("failed to remove role permissions", err)
		}
		if err := roles.Delete(ctx, id); err != nil {
			return services.WrapInternal("failed to delete role", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("role deleted", zap.String("role_id", id))
	return nil
}

// GetRole returns a role by id
func (s *Service) GetRole(ctx context.Context, id string) (*models.Role, error) {
	return s.getRole(ctx, s.roles, id)
}

// ListRoles returns one page of roles ordered by name
func (s *Service) ListRoles(ctx context.Context, page, pageSize int) (*services.Page[*models.Role], error) {
	pageSize, offset, err := services.NormalizePage(page, pageSize)
	if err != nil {
		return nil, err
	}

	items, total, err := s.roles.List(ctx, pageSize, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to list roles", err)
	}
	return services.NewPage(items, page, pageSize, total), nil
}

// ListAllRoles returns every role ordered by name
func (s *Service) ListAllRoles(ctx context.Context) ([]*models.Role, error) {
	roles, err := s.roles.ListAll(ctx)
	if err != nil {
		return nil, services.WrapInternal("failed to list roles", err)
	}
	return roles, nil
}

// GetRolePermissions returns the catalog with each permission flagged when the role holds it
func (s *Service) GetRolePermissions(ctx context.Context, id string) ([]models.ModulePermissions, error) {
	if _, err := s.getRole(ctx, s.roles, id); err != nil {
		return nil, err
	}

	granted, err := s.grants.PermissionsOf(ctx, id)
	if err != nil {
		return nil, services.WrapInternal("failed to load role permissions", err)
	}
	held := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		held[p] = struct{}{}
	}

	modules, err := s.catalog.ListModules(ctx)
	if err != nil {
		return nil, services.WrapInternal("failed to load catalog", err)
	}

	result := make([]models.ModulePermissions, 0, len(modules))
	for _, m := range modules {
		entry := models.ModulePermissions{
			ID:          m.ID,
			Name:        m.Name,
			Order:       m.Order,
			Permissions: make([]models.PermissionGrant, 0, len(m.Permissions)),
		}
		for _, p := range m.Permissions {
			_, selected := held[p.ID]
			entry.Permissions = append(entry.Permissions, models.PermissionGrant{Permission: p, Selected: selected})
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *Service) getRole(ctx context.Context, roles repositories.RoleRepository, id string) (*models.Role, error) {
	role, err := roles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.NewNotFoundError("Role with the Id : '%s' was not found.", id)
		}
		return nil, services.WrapInternal("failed to load role", err)
	}
	return role, nil
}

// ensureNameAvailable fails when a role other than exceptID already uses name
func (s *Service) ensureNameAvailable(ctx context.Context, roles repositories.RoleRepository, name, exceptID string) error {
	existing, err := roles.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return services.WrapInternal("failed to look up role name", err)
	}
	if existing.ID != exceptID {
		return duplicateName(name)
	}
	return nil
}

func duplicateName(name string) error {
	return services.NewConflictError("The role with the Name %s already exists.", name)
}
