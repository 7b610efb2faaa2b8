package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/inventory-admin/models"
	"github.com/upb/inventory-admin/permissions"
	"github.com/upb/inventory-admin/repositories"
	"github.com/upb/inventory-admin/services"
	"go.uber.org/zap"
)

// Seeded administrator role
const (
	AdminRoleName        = "Admin"
	AdminRoleDescription = "Admin Role"
	adminFullname        = "Admin"
)

// Seed creates the Admin role with every permission when no role exists, and
// the administrator account when no user exists. Existing roles, grants and
// accounts are never touched, so it is safe to run on every start.
func (d *Dependencies) Seed(ctx context.Context) error {
	cfg := d.Config.Seed

	return services.WithTransaction(ctx, d.TxManager, func(ctx context.Context, tx repositories.Transaction) error {
		if err := d.ensureAdminRole(ctx, tx); err != nil {
			return err
		}
		return d.ensureAdminUser(ctx, tx, cfg.AdminEmail, cfg.AdminPassword)
	})
}

func (d *Dependencies) ensureAdminRole(ctx context.Context, tx repositories.Transaction) error {
	roleRepo := d.Repos.Roles.WithTx(tx)

	_, count, err := roleRepo.List(ctx, 1, 0)
	if err != nil {
		return fmt.Errorf("failed to count roles: %w", err)
	}
	if count > 0 {
		return nil
	}

	role := models.NewRole(AdminRoleName, AdminRoleDescription)
	if err := roleRepo.Create(ctx, role); err != nil {
		return fmt.Errorf("failed to create admin role: %w", err)
	}
	if err := d.Repos.RolePermissions.WithTx(tx).Replace(ctx, role.ID, permissions.AllPermissionIDs()); err != nil {
		return fmt.Errorf("failed to grant admin permissions: %w", err)
	}

	d.Logger.Info("admin role created", zap.String("role_id", role.ID))
	return nil
}

func (d *Dependencies) ensureAdminUser(ctx context.Context, tx repositories.Transaction, email, password string) error {
	userRepo := d.Repos.Users.WithTx(tx)

	_, count, err := userRepo.List(ctx, 1, 0)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	role, err := d.Repos.Roles.WithTx(tx).GetByName(ctx, AdminRoleName)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("cannot create admin user: role %q does not exist", AdminRoleName)
		}
		return fmt.Errorf("failed to load admin role: %w", err)
	}

	hash, err := d.Hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	user := models.NewUser(email, adminFullname, hash, role.ID)
	user.EmailConfirmed = true
	if err := userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	d.Logger.Info("admin user created", zap.String("user_id", user.ID), zap.String("email", email))
	return nil
}
