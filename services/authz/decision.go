// Package authz decides whether a signed-in principal holds a permission.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/inventory-admin/repositories"
	"go.uber.org/zap"
)

// Decision outcomes reported to the DecisionRecorder
const (
	OutcomeGranted = "granted"
	OutcomeDenied  = "denied"
	OutcomeError   = "error"
)

// DecisionRecorder receives every decision
type DecisionRecorder interface {
	RecordDecision(permission, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordDecision(string, string) {}

// DecisionPoint resolves the principal's role on every call; nothing is cached between requests.
//
// When scoped, the permission must be granted to the principal's own role.
// Otherwise any role holding the permission is enough, which matches the
// legacy behaviour and is kept only for compatibility.
type DecisionPoint struct {
	users    repositories.UserRepository
	roles    repositories.RoleRepository
	grants   repositories.RolePermissionRepository
	scoped   bool
	recorder DecisionRecorder
	logger   *zap.Logger
}

// NewDecisionPoint creates a new DecisionPoint. recorder may be nil.
func NewDecisionPoint(repos *repositories.Repositories, scopeToRole bool, recorder DecisionRecorder, logger *zap.Logger) *DecisionPoint {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &DecisionPoint{
		users:    repos.Users,
		roles:    repos.Roles,
		grants:   repos.RolePermissions,
		scoped:   scopeToRole,
		recorder: recorder,
		logger:   logger,
	}
}

// RoleScoped reports whether decisions are restricted to the principal's role
func (d *DecisionPoint) RoleScoped() bool {
	return d.scoped
}

// Authorize reports whether the principal holds permission.
// An empty principal, an unknown principal or a missing role is a denial, not an error.
func (d *DecisionPoint) Authorize(ctx context.Context, userID, permission string) (bool, error) {
	granted, err := d.decide(ctx, userID, permission)
	switch {
	case err != nil:
		d.recorder.RecordDecision(permission, OutcomeError)
		d.logger.Error("authorization check failed",
			zap.String("user_id", userID),
			zap.String("permission", permission),
			zap.Error(err))
		return false, err
	case granted:
		d.recorder.RecordDecision(permission, OutcomeGranted)
	default:
		d.recorder.RecordDecision(permission, OutcomeDenied)
		d.logger.Debug("permission denied",
			zap.String("user_id", userID),
			zap.String("permission", permission))
	}
	return granted, nil
}

func (d *DecisionPoint) decide(ctx context.Context, userID, permission string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to resolve principal: %w", err)
	}

	role, err := d.roles.GetByID(ctx, user.RoleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to resolve role: %w", err)
	}

	if !d.scoped {
		granted, err := d.grants.AnyRoleHasPermission(ctx, permission)
		if err != nil {
			return false, fmt.Errorf("failed to check permission: %w", err)
		}
		return granted, nil
	}

	granted, err := d.grants.HasPermission(ctx, role.ID, permission)
	if err != nil {
		return false, fmt.Errorf("failed to check permission: %w", err)
	}
	return granted, nil
}
