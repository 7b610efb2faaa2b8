package middleware

import (
	"context"
	"net/http"

	"github.com/upb/inventory-admin/permissions"
	"github.com/upb/inventory-admin/utils"
	"go.uber.org/zap"
)

// Authorizer decides whether a principal holds a permission
type Authorizer interface {
	Authorize(ctx context.Context, userID, permission string) (bool, error)
}

// PermissionMiddleware enforces the per-permission policies on routes
type PermissionMiddleware struct {
	authorizer Authorizer
	policies   *permissions.Policies
	logger     *zap.Logger
}

// NewPermissionMiddleware creates a new PermissionMiddleware
func NewPermissionMiddleware(authorizer Authorizer, policies *permissions.Policies, logger *zap.Logger) *PermissionMiddleware {
	return &PermissionMiddleware{
		authorizer: authorizer,
		policies:   policies,
		logger:     logger,
	}
}

// Require guards a route with the policy registered for permission.
// It panics during route setup when no such policy exists.
// Must run after RequireAuth.
func (m *PermissionMiddleware) Require(permission string) func(http.Handler) http.Handler {
	requirement := m.policies.MustLookup(permission)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)

			claims := GetClaimsFromContext(ctx)
			if requirement.Authenticated && claims == nil {
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}

			userID := ""
			if claims != nil {
				userID = claims.UserID
			}

			granted, err := m.authorizer.Authorize(ctx, userID, requirement.Permission)
			if err != nil {
				m.logger.Error("authorization check failed",
					zap.String("request_id", requestID),
					zap.String("permission", requirement.Permission),
					zap.Error(err))
				_ = utils.WriteInternalServerError(w, "Failed to evaluate permissions")
				return
			}
			if !granted {
				m.logger.Info("permission denied",
					zap.String("request_id", requestID),
					zap.String("user_id", userID),
					zap.String("permission", requirement.Permission))
				_ = utils.WriteForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
