package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upb/inventory-admin/app"
	"github.com/upb/inventory-admin/models"
	"github.com/upb/inventory-admin/services"
	"github.com/upb/inventory-admin/services/roles"
	"github.com/upb/inventory-admin/utils"
)

// RoleRequest is the body of role create and update requests.
// Selection rules are checked by the role validator, not by struct tags.
type RoleRequest struct {
	ID          string                   `json:"id,omitempty"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Modules     []models.ModuleSelection `json:"modules"`
}

// CreateRoleHandler creates a role with its permission selection
func CreateRoleHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RoleRequest
		if !decodeAndValidate(w, r, &req, deps.Logger) {
			return
		}

		role, err := deps.Roles.CreateRole(r.Context(), roles.CreateRoleInput{
			Name:        req.Name,
			Description: req.Description,
			Modules:     req.Modules,
		})
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteCreated(w, role)
	}
}

// UpdateRoleHandler replaces a role's name, description and permissions
func UpdateRoleHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req RoleRequest
		if !decodeAndValidate(w, r, &req, deps.Logger) {
			return
		}
		if req.ID != id {
			_ = utils.WriteBadRequest(w, "The role id in the body does not match the route.", nil)
			return
		}

		role, err := deps.Roles.UpdateRole(r.Context(), roles.UpdateRoleInput{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
			Modules:     req.Modules,
		})
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, role)
	}
}

// EnableRoleHandler activates a role
func EnableRoleHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Roles.EnableRole(r.Context(), chi.URLParam(r, "id")); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		utils.WriteNoContent(w)
	}
}

// DisableRoleHandler deactivates a role. Tokens already issued stay valid.
func DisableRoleHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Roles.DisableRole(r.Context(), chi.URLParam(r, "id")); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		utils.WriteNoContent(w)
	}
}

// DeleteRoleHandler deletes a role no user is assigned to
func DeleteRoleHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Roles.DeleteRole(r.Context(), chi.URLParam(r, "id")); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		utils.WriteNoContent(w)
	}
}

// GetRoleHandler returns one role
func GetRoleHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, err := deps.Roles.GetRole(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, role)
	}
}

// GetRolePermissionsHandler returns the catalog annotated with the role's grants
func GetRolePermissionsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modules, err := deps.Roles.GetRolePermissions(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, modules)
	}
}

// ListRolesHandler returns one page of roles
func ListRolesHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize, ok := pagingParams(w, r, deps)
		if !ok {
			return
		}

		result, err := deps.Roles.ListRoles(r.Context(), page, pageSize)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, result)
	}
}

// ListAllRolesHandler returns every role, for selection lists
func ListAllRolesHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := deps.Roles.ListAllRoles(r.Context())
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, all)
	}
}

// pagingParams reads page and pageSize; it writes the 400 itself on bad input
func pagingParams(w http.ResponseWriter, r *http.Request, deps *app.Dependencies) (int, int, bool) {
	page, err := utils.QueryInt(r, "page", 1)
	if err != nil {
		HandleValidationError(w, err, deps.Logger)
		return 0, 0, false
	}
	pageSize, err := utils.QueryInt(r, "pageSize", services.DefaultPageSize)
	if err != nil {
		HandleValidationError(w, err, deps.Logger)
		return 0, 0, false
	}
	return page, pageSize, true
}
