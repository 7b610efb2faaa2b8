package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upb/inventory-admin/app"
	"github.com/upb/inventory-admin/services/users"
	"github.com/upb/inventory-admin/utils"
)

// CreateUserRequest is the body of POST /api/users
type CreateUserRequest struct {
	Fullname string `json:"fullname" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email,max=50"`
	Password string `json:"password" validate:"required,min=6,max=30"`
	RoleID   string `json:"roleId" validate:"required"`
}

// UpdateUserRequest is the body of PUT /api/users/{id}
type UpdateUserRequest struct {
	ID       string `json:"id,omitempty"`
	Fullname string `json:"fullname" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email,max=50"`
	RoleID   string `json:"roleId" validate:"required"`
}

// CreateUserHandler creates an active account
func CreateUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if !decodeAndValidate(w, r, &req, deps.Logger) {
			return
		}

		user, err := deps.Users.CreateUser(r.Context(), users.CreateUserInput{
			Fullname: req.Fullname,
			Email:    req.Email,
			Password: req.Password,
			RoleID:   req.RoleID,
		})
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteCreated(w, user)
	}
}

// UpdateUserHandler changes a user's name, email and role
func UpdateUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req UpdateUserRequest
		if !decodeAndValidate(w, r, &req, deps.Logger) {
			return
		}
		if req.ID != "" && req.ID != id {
			_ = utils.WriteBadRequest(w, "The user id in the body does not match the route.", nil)
			return
		}

		user, err := deps.Users.UpdateUser(r.Context(), users.UpdateUserInput{
			ID:       id,
			Fullname: req.Fullname,
			Email:    req.Email,
			RoleID:   req.RoleID,
		})
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, user)
	}
}

// EnableUserHandler activates an account
func EnableUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Users.EnableUser(r.Context(), chi.URLParam(r, "id")); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		utils.WriteNoContent(w)
	}
}

// DisableUserHandler deactivates an account
func DisableUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Users.DisableUser(r.Context(), chi.URLParam(r, "id")); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		utils.WriteNoContent(w)
	}
}

// DeleteUserHandler deletes an account
func DeleteUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Users.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		utils.WriteNoContent(w)
	}
}

// GetUserHandler returns one account
func GetUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := deps.Users.GetUser(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, user)
	}
}

// ListUsersHandler returns one page of accounts
func ListUsersHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, pageSize, ok := pagingParams(w, r, deps)
		if !ok {
			return
		}

		result, err := deps.Users.ListUsers(r.Context(), page, pageSize)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		_ = utils.WriteOK(w, result)
	}
}
