package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is a named bundle of permissions assignable to users
type Role struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the Role model
func (Role) TableName() string {
	return "roles"
}

// NewRole creates an active Role with a fresh identifier
func NewRole(name, description string) *Role {
	now := time.Now().UTC()
	return &Role{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RolePermission associates a role with one granted permission
type RolePermission struct {
	ID           int64  `json:"id" db:"id"`
	RoleID       string `json:"roleId" db:"role_id"`
	PermissionID string `json:"permissionId" db:"permission_id"`
}

// TableName returns the table name for the RolePermission model
func (RolePermission) TableName() string {
	return "role_permissions"
}

// ModuleSelection is one module entry of a submitted role selection
type ModuleSelection struct {
	ModuleID      string   `json:"id"`
	PermissionIDs []string `json:"permissionsIds"`
}

// Selected reports whether the entry carries at least one permission
func (s ModuleSelection) Selected() bool {
	return len(s.PermissionIDs) > 0
}

// FlattenSelection returns every permission id of the selection in submission order
func FlattenSelection(selection []ModuleSelection) []string {
	ids := make([]string, 0, len(selection))
	for _, m := range selection {
		ids = append(ids, m.PermissionIDs...)
	}
	return ids
}
