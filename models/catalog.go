package models

// Module is a feature area grouping a set of permissions
type Module struct {
	ID          string       `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Order       int          `json:"order" db:"sort_order"`
	Permissions []Permission `json:"permissions"`
}

// TableName returns the table name for the Module model
func (Module) TableName() string {
	return "modules"
}

// Permission is an atomic grantable capability belonging to exactly one module.
// Required permissions must be granted whenever any permission of the module is.
type Permission struct {
	ID       string `json:"id" db:"id"`
	ModuleID string `json:"moduleId" db:"module_id"`
	Name     string `json:"name" db:"name"`
	Order    int    `json:"order" db:"sort_order"`
	Required bool   `json:"required" db:"required"`
}

// TableName returns the table name for the Permission model
func (Permission) TableName() string {
	return "permissions"
}

// RequiredPermissionIDs returns the ids of the module's required permissions
func (m Module) RequiredPermissionIDs() []string {
	var ids []string
	for _, p := range m.Permissions {
		if p.Required {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// ModulePermissions is a catalog module annotated with what a role holds
type ModulePermissions struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Order       int               `json:"order"`
	Permissions []PermissionGrant `json:"permissions"`
}

// PermissionGrant is a catalog permission with a flag telling whether a role holds it
type PermissionGrant struct {
	Permission
	Selected bool `json:"selected"`
}
