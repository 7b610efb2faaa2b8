package permissions

import (
	"fmt"

	"github.com/upb/inventory-admin/models"
)

// Requirement is what a route guarded by a permission demands of the caller
type Requirement struct {
	Permission    string
	Authenticated bool
}

// Policies maps each catalog permission to its requirement.
// Built once at startup and read-only afterwards.
type Policies struct {
	byPermission map[string]Requirement
}

// NewPolicies registers one policy per permission of the given modules
func NewPolicies(modules []models.Module) *Policies {
	p := &Policies{byPermission: make(map[string]Requirement)}
	for _, m := range modules {
		for _, perm := range m.Permissions {
			p.byPermission[perm.ID] = Requirement{
				Permission:    perm.ID,
				Authenticated: true,
			}
		}
	}
	return p
}

// Lookup returns the requirement registered for a permission
func (p *Policies) Lookup(permission string) (Requirement, bool) {
	req, ok := p.byPermission[permission]
	return req, ok
}

// MustLookup is Lookup for route setup; unknown permissions are a wiring bug
func (p *Policies) MustLookup(permission string) Requirement {
	req, ok := p.Lookup(permission)
	if !ok {
		panic(fmt.Sprintf("permissions: no policy registered for %q", permission))
	}
	return req
}

// Len returns the number of registered policies
func (p *Policies) Len() int {
	return len(p.byPermission)
}
