package roles

import (
	"context"
	"fmt"
	"strings"

	"github.com/upb/inventory-admin/models"
	"github.com/upb/inventory-admin/services"
)

// CatalogReader answers the catalog queries the validator needs.
// Implemented by permissions.Catalog and the catalog repositories.
type CatalogReader interface {
	ModuleExists(ctx context.Context, id string) (bool, error)
	PermissionExists(ctx context.Context, id string) (bool, error)
	RequiredPermissions(ctx context.Context, moduleID string) ([]string, error)
}

// Validation rule identifiers reported in violations
const (
	RuleNameRequired        = "name.required"
	RuleDescriptionRequired = "description.required"
	RuleModulesRequired     = "modules.required"
	RuleModulesExist        = "modules.exist"
	RuleModulesUnique       = "modules.unique"
	RulePermissionsExist    = "permissions.exist"
	RulePermissionsUnique   = "permissions.unique"
	RuleModulesSelected     = "modules.selected"
	RulePermissionsRequired = "permissions.required"
)

// Validator checks a proposed role against the catalog.
// Stages run in order and stop at the first one that fails.
type Validator struct {
	catalog CatalogReader
}

// NewValidator creates a new Validator
func NewValidator(catalog CatalogReader) *Validator {
	return &Validator{catalog: catalog}
}

// Validate returns nil or a validation error listing the failed rules of the first failing stage.
// Catalog lookup failures are returned as internal errors.
func (v *Validator) Validate(ctx context.Context, name, description string, selection []models.ModuleSelection) error {
	stages := []func(context.Context, string, string, []models.ModuleSelection) ([]services.Violation, error){
		v.checkFields,
		v.checkSelectionPresent,
		v.checkModulesExist,
		v.checkModulesUnique,
		v.checkPermissionsExist,
		v.checkPermissionsUnique,
		v.checkAnySelected,
		v.checkRequiredPermissions,
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		violations, err := stage(ctx, name, description, selection)
		if err != nil {
			return services.WrapInternal("failed to validate role", err)
		}
		if len(violations) > 0 {
			return services.NewValidationError(violations...)
		}
	}
	return nil
}

func (v *Validator) checkFields(_ context.Context, name, description string, _ []models.ModuleSelection) ([]services.Violation, error) {
	var violations []services.Violation
	if strings.TrimSpace(name) == "" {
		violations = append(violations, services.Violation{
			Field: "name", Rule: RuleNameRequired, Message: "'Name' is required.",
		})
	}
	if strings.TrimSpace(description) == "" {
		violations = append(violations, services.Violation{
			Field: "description", Rule: RuleDescriptionRequired, Message: "'Description' is required.",
		})
	}
	return violations, nil
}

func (v *Validator) checkSelectionPresent(_ context.Context, _, _ string, selection []models.ModuleSelection) ([]services.Violation, error) {
	if len(selection) == 0 {
		return modulesViolation(RuleModulesRequired, "'Modules' are required."), nil
	}
	return nil, nil
}

func (v *Validator) checkModulesExist(ctx context.Context, _, _ string, selection []models.ModuleSelection) ([]services.Violation, error) {
	for _, m := range selection {
		ok, err := v.catalog.ModuleExists(ctx, m.ModuleID)
		if err != nil {
			return nil, fmt.Errorf("module %s: %w", m.ModuleID, err)
		}
		if !ok {
			return modulesViolation(RuleModulesExist, "Some modules in the field 'Modules' does not exists."), nil
		}
	}
	return nil, nil
}

func (v *Validator) checkModulesUnique(_ context.Context, _, _ string, selection []models.ModuleSelection) ([]services.Violation, error) {
	seen := make(map[string]struct{}, len(selection))
	for _, m := range selection {
		if _, dup := seen[m.ModuleID]; dup {
			return modulesViolation(RuleModulesUnique, "The 'Modules' field can't contain duplicates."), nil
		}
		seen[m.ModuleID] = struct{}{}
	}
	return nil, nil
}

func (v *Validator) checkPermissionsExist(ctx context.Context, _, _ string, selection []models.ModuleSelection) ([]services.Violation, error) {
	for _, id := range models.FlattenSelection(selection) {
		ok, err := v.catalog.PermissionExists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("permission %s: %w", id, err)
		}
		if !ok {
			return modulesViolation(RulePermissionsExist, "Some Permissions in the field 'Modules' does not exists."), nil
		}
	}
	return nil, nil
}

func (v *Validator) checkPermissionsUnique(_ context.Context, _, _ string, selection []models.ModuleSelection) ([]services.Violation, error) {
	ids := models.FlattenSelection(selection)
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return modulesViolation(RulePermissionsUnique, "The 'Modules' field can't contain duplicate permissions."), nil
		}
		seen[id] = struct{}{}
	}
	return nil, nil
}

func (v *Validator) checkAnySelected(_ context.Context, _, _ string, selection []models.ModuleSelection) ([]services.Violation, error) {
	for _, m := range selection {
		if m.Selected() {
			return nil, nil
		}
	}
	return modulesViolation(RuleModulesSelected, "The 'Modules' field must have at least one Module selected."), nil
}

// checkRequiredPermissions requires every selected module to carry all of its required permissions
func (v *Validator) checkRequiredPermissions(ctx context.Context, _, _ string, selection []models.ModuleSelection) ([]services.Violation, error) {
	selected, satisfied := 0, 0
	for _, m := range selection {
		if !m.Selected() {
			continue
		}
		selected++

		required, err := v.catalog.RequiredPermissions(ctx, m.ModuleID)
		if err != nil {
			return nil, fmt.Errorf("required permissions of %s: %w", m.ModuleID, err)
		}
		if len(required) == 0 {
			satisfied++
			continue
		}

		chosen := make(map[string]struct{}, len(m.PermissionIDs))
		for _, id := range m.PermissionIDs {
			chosen[id] = struct{}{}
		}
		present := 0
		for _, id := range required {
			if _, ok := chosen[id]; ok {
				present++
			}
		}
		if present == len(required) {
			satisfied++
		}
	}

	if satisfied != selected {
		return modulesViolation(RulePermissionsRequired, "The 'Modules' field have missing required permissions"), nil
	}
	return nil, nil
}

func modulesViolation(rule, message string) []services.Violation {
	return []services.Violation{{Field: "modules", Rule: rule, Message: message}}
}
