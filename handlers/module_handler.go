package handlers

import (
	"net/http"

	"github.com/upb/inventory-admin/app"
	"github.com/upb/inventory-admin/services"
	"github.com/upb/inventory-admin/utils"
)

// ListModulesHandler returns the catalog ordered by module and permission order
func ListModulesHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modules, err := deps.Repos.Catalog.ListModules(r.Context())
		if err != nil {
			HandleServiceError(w, services.WrapInternal("failed to list modules", err), deps.Logger)
			return
		}
		_ = utils.WriteOK(w, modules)
	}
}
