package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/upb/inventory-admin/app"
	"github.com/upb/inventory-admin/config"
	"github.com/upb/inventory-admin/middleware"
	"go.uber.org/zap/zaptest"
)

const (
	testAdminEmail    = "admin@inventory.local"
	testAdminPassword = "Admin123!"
)

// newTestDeps wires a seeded in-memory application
func newTestDeps(t *testing.T) *app.Dependencies {
	t.Helper()
	cfg := &config.Config{
		Environment: "test",
		Database:    config.DatabaseConfig{Driver: config.DriverMemory},
		JWT: config.JWTConfig{
			Key:             "test-signing-key-0123456789abcdef",
			Issuer:          "inventory-api",
			Audience:        "inventory-admin",
			DurationMinutes: 60,
		},
		Authorization: config.AuthorizationConfig{ScopeToRole: true},
		Seed:          config.SeedConfig{Enabled: true, AdminEmail: testAdminEmail, AdminPassword: testAdminPassword},
		Observability: config.ObservabilityConfig{LogLevel: "debug"},
	}

	deps, err := app.NewDependencies(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, deps.Seed(context.Background()))
	return deps
}

// testRouter mounts handlers without the auth chain; claims are injected per request
func testRouter(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/modules", ListModulesHandler(deps))
	r.Post("/api/identity/signin", SignInHandler(deps))
	r.Post("/api/identity/signout", SignOutHandler(deps))
	r.Get("/api/identity/me", CurrentUserHandler(deps))
	r.Put("/api/identity", UpdateProfileHandler(deps))

	r.Post("/api/roles", CreateRoleHandler(deps))
	r.Get("/api/roles", ListRolesHandler(deps))
	r.Get("/api/roles/all", ListAllRolesHandler(deps))
	r.Get("/api/roles/{id}", GetRoleHandler(deps))
	r.Get("/api/roles/{id}/permissions", GetRolePermissionsHandler(deps))
	r.Put("/api/roles/{id}", UpdateRoleHandler(deps))
	r.Put("/api/roles/{id}/enable", EnableRoleHandler(deps))
	r.Put("/api/roles/{id}/disable", DisableRoleHandler(deps))
	r.Delete("/api/roles/{id}", DeleteRoleHandler(deps))

	r.Post("/api/users", CreateUserHandler(deps))
	r.Get("/api/users", ListUsersHandler(deps))
	r.Get("/api/users/{id}", GetUserHandler(deps))
	r.Put("/api/users/{id}", UpdateUserHandler(deps))
	r.Put("/api/users/{id}/enable", EnableUserHandler(deps))
	r.Put("/api/users/{id}/disable", DisableUserHandler(deps))
	r.Delete("/api/users/{id}", DeleteUserHandler(deps))
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}, claims *middleware.Claims) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if claims != nil {
		req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// decodeData unwraps the data envelope into dst
func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}
