package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
	"github.com/upb/inventory-admin/app"
	"github.com/upb/inventory-admin/handlers"
	appmw "github.com/upb/inventory-admin/middleware"
	"github.com/upb/inventory-admin/permissions"
	"github.com/upb/inventory-admin/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		SSLRedirect:           deps.Config.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !deps.Config.IsProduction(),
	})

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmw.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(secureMiddleware.Handler)
	r.Use(deps.Metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck(deps))
	r.Get("/readyz", handlers.ReadinessCheck(deps))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	auth := deps.AuthMiddleware.RequireAuth
	require := deps.PermissionMiddleware.Require

	r.Route("/api", func(r chi.Router) {
		r.Route("/identity", func(r chi.Router) {
			r.With(signInLimiter(deps)).Post("/signin", handlers.SignInHandler(deps))
			r.Post("/signout", handlers.SignOutHandler(deps))

			r.Group(func(r chi.Router) {
				r.Use(auth)
				r.Get("/me", handlers.CurrentUserHandler(deps))
				r.Put("/", handlers.UpdateProfileHandler(deps))
			})
		})

		r.With(auth).Get("/modules", handlers.ListModulesHandler(deps))

		r.Route("/roles", func(r chi.Router) {
			r.Use(auth)
			r.With(require(permissions.RolesView)).Get("/", handlers.ListRolesHandler(deps))
			r.With(require(permissions.RolesView)).Get("/all", handlers.ListAllRolesHandler(deps))
			r.With(require(permissions.RolesCreate)).Post("/", handlers.CreateRoleHandler(deps))

			r.Route("/{id}", func(r chi.Router) {
				r.With(require(permissions.RolesView)).Get("/", handlers.GetRoleHandler(deps))
				r.With(require(permissions.RolesView)).Get("/permissions", handlers.GetRolePermissionsHandler(deps))
				r.With(require(permissions.RolesEdit)).Put("/", handlers.UpdateRoleHandler(deps))
				r.With(require(permissions.RolesEdit)).Put("/enable", handlers.EnableRoleHandler(deps))
				r.With(require(permissions.RolesEdit)).Put("/disable", handlers.DisableRoleHandler(deps))
				r.With(require(permissions.RolesDelete)).Delete("/", handlers.DeleteRoleHandler(deps))
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(auth)
			r.With(require(permissions.UsersView)).Get("/", handlers.ListUsersHandler(deps))
			r.With(require(permissions.UsersCreate)).Post("/", handlers.CreateUserHandler(deps))

			r.Route("/{id}", func(r chi.Router) {
				r.With(require(permissions.UsersView)).Get("/", handlers.GetUserHandler(deps))
				r.With(require(permissions.UsersEdit)).Put("/", handlers.UpdateUserHandler(deps))
				r.With(require(permissions.UsersEdit)).Put("/enable", handlers.EnableUserHandler(deps))
				r.With(require(permissions.UsersEdit)).Put("/disable", handlers.DisableUserHandler(deps))
				r.With(require(permissions.UsersDelete)).Delete("/", handlers.DeleteUserHandler(deps))
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}

// signInLimiter throttles sign-in attempts per client IP; a zero limit disables it
func signInLimiter(deps *app.Dependencies) func(http.Handler) http.Handler {
	limit := deps.Config.RateLimit.SignInPerMinute
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(limit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			_ = utils.WriteTooManyRequests(w, "Too many sign-in attempts, try again later.")
		}),
	)
}
