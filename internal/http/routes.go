// Package http arma el router, el pipeline de guards y el servidor.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentia/talentia-api/internal/app"
	httperrors "github.com/talentia/talentia-api/internal/http/errors"
	"github.com/talentia/talentia-api/internal/http/handlers"
	"github.com/talentia/talentia-api/internal/http/middlewares"
	"github.com/talentia/talentia-api/internal/rbac"
)

// NewRouter construye el router completo. El orden del pipeline es fijo:
// request-id -> logging -> recover -> CORS -> métricas, y por ruta
// autenticación -> rol/permiso -> scope de equipo. Cada etapa corta con
// su status; las siguientes no corren.
func NewRouter(c *app.Container) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewares.WithRequestID())
	r.Use(middlewares.WithLogging())
	r.Use(middlewares.WithRecover())
	r.Use(middlewares.WithCORS(c.Cfg.Server.CORSAllowedOrigins))
	r.Use(withHTTPMetrics())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.New(http.StatusNotFound, "not_found", "recurso no encontrado"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.New(http.StatusMethodNotAllowed, "method_not_allowed", "método no permitido"))
	})

	r.Get("/healthz", handlers.NewHealthzHandler())
	r.Get("/readyz", handlers.NewReadyzHandler(c))
	r.Method(http.MethodGet, "/metrics", metricsHandler())

	requireAuth := middlewares.RequireAuth(c.Issuer)

	r.Route("/v1/auth", func(r chi.Router) {
		login := handlers.NewAuthLoginHandler(c)
		if c.Cfg.Rate.Enabled {
			r.Method(http.MethodPost, "/login",
				middlewares.ChainFunc(login, middlewares.WithRateLimit(c.LoginLimiter, middlewares.LoginRateKey)))
		} else {
			r.Post("/login", login)
		}
		r.Post("/refresh", handlers.NewAuthRefreshHandler(c))
		r.Method(http.MethodPost, "/logout",
			middlewares.ChainFunc(handlers.NewAuthLogoutHandler(c), requireAuth))
		r.Method(http.MethodGet, "/me",
			middlewares.ChainFunc(handlers.NewMeHandler(c), requireAuth))
	})

	// Administración de RBAC: exclusivo de quien tenga manage:all
	// (o un rol admin global, vía shortcut del resolver).
	r.Route("/v1/admin/rbac", func(r chi.Router) {
		guard := func(h http.HandlerFunc) http.Handler {
			return middlewares.ChainFunc(h,
				requireAuth,
				middlewares.RequirePermission(c.Resolver, rbac.ManageAllPermission),
			)
		}
		r.Method(http.MethodGet, "/users/{userID}", guard(handlers.NewAdminGetUserRBACHandler(c)))
		r.Method(http.MethodPost, "/users/{userID}/roles", guard(handlers.NewAdminAssignRolesHandler(c)))
		r.Method(http.MethodDelete, "/users/{userID}/roles", guard(handlers.NewAdminRemoveRolesHandler(c)))
		r.Method(http.MethodPost, "/cache/invalidate", guard(handlers.NewAdminInvalidateCacheHandler(c)))
	})

	// Chequeo de acceso a equipo: ejercita la cadena completa de guards.
	r.Method(http.MethodGet, "/v1/teams/{teamID}/access",
		middlewares.ChainFunc(handlers.NewTeamAccessHandler(c),
			requireAuth,
			middlewares.RequireTeamAccess(c.Resolver),
		))

	return r
}
