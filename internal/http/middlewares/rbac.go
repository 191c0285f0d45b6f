package middlewares

import (
	"net/http"
	"strings"

	httperrors "github.com/talentia/talentia-api/internal/http/errors"
	"github.com/talentia/talentia-api/internal/observability/logger"
	"github.com/talentia/talentia-api/internal/rbac"
)

// =================================================================================
// ETAPA 2: AUTORIZACIÓN POR ROL / PERMISO
// =================================================================================
//
// Los roles y permisos se resuelven FRESCOS contra el resolver en cada
// request (no viajan en el token): un cambio de rol aplica sin relogin,
// acotado por el TTL del cache del resolver.
//
// El 403 enumera lo requerido: sirve para diagnóstico y no filtra nada
// que el caller no sepa ya (conoce el endpoint que llamó).

// RequireRole exige al menos uno de los roles dados (OR). Admin global
// pasa siempre (shortcut dentro del resolver).
func RequireRole(resolver *rbac.Resolver, roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := GetUserID(r.Context())
			if uid == "" {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}
			ok, err := resolver.HasRole(r.Context(), uid, roles...)
			if err != nil {
				// Falla de dependencia: 500, nunca disfrazada de 403.
				logger.From(r.Context()).Error("role check failed", logger.Err(err))
				httperrors.WriteError(w, httperrors.ErrDependency.WithCause(err))
				return
			}
			if !ok {
				httperrors.WriteError(w, httperrors.ErrForbidden.WithDetail(
					"requiere alguno de los roles: "+strings.Join(roles, ", ")))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission exige al menos uno de los permisos dados (OR).
// "*" y "manage:all" pasan siempre.
func RequirePermission(resolver *rbac.Resolver, perms ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid := GetUserID(r.Context())
			if uid == "" {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}
			ok, err := resolver.HasPermission(r.Context(), uid, perms...)
			if err != nil {
				logger.From(r.Context()).Error("permission check failed", logger.Err(err))
				httperrors.WriteError(w, httperrors.ErrDependency.WithCause(err))
				return
			}
			if !ok {
				httperrors.WriteError(w, httperrors.ErrForbidden.WithDetail(
					"requiere alguno de los permisos: "+strings.Join(perms, ", ")))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
