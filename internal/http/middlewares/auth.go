package middlewares

import (
	"net/http"
	"strings"

	"github.com/talentia/talentia-api/internal/domain/repository"
	httperrors "github.com/talentia/talentia-api/internal/http/errors"
	jwtx "github.com/talentia/talentia-api/internal/jwt"
)

// =================================================================================
// ETAPA 1: AUTENTICACIÓN
// =================================================================================

// RequireAuth valida Authorization: Bearer <JWT> y guarda claims + user id
// en el contexto. Token ausente, malformado, expirado o con firma inválida
// responde 401 y corta la cadena: ningún guard posterior ni handler corre.
func RequireAuth(issuer *jwtx.Issuer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}

			claims, err := issuer.ParseAccess(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			if sub, _ := claims["sub"].(string); sub != "" {
				ctx = WithUserID(ctx, repository.UserID(sub))
			} else {
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extrae el token del header (tolerante con mayúsculas).
func bearerToken(r *http.Request) string {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if ah == "" {
		return ""
	}
	if i := strings.IndexByte(ah, ' '); i > 0 && strings.EqualFold(ah[:i], "Bearer") {
		return strings.TrimSpace(ah[i+1:])
	}
	return ""
}
