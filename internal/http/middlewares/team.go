package middlewares

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/talentia/talentia-api/internal/http/errors"
	"github.com/talentia/talentia-api/internal/observability/logger"
	"github.com/talentia/talentia-api/internal/rbac"
)

// =================================================================================
// ETAPA 3: SCOPE DE EQUIPO
// =================================================================================

// RequireTeamAccess valida la pertenencia al equipo referenciado por el
// request. El team id se busca en el path ({teamID}), la query (team_id)
// o el payload JSON (team_id). Sin team id el recurso se trata como
// global y la etapa es pass-through: rol/permiso ya corrieron antes.
func RequireTeamAccess(resolver *rbac.Resolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			teamID := extractTeamID(r)
			if teamID == "" {
				next.ServeHTTP(w, r)
				return
			}

			uid := GetUserID(r.Context())
			if uid == "" {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}

			ok, err := resolver.CheckTeamAccess(r.Context(), uid, teamID)
			if err != nil {
				logger.From(r.Context()).Error("team access check failed",
					logger.TeamID(teamID), logger.Err(err))
				httperrors.WriteError(w, httperrors.ErrDependency.WithCause(err))
				return
			}
			if !ok {
				httperrors.WriteError(w, httperrors.ErrForbidden.WithDetail("sin acceso al equipo "+teamID))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractTeamID busca el team id en path, query y payload (en ese orden).
func extractTeamID(r *http.Request) string {
	if v := chi.URLParam(r, "teamID"); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("team_id")); v != "" {
		return v
	}
	return peekBodyTeamID(r)
}

// peekBodyTeamID lee el body (máx 1MB) buscando {"team_id": ...} y lo
// restaura para que el handler pueda decodificarlo de nuevo.
func peekBodyTeamID(r *http.Request) string {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if r.Body == nil || !strings.Contains(ct, "application/json") {
		return ""
	}
	b, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(b))
	if err != nil || len(b) == 0 {
		return ""
	}
	var probe struct {
		TeamID string `json:"team_id"`
	}
	if json.Unmarshal(b, &probe) != nil {
		return ""
	}
	return strings.TrimSpace(probe.TeamID)
}
