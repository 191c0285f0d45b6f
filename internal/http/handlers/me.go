package handlers

import (
	"errors"
	"net/http"

	"github.com/talentia/talentia-api/internal/app"
	"github.com/talentia/talentia-api/internal/domain/repository"
	dto "github.com/talentia/talentia-api/internal/http/dto/auth"
	httperrors "github.com/talentia/talentia-api/internal/http/errors"
	"github.com/talentia/talentia-api/internal/http/middlewares"
	"github.com/talentia/talentia-api/internal/observability/logger"
)

// NewMeHandler responde {id, email, roles, permissions} del caller.
// Los roles/permisos salen del resolver (cache TTL mediante), no del
// token: es la vista canónica de "quién soy y qué puedo hacer".
func NewMeHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := middlewares.GetUserID(r.Context())
		if uid == "" {
			httperrors.WriteError(w, httperrors.ErrUnauthorized)
			return
		}

		u, err := c.Users.GetByID(r.Context(), uid)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Token válido de un usuario que ya no existe.
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}
			httperrors.WriteError(w, httperrors.ErrDependency.WithCause(err))
			return
		}

		snap, err := c.Resolver.Resolve(r.Context(), uid)
		if err != nil {
			logger.From(r.Context()).Error("me: resolve failed",
				logger.Component("auth.me"), logger.UserID(uid.String()), logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrDependency.WithCause(err))
			return
		}

		WriteJSON(w, http.StatusOK, dto.MeResponse{
			ID:          u.ID.String(),
			Email:       u.Email,
			Roles:       emptyIfNil(snap.Roles),
			Permissions: emptyIfNil(snap.Permissions),
		})
	}
}

// emptyIfNil: la app espera [] y no null.
func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
