package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/talentia/talentia-api/internal/app"
	"github.com/talentia/talentia-api/internal/domain/repository"
	dto "github.com/talentia/talentia-api/internal/http/dto/admin"
	httperrors "github.com/talentia/talentia-api/internal/http/errors"
	"github.com/talentia/talentia-api/internal/observability/logger"
)

// Endpoints administrativos de RBAC. Corren detrás de
// RequireAuth + RequirePermission("manage:all"); acá solo queda la lógica.

// NewAdminGetUserRBACHandler lee roles y permisos efectivos de un usuario
// DIRECTO del store, salteando el cache: el admin quiere el estado real.
func NewAdminGetUserRBACHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := pathUserID(w, r)
		if !ok {
			return
		}

		roles, err := c.RBAC.GetUserRoles(r.Context(), uid)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrDependency.WithCause(err))
			return
		}
		perms, err := c.RBAC.GetUserPermissions(r.Context(), uid)
		if err != nil {
			httperrors.WriteError(w, httperrors.ErrDependency.WithCause(err))
			return
		}

		WriteJSON(w, http.StatusOK, dto.UserRBACResponse{
			UserID:      uid.String(),
			Roles:       emptyIfNil(roles),
			Permissions: emptyIfNil(perms),
		})
	}
}

// NewAdminAssignRolesHandler asigna roles por nombre e invalida el cache
// del usuario para que el cambio aplique en la próxima request.
func NewAdminAssignRolesHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := pathUserID(w, r)
		if !ok {
			return
		}
		roles, ok := readRoles(w, r)
		if !ok {
			return
		}

		if err := c.RBAC.AssignUserRoles(r.Context(), uid, roles); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				httperrors.WriteError(w, httperrors.New(http.StatusUnprocessableEntity, "unknown_role", "uno o más roles no existen"))
				return
			}
			httperrors.WriteError(w, httperrors.ErrDependency.WithCause(err))
			return
		}
		c.Resolver.InvalidateUser(uid)

		logger.From(r.Context()).Info("roles assigned",
			logger.Component("admin.rbac"), logger.UserID(uid.String()), logger.Any("roles", roles))
		respondUserRBAC(w, r, c, uid)
	}
}

// NewAdminRemoveRolesHandler quita roles. Idempotente: quitar un rol que
// el usuario no tiene no es error.
func NewAdminRemoveRolesHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := pathUserID(w, r)
		if !ok {
			return
		}
		roles, ok := readRoles(w, r)
		if !ok {
			return
		}

		if err := c.RBAC.RemoveUserRoles(r.Context(), uid, roles); err != nil {
			httperrors.WriteError(w, httperrors.ErrDependency.WithCause(err))
			return
		}
		c.Resolver.InvalidateUser(uid)

		logger.From(r.Context()).Info("roles removed",
			logger.Component("admin.rbac"), logger.UserID(uid.String()), logger.Any("roles", roles))
		respondUserRBAC(w, r, c, uid)
	}
}

// NewAdminInvalidateCacheHandler invalida el cache del resolver: un
// usuario puntual o todo (all=true). Útil cuando se editan permisos de un
// rol, que afectan a N usuarios sin tocar user_role.
func NewAdminInvalidateCacheHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.InvalidateRequest
		if !ReadJSON(w, r, &req) {
			return
		}

		switch {
		case req.All:
			c.Resolver.InvalidateAll()
		case strings.TrimSpace(req.UserID) != "":
			c.Resolver.InvalidateUser(repository.UserID(strings.TrimSpace(req.UserID)))
		default:
			httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("user_id o all son obligatorios"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// pathUserID extrae y valida {userID} de la ruta.
func pathUserID(w http.ResponseWriter, r *http.Request) (repository.UserID, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "userID"))
	if raw == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("userID es obligatorio"))
		return "", false
	}
	return repository.UserID(raw), true
}

func readRoles(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req dto.RolesUpdateRequest
	if !ReadJSON(w, r, &req) {
		return nil, false
	}
	out := make([]string, 0, len(req.Roles))
	for _, role := range req.Roles {
		if role = strings.TrimSpace(role); role != "" {
			out = append(out, role)
		}
	}
	if len(out) == 0 {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("roles no puede estar vacío"))
		return nil, false
	}
	return out, true
}

// respondUserRBAC devuelve el estado post-mutación.
func respondUserRBAC(w http.ResponseWriter, r *http.Request, c *app.Container, uid repository.UserID) {
	roles, err := c.RBAC.GetUserRoles(r.Context(), uid)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrDependency.WithCause(err))
		return
	}
	perms, err := c.RBAC.GetUserPermissions(r.Context(), uid)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrDependency.WithCause(err))
		return
	}
	WriteJSON(w, http.StatusOK, dto.UserRBACResponse{
		UserID:      uid.String(),
		Roles:       emptyIfNil(roles),
		Permissions: emptyIfNil(perms),
	})
}
