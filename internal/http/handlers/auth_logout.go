package handlers

import (
	"net/http"

	"github.com/talentia/talentia-api/internal/app"
	dto "github.com/talentia/talentia-api/internal/http/dto/auth"
	httperrors "github.com/talentia/talentia-api/internal/http/errors"
	"github.com/talentia/talentia-api/internal/http/middlewares"
	"github.com/talentia/talentia-api/internal/metrics"
	"github.com/talentia/talentia-api/internal/observability/logger"
)

// NewAuthLogoutHandler revoca TODOS los refresh tokens del usuario
// autenticado (logout en todos los dispositivos) y borra la cookie.
// Requiere access token válido (corre detrás de RequireAuth).
// Idempotente: un segundo logout revoca cero filas y también da 200.
func NewAuthLogoutHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := middlewares.GetUserID(r.Context())
		if uid == "" {
			httperrors.WriteError(w, httperrors.ErrUnauthorized)
			return
		}

		n, err := c.Tokens.RevokeUser(r.Context(), uid)
		if err != nil {
			logger.From(r.Context()).Error("logout: revoke failed",
				logger.Component("auth.logout"), logger.UserID(uid.String()), logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrDependency.WithCause(err))
			return
		}
		metrics.RevokedTotal.Add(float64(n))

		http.SetCookie(w, BuildRefreshDeletionCookie(c.Cfg))
		WriteJSON(w, http.StatusOK, dto.LogoutResponse{Revoked: n})
	}
}
