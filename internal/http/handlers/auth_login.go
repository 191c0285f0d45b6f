package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/talentia/talentia-api/internal/app"
	"github.com/talentia/talentia-api/internal/domain/repository"
	dto "github.com/talentia/talentia-api/internal/http/dto/auth"
	httperrors "github.com/talentia/talentia-api/internal/http/errors"
	"github.com/talentia/talentia-api/internal/metrics"
	"github.com/talentia/talentia-api/internal/observability/logger"
)

// NewAuthLoginHandler valida identificador+password y emite el par
// access+refresh, abriendo una familia de rotación nueva.
// Usuario inexistente, deshabilitado o password incorrecta responden
// EXACTAMENTE igual: nada de enumerar identificadores.
func NewAuthLoginHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.From(r.Context()).With(logger.Component("auth.login"))

		var req dto.LoginRequest
		if !ReadJSON(w, r, &req) {
			return
		}
		req.Identifier = strings.TrimSpace(strings.ToLower(req.Identifier))
		if req.Identifier == "" || req.Password == "" {
			httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("identifier y password son obligatorios"))
			return
		}

		ctx := r.Context()
		u, err := c.Users.GetByIdentifier(ctx, req.Identifier)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
				httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
				return
			}
			metrics.LoginsTotal.WithLabelValues("error").Inc()
			log.Error("login: user lookup failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrDependency.WithCause(err))
			return
		}

		if u.Disabled || u.PasswordHash == "" || !c.Hasher.Verify(req.Password, u.PasswordHash) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
			return
		}

		pair, err := c.Tokens.Issue(ctx, u, []string{"pwd"})
		if err != nil {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
			log.Error("login: issue failed", logger.UserID(u.ID.String()), logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternal)
			return
		}

		metrics.LoginsTotal.WithLabelValues("ok").Inc()
		log.Info("login ok", logger.UserID(u.ID.String()))

		http.SetCookie(w, BuildRefreshCookie(c.Cfg, pair.RefreshToken, c.Cfg.RefreshTTL()))
		WriteJSON(w, http.StatusOK, tokenResponse(u, pair))
	}
}
