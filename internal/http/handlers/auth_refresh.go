package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/talentia/talentia-api/internal/app"
	"github.com/talentia/talentia-api/internal/domain/repository"
	dto "github.com/talentia/talentia-api/internal/http/dto/auth"
	httperrors "github.com/talentia/talentia-api/internal/http/errors"
	"github.com/talentia/talentia-api/internal/metrics"
	"github.com/talentia/talentia-api/internal/observability/logger"
	"github.com/talentia/talentia-api/internal/token"
)

// NewAuthRefreshHandler rota el refresh token: el secreto viene de la
// cookie (no del body), se valida contra el ledger, se revoca la fila
// vieja y se emite la sucesora en la misma familia.
// Secreto ausente, inexistente, expirado o revocado: misma respuesta.
func NewAuthRefreshHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.From(r.Context()).With(logger.Component("auth.refresh"))

		ck, err := r.Cookie(c.Cfg.Auth.Cookie.Name)
		if err != nil || ck.Value == "" {
			metrics.RotationsTotal.WithLabelValues("invalid").Inc()
			httperrors.WriteError(w, httperrors.ErrInvalidRefresh)
			return
		}

		u, pair, err := c.Tokens.Rotate(r.Context(), ck.Value)
		if err != nil {
			if errors.Is(err, token.ErrInvalidRefreshToken) {
				metrics.RotationsTotal.WithLabelValues("invalid").Inc()
				// Borrar la cookie muerta: el cliente debe reloguear.
				http.SetCookie(w, BuildRefreshDeletionCookie(c.Cfg))
				httperrors.WriteError(w, httperrors.ErrInvalidRefresh)
				return
			}
			metrics.RotationsTotal.WithLabelValues("error").Inc()
			log.Error("refresh: rotate failed", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrDependency.WithCause(err))
			return
		}

		metrics.RotationsTotal.WithLabelValues("ok").Inc()
		http.SetCookie(w, BuildRefreshCookie(c.Cfg, pair.RefreshToken, c.Cfg.RefreshTTL()))
		WriteJSON(w, http.StatusOK, tokenResponse(u, pair))
	}
}

// tokenResponse arma la respuesta común de login/refresh.
func tokenResponse(u *repository.User, pair *token.Pair) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(time.Until(pair.AccessExpiresAt).Seconds()),
		RefreshToken: pair.RefreshToken,
		User: dto.UserSummary{
			ID:       u.ID.String(),
			Email:    u.Email,
			FullName: u.FullName,
		},
	}
}
