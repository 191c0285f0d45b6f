package handlers

import (
	"net/http"

	"github.com/talentia/talentia-api/internal/app"
	"github.com/talentia/talentia-api/internal/observability/logger"
)

// NewHealthzHandler: liveness. El proceso responde, nada más.
func NewHealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// NewReadyzHandler: readiness. Chequea las dependencias (ping a Postgres);
// si fallan responde 503 para que el balanceador saque la instancia.
func NewReadyzHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c.Ready != nil {
			if err := c.Ready(r.Context()); err != nil {
				logger.From(r.Context()).Warn("readiness check failed",
					logger.Component("health"), logger.Err(err))
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
