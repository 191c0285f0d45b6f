// Package metrics define los contadores de negocio del core de auth.
// Las métricas HTTP genéricas viven en el middleware de internal/http.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginsTotal cuenta intentos de login por resultado:
	// ok | invalid_credentials | rate_limited | error
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Intentos de login por resultado",
	}, []string{"result"})

	// RotationsTotal cuenta rotaciones de refresh token por resultado:
	// ok | invalid | reuse | error
	RotationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_rotations_total",
		Help: "Rotaciones de refresh token por resultado",
	}, []string{"result"})

	// RevokedTotal cuenta refresh tokens revocados por logout.
	RevokedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_tokens_revoked_total",
		Help: "Refresh tokens revocados por logout",
	})

	// RBACCacheTotal cuenta accesos al cache del resolver: hit | miss
	RBACCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_cache_requests_total",
		Help: "Accesos al cache RBAC por resultado",
	}, []string{"result"})
)
