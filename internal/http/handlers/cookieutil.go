package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/talentia/talentia-api/internal/config"
)

// parseSameSite convierte el string de config a http.SameSite.
// Acepta: "", "lax", "strict", "none" (case-insensitive). Default: Lax.
func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		// SameSite=None requiere Secure=true en navegadores modernos.
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// BuildRefreshCookie construye la cookie del refresh token: HTTP-only y
// con Path restringido al grupo de auth, así el secreto solo viaja hacia
// refresh/logout y nunca hacia el resto del API.
func BuildRefreshCookie(cfg *config.Config, value string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     cfg.Auth.Cookie.Name,
		Value:    value,
		Path:     cfg.Auth.Cookie.Path,
		Expires:  time.Now().UTC().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		Secure:   cfg.Auth.Cookie.Secure,
		HttpOnly: true,
		SameSite: parseSameSite(cfg.Auth.Cookie.SameSite),
	}
	if cfg.Auth.Cookie.Domain != "" {
		c.Domain = cfg.Auth.Cookie.Domain
	}
	return c
}

// BuildRefreshDeletionCookie devuelve una cookie que borra el refresh
// token del browser (logout). Mismo name/path/flags para sobreescribir.
func BuildRefreshDeletionCookie(cfg *config.Config) *http.Cookie {
	c := &http.Cookie{
		Name:     cfg.Auth.Cookie.Name,
		Value:    "",
		Path:     cfg.Auth.Cookie.Path,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		Secure:   cfg.Auth.Cookie.Secure,
		HttpOnly: true,
		SameSite: parseSameSite(cfg.Auth.Cookie.SameSite),
	}
	if cfg.Auth.Cookie.Domain != "" {
		c.Domain = cfg.Auth.Cookie.Domain
	}
	return c
}
