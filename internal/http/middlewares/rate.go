package middlewares

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	httperrors "github.com/talentia/talentia-api/internal/http/errors"
	"github.com/talentia/talentia-api/internal/rate"
)

// WithRateLimit limita requests por clave (default: IP del cliente).
// Responde 429 con Retry-After cuando se agota la ventana. Si el backend
// del limiter falla, deja pasar: el login sigue protegido por argon2.
func WithRateLimit(limiter rate.Limiter, keyFn func(*http.Request) string) Middleware {
	if keyFn == nil {
		keyFn = func(r *http.Request) string { return clientIP(r) }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			res, err := limiter.Allow(r.Context(), keyFn(r))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(res.RetryAfter.Seconds())+1))
				httperrors.WriteError(w, httperrors.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginRateKey combina IP + identificador del payload: un atacante que
// rota identificadores no quema la ventana de los demás usuarios de la
// misma IP (oficina/NAT), y un identificador atacado desde varias IPs
// tiene una ventana por IP.
func LoginRateKey(r *http.Request) string {
	key := clientIP(r)
	if id := peekBodyIdentifier(r); id != "" {
		key += "|" + strings.ToLower(id)
	}
	return key
}

// peekBodyIdentifier lee {"identifier": ...} y restaura el body.
func peekBodyIdentifier(r *http.Request) string {
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
		Identifier string `json:"identifier"`
	}
	if json.Unmarshal(b, &probe) != nil {
		return ""
	}
	return strings.TrimSpace(probe.Identifier)
}

// clientIP extrae la IP real (X-Forwarded-For detrás de proxy).
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
