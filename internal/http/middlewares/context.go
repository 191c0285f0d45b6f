package middlewares

import (
	"context"

	"github.com/talentia/talentia-api/internal/domain/repository"
)

type ctxKey int

const (
	ctxKeyClaims ctxKey = iota
	ctxKeyUserID
	ctxKeyRequestID
)

// WithClaims guarda las claims del access token en el contexto.
func WithClaims(ctx context.Context, claims map[string]any) context.Context {
	return context.WithValue(ctx, ctxKeyClaims, claims)
}

// GetClaims retorna las claims o nil si no hubo autenticación.
func GetClaims(ctx context.Context) map[string]any {
	v, _ := ctx.Value(ctxKeyClaims).(map[string]any)
	return v
}

// WithUserID guarda la identidad resuelta (etapa de autenticación).
func WithUserID(ctx context.Context, userID repository.UserID) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, userID)
}

// GetUserID retorna el user id autenticado, o "" si no hay identidad.
func GetUserID(ctx context.Context) repository.UserID {
	v, _ := ctx.Value(ctxKeyUserID).(repository.UserID)
	return v
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, requestID)
}

// GetRequestID retorna el request id generado/propagado por WithRequestID.
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}
