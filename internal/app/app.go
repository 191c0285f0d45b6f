package app

import (
	"context"

	"github.com/talentia/talentia-api/internal/config"
	"github.com/talentia/talentia-api/internal/domain/repository"
	jwtx "github.com/talentia/talentia-api/internal/jwt"
	"github.com/talentia/talentia-api/internal/rate"
	"github.com/talentia/talentia-api/internal/rbac"
	"github.com/talentia/talentia-api/internal/security/password"
	"github.com/talentia/talentia-api/internal/token"
)

// Container agrupa las dependencias que consumen handlers y rutas.
// Todo entra por interfaz: los tests arman un Container con fakes.
type Container struct {
	Cfg *config.Config

	Users repository.UserRepository
	RBAC  repository.RBACRepository
	Teams repository.TeamRepository

	Tokens   token.Service
	Resolver *rbac.Resolver
	Issuer   *jwtx.Issuer
	Hasher   password.Hasher

	LoginLimiter rate.Limiter

	// Ready chequea las dependencias para /readyz (ping a Postgres).
	Ready func(ctx context.Context) error
}
