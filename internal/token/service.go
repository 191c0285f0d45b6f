// Package token implementa la emisión, rotación y revocación de refresh
// tokens. Es el único dueño del ledger: nadie más escribe refresh_token.
package token

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talentia/talentia-api/internal/domain/repository"
	jwtx "github.com/talentia/talentia-api/internal/jwt"
	"github.com/talentia/talentia-api/internal/observability/logger"
	tokens "github.com/talentia/talentia-api/internal/security/token"
)

// ErrInvalidRefreshToken cubre secreto inexistente, expirado, revocado y
// carrera de rotación perdida. Una sola señal hacia afuera: el caller no
// puede distinguir cuál condición aplicó.
var ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

// Pair es el resultado de Issue/Rotate. RefreshToken es el secreto en
// claro: se entrega una única vez y no se puede recuperar después.
type Pair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Service define las operaciones del Token Service.
type Service interface {
	// Issue emite un par access+refresh para un login exitoso, abriendo
	// una familia de rotación nueva.
	Issue(ctx context.Context, user *repository.User, amr []string) (*Pair, error)

	// Rotate valida el secreto presentado contra el ledger, revoca la
	// fila vieja y emite la sucesora en la misma familia. Retorna el
	// usuario dueño para que el handler arme la respuesta.
	Rotate(ctx context.Context, presented string) (*repository.User, *Pair, error)

	// RevokeUser revoca todas las sesiones del usuario (logout global).
	RevokeUser(ctx context.Context, userID repository.UserID) (int, error)
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Ledger     repository.TokenRepository
	Users      repository.UserRepository
	Issuer     *jwtx.Issuer
	RefreshTTL time.Duration

	// Now es inyectable para tests; default time.Now.
	Now func() time.Time
}

type service struct{ deps Deps }

func NewService(deps Deps) Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.RefreshTTL <= 0 {
		deps.RefreshTTL = 7 * 24 * time.Hour
	}
	return &service{deps: deps}
}

const refreshSecretBytes = 32

func (s *service) Issue(ctx context.Context, user *repository.User, amr []string) (*Pair, error) {
	if user == nil || user.ID == "" {
		return nil, fmt.Errorf("token: issue without user")
	}
	familyID := repository.FamilyID(uuid.NewString())
	pair, _, err := s.mint(ctx, user, familyID, amr, func(in repository.CreateRefreshTokenInput) error {
		return s.deps.Ledger.Create(ctx, in)
	})
	return pair, err
}

func (s *service) Rotate(ctx context.Context, presented string) (*repository.User, *Pair, error) {
	log := logger.From(ctx).With(logger.Component("token"), logger.Op("Rotate"))

	if presented == "" {
		return nil, nil, ErrInvalidRefreshToken
	}
	digest := []byte(tokens.SHA256Base64URL(presented))

	candidates, err := s.deps.Ledger.ListComparable(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("token: list candidates: %w", err)
	}

	// Comparación en tiempo constante contra TODAS las filas candidatas,
	// sin cortar en el primer match: que el tiempo de respuesta no sirva
	// de oráculo sobre qué fila (si alguna) coincidió.
	matched := -1
	for i := range candidates {
		if subtle.ConstantTimeCompare(digest, []byte(candidates[i].TokenHash)) == 1 && matched < 0 {
			matched = i
		}
	}
	if matched < 0 {
		return nil, nil, ErrInvalidRefreshToken
	}
	rt := candidates[matched]

	if rt.RevokedAt != nil {
		// Reuso de un token muerto: señal clásica de robo. Se revoca la
		// familia completa y hacia afuera sigue siendo el mismo error.
		n, rerr := s.deps.Ledger.RevokeFamily(ctx, rt.FamilyID)
		if rerr != nil {
			log.Error("revoke family after reuse failed", logger.FamilyID(rt.FamilyID.String()), logger.Err(rerr))
		} else {
			log.Warn("revoked token reused, family revoked",
				logger.UserID(rt.UserID.String()),
				logger.FamilyID(rt.FamilyID.String()),
				logger.Count(n),
			)
		}
		return nil, nil, ErrInvalidRefreshToken
	}
	if !s.deps.Now().Before(rt.ExpiresAt) {
		return nil, nil, ErrInvalidRefreshToken
	}

	user, err := s.deps.Users.GetByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidRefreshToken
		}
		return nil, nil, fmt.Errorf("token: load user: %w", err)
	}
	if user.Disabled {
		return nil, nil, ErrInvalidRefreshToken
	}

	pair, _, err := s.mint(ctx, user, rt.FamilyID, []string{"refresh"}, func(in repository.CreateRefreshTokenInput) error {
		// Revocación de la vieja + alta de la nueva en una transacción:
		// si otra request ya reclamó la fila, esta pierde y falla cerrada.
		return s.deps.Ledger.Rotate(ctx, rt.ID, in)
	})
	if err != nil {
		if errors.Is(err, repository.ErrTokenClaimed) {
			log.Warn("lost rotation race", logger.TokenID(rt.ID.String()), logger.FamilyID(rt.FamilyID.String()))
			return nil, nil, ErrInvalidRefreshToken
		}
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *service) RevokeUser(ctx context.Context, userID repository.UserID) (int, error) {
	n, err := s.deps.Ledger.RevokeAllByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("token: revoke by user: %w", err)
	}
	logger.From(ctx).Info("refresh tokens revoked",
		logger.Component("token"), logger.UserID(userID.String()), logger.Count(n))
	return n, nil
}

// mint genera secreto+fila nueva y el access token. persist decide cómo
// entra la fila al ledger (INSERT simple en login, rotación transaccional
// en refresh).
func (s *service) mint(ctx context.Context, user *repository.User, familyID repository.FamilyID, amr []string, persist func(repository.CreateRefreshTokenInput) error) (*Pair, repository.TokenID, error) {
	secret, err := tokens.GenerateOpaqueToken(refreshSecretBytes)
	if err != nil {
		return nil, "", fmt.Errorf("token: generate secret: %w", err)
	}
	id := repository.TokenID(uuid.NewString())
	expiresAt := s.deps.Now().UTC().Add(s.deps.RefreshTTL)

	in := repository.CreateRefreshTokenInput{
		ID:        id,
		FamilyID:  familyID,
		UserID:    user.ID,
		TokenHash: tokens.SHA256Base64URL(secret),
		ExpiresAt: expiresAt,
	}
	if err := persist(in); err != nil {
		if errors.Is(err, repository.ErrTokenClaimed) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("token: persist refresh: %w", err)
	}

	access, accessExp, err := s.deps.Issuer.IssueAccess(user.ID.String(), amr)
	if err != nil {
		return nil, "", fmt.Errorf("token: issue access: %w", err)
	}
	return &Pair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     secret,
		RefreshExpiresAt: expiresAt,
	}, id, nil
}
