package repository

import (
	"context"
	"time"
)

// TokenID identifica una emisión concreta de refresh token ("jti").
type TokenID string

// FamilyID identifica la familia de rotación: todos los tokens que
// descienden de un mismo login comparten FamilyID. Tipo propio para que
// revocar-por-usuario y revocar-por-familia sean operaciones distintas
// y no se infieran del formato del string.
type FamilyID string

func (t TokenID) String() string  { return string(t) }
func (f FamilyID) String() string { return string(f) }

// RefreshToken representa una fila del ledger. El secreto en claro nunca
// se persiste: solo su hash. Una fila revocada no se reactiva jamás.
type RefreshToken struct {
	ID        TokenID
	FamilyID  FamilyID
	UserID    UserID
	TokenHash string
	IssuedAt  time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// CreateRefreshTokenInput contiene los datos para insertar una fila nueva.
type CreateRefreshTokenInput struct {
	ID        TokenID
	FamilyID  FamilyID
	UserID    UserID
	TokenHash string
	ExpiresAt time.Time
}

// TokenRepository es el ledger de refresh tokens, propiedad exclusiva del
// Token Service. Las filas nunca se borran físicamente (quedan para
// auditoría); la poda es housekeeping externo.
type TokenRepository interface {
	// Create inserta una fila nueva (login).
	Create(ctx context.Context, in CreateRefreshTokenInput) error

	// ListComparable retorna las filas no expiradas, revocadas o no.
	// Es el conjunto candidato contra el que se compara (en tiempo
	// constante) el secreto presentado en una rotación. Incluye las
	// revocadas para poder detectar reuso de un token muerto.
	ListComparable(ctx context.Context) ([]RefreshToken, error)

	// Rotate revoca la fila vieja y crea la sucesora en una única
	// transacción. La revocación es condicional (revoked_at IS NULL):
	// si otra request ya reclamó la fila, retorna ErrTokenClaimed y no
	// inserta nada.
	Rotate(ctx context.Context, oldID TokenID, in CreateRefreshTokenInput) error

	// RevokeAllByUser revoca todas las filas vivas del usuario (logout
	// en todos los dispositivos). Retorna cuántas revocó.
	RevokeAllByUser(ctx context.Context, userID UserID) (int, error)

	// RevokeFamily revoca todas las filas vivas de una familia
	// (contención ante reuso de un token muerto). Retorna cuántas revocó.
	RevokeFamily(ctx context.Context, familyID FamilyID) (int, error)
}
