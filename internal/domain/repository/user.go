package repository

import (
	"context"
	"time"
)

// UserID identifica a un usuario. Tipo propio para no confundirlo con
// FamilyID u otros strings (ver token.go).
type UserID string

func (u UserID) String() string { return string(u) }

// User representa la identidad mínima que el core necesita leer.
// El CRUD de usuarios vive fuera del core; acá solo se consulta.
type User struct {
	ID           UserID
	Email        string
	Phone        string
	FullName     string
	PasswordHash string // PHC string (argon2id); vacío si el alta quedó incompleta
	Disabled     bool
	CreatedAt    time.Time
}

// UserRepository define las lecturas sobre el Credential Store.
type UserRepository interface {
	// GetByIdentifier busca por email (case-insensitive) o por teléfono.
	// Retorna ErrNotFound si no existe.
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)

	// GetByID busca por ID. Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id UserID) (*User, error)
}
