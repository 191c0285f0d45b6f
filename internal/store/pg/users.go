package pg

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/talentia/talentia-api/internal/domain/repository"
)

// GetByIdentifier busca por email (case-insensitive) o teléfono exacto.
// Respuesta idéntica para "no existe" y "password incorrecta" la arma el
// handler; acá solo ErrNotFound.
func (s *Store) GetByIdentifier(ctx context.Context, identifier string) (*repository.User, error) {
	identifier = strings.TrimSpace(identifier)
	const q = `
SELECT id, email, COALESCE(phone,''), COALESCE(full_name,''), COALESCE(password_hash,''), disabled, created_at
FROM app_user
WHERE lower(email) = lower($1) OR phone = $1
LIMIT 1;`
	return s.scanUser(s.pool.QueryRow(ctx, q, identifier))
}

func (s *Store) GetByID(ctx context.Context, id repository.UserID) (*repository.User, error) {
	const q = `
SELECT id, email, COALESCE(phone,''), COALESCE(full_name,''), COALESCE(password_hash,''), disabled, created_at
FROM app_user
WHERE id = $1;`
	return s.scanUser(s.pool.QueryRow(ctx, q, string(id)))
}

func (s *Store) scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	var id string
	err := row.Scan(&id, &u.Email, &u.Phone, &u.FullName, &u.PasswordHash, &u.Disabled, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.ID = repository.UserID(id)
	return &u, nil
}

var _ repository.UserRepository = (*Store)(nil)
