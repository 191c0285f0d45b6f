package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/talentia/talentia-api/internal/domain/repository"
)

const refreshCols = `id, family_id, user_id, token_hash, issued_at, expires_at, revoked_at`

// Create inserta una fila nueva del ledger (login).
func (s *Store) Create(ctx context.Context, in repository.CreateRefreshTokenInput) error {
	const q = `
INSERT INTO refresh_token (id, family_id, user_id, token_hash, expires_at)
VALUES ($1, $2, $3, $4, $5);`
	_, err := s.pool.Exec(ctx, q,
		string(in.ID), string(in.FamilyID), string(in.UserID), in.TokenHash, in.ExpiresAt)
	return err
}

// ListComparable retorna las filas no expiradas (revocadas incluidas, para
// detectar reuso). Es el conjunto candidato del escaneo en tiempo constante.
func (s *Store) ListComparable(ctx context.Context) ([]repository.RefreshToken, error) {
	const q = `
SELECT ` + refreshCols + `
FROM refresh_token
WHERE expires_at > now();`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.RefreshToken
	for rows.Next() {
		rt, err := scanRefresh(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rt)
	}
	return out, rows.Err()
}

// Rotate revoca la fila vieja y crea la sucesora en una transacción.
// El UPDATE condicional (revoked_at IS NULL) es el "claim": si dos requests
// corren con el mismo secreto, la segunda no encuentra fila y falla cerrada
// con ErrTokenClaimed. O pasan ambas escrituras o ninguna.
func (s *Store) Rotate(ctx context.Context, oldID repository.TokenID, in repository.CreateRefreshTokenInput) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var claimed string
	err = tx.QueryRow(ctx, `
UPDATE refresh_token
   SET revoked_at = now()
 WHERE id = $1
   AND revoked_at IS NULL
RETURNING id;`, string(oldID)).Scan(&claimed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrTokenClaimed
		}
		return err
	}

	_, err = tx.Exec(ctx, `
INSERT INTO refresh_token (id, family_id, user_id, token_hash, expires_at)
VALUES ($1, $2, $3, $4, $5);`,
		string(in.ID), string(in.FamilyID), string(in.UserID), in.TokenHash, in.ExpiresAt)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// RevokeAllByUser revoca todas las filas vivas del usuario (logout global).
func (s *Store) RevokeAllByUser(ctx context.Context, userID repository.UserID) (int, error) {
	tag, err := s.pool.Exec(ctx, `
UPDATE refresh_token
   SET revoked_at = now()
 WHERE user_id = $1
   AND revoked_at IS NULL;`, string(userID))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// RevokeFamily revoca todas las filas vivas de una familia (contención
// ante reuso de un token muerto).
func (s *Store) RevokeFamily(ctx context.Context, familyID repository.FamilyID) (int, error) {
	tag, err := s.pool.Exec(ctx, `
UPDATE refresh_token
   SET revoked_at = now()
 WHERE family_id = $1
   AND revoked_at IS NULL;`, string(familyID))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func scanRefresh(row pgx.Row) (*repository.RefreshToken, error) {
	var rt repository.RefreshToken
	var id, fam, uid string
	err := row.Scan(&id, &fam, &uid, &rt.TokenHash, &rt.IssuedAt, &rt.ExpiresAt, &rt.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	rt.ID = repository.TokenID(id)
	rt.FamilyID = repository.FamilyID(fam)
	rt.UserID = repository.UserID(uid)
	return &rt, nil
}

var _ repository.TokenRepository = (*Store)(nil)
