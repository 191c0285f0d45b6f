package pg

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/talentia/talentia-api/internal/domain/repository"
)

// ---------- LECTURAS ----------

// GetUserRoles: nombres de roles asignados al usuario.
func (s *Store) GetUserRoles(ctx context.Context, userID repository.UserID) ([]string, error) {
	const q = `
SELECT r.name
FROM user_role ur
JOIN role r ON r.id = ur.role_id
WHERE ur.user_id = $1
ORDER BY r.name;`
	return s.queryStrings(ctx, q, string(userID))
}

// GetUserPermissions: permisos efectivos derivados de los roles del usuario
// (unión sin duplicados).
func (s *Store) GetUserPermissions(ctx context.Context, userID repository.UserID) ([]string, error) {
	const q = `
SELECT DISTINCT p.name
FROM user_role ur
JOIN role_permission rp ON rp.role_id = ur.role_id
JOIN permission p ON p.id = rp.permission_id
WHERE ur.user_id = $1
ORDER BY p.name;`
	return s.queryStrings(ctx, q, string(userID))
}

func (s *Store) queryStrings(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ---------- ESCRITURAS ----------

func (s *Store) AssignUserRoles(ctx context.Context, userID repository.UserID, add []string) error {
	clean := dedup(add)
	if len(clean) == 0 {
		return nil
	}
	// Resolver nombres -> ids; rol desconocido es error, no silencio.
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM role WHERE name = ANY($1)`, clean)
	if err != nil {
		return err
	}
	ids := map[string]string{}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			rows.Close()
			return err
		}
		ids[name] = id
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(ids) != len(clean) {
		return repository.ErrNotFound
	}

	b := &pgx.Batch{}
	for _, name := range clean {
		b.Queue(`INSERT INTO user_role (user_id, role_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`, string(userID), ids[name])
	}
	br := s.pool.SendBatch(ctx, b)
	defer br.Close()
	for range clean {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) RemoveUserRoles(ctx context.Context, userID repository.UserID, remove []string) error {
	clean := dedup(remove)
	if len(clean) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
DELETE FROM user_role
WHERE user_id = $1
  AND role_id IN (SELECT id FROM role WHERE name = ANY($2))`, string(userID), clean)
	return err
}

func dedup(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

var _ repository.RBACRepository = (*Store)(nil)
