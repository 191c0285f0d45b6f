package pg

import (
	"context"

	"github.com/talentia/talentia-api/internal/domain/repository"
)

// IsMember consulta user_team directo en cada llamada: la membresía de
// equipos cambia seguido y no se cachea.
func (s *Store) IsMember(ctx context.Context, userID repository.UserID, teamID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM user_team WHERE user_id = $1 AND team_id = $2);`
	var ok bool
	if err := s.pool.QueryRow(ctx, q, string(userID), teamID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

var _ repository.TeamRepository = (*Store)(nil)
