package repository

import "context"

// RBACRepository define lecturas y escrituras sobre roles y permisos.
// Los permisos efectivos de un usuario se derivan de sus roles
// (user_role -> role_permission), nunca se asignan directo al usuario.
type RBACRepository interface {
	// GetUserRoles retorna los nombres de roles asignados a un usuario.
	// Ejemplo: ["manager", "recruiter"]
	GetUserRoles(ctx context.Context, userID UserID) ([]string, error)

	// GetUserPermissions retorna los permisos efectivos (únicos) derivados
	// de todos los roles del usuario. Ejemplo: ["read:candidates", "read:all"]
	GetUserPermissions(ctx context.Context, userID UserID) ([]string, error)

	// AssignUserRoles asigna roles (por nombre) a un usuario.
	// Roles desconocidos retornan ErrNotFound; duplicados se ignoran.
	AssignUserRoles(ctx context.Context, userID UserID, roles []string) error

	// RemoveUserRoles quita roles de un usuario. Idempotente.
	RemoveUserRoles(ctx context.Context, userID UserID, roles []string) error
}

// TeamRepository define la consulta de pertenencia a equipos.
// No se cachea: la membresía es más volátil que los roles.
type TeamRepository interface {
	// IsMember retorna true si existe la relación user_team.
	IsMember(ctx context.Context, userID UserID, teamID string) (bool, error)
}
