// Package admin contiene los DTOs de los endpoints administrativos de RBAC.
package admin

// UserRBACResponse: roles y permisos efectivos de un usuario, leídos
// directo del store (sin cache) para que el admin vea el estado real.
type UserRBACResponse struct {
	UserID      string   `json:"user_id"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// RolesUpdateRequest asigna o quita roles por nombre.
type RolesUpdateRequest struct {
	Roles []string `json:"roles"`
}

// InvalidateRequest invalida el cache del resolver: un usuario puntual o
// todo el cache (all=true, para cambios masivos de esquema).
type InvalidateRequest struct {
	UserID string `json:"user_id,omitempty"`
	All    bool   `json:"all,omitempty"`
}
