// Package auth contiene los DTOs de los endpoints de autenticación.
package auth

// LoginRequest acepta email o teléfono como identificador.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// UserSummary es la vista mínima del usuario que viaja en las respuestas
// de login/refresh (la app la usa para el header de la home).
type UserSummary struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// TokenResponse es la respuesta de login y refresh. El refresh token
// también viaja en cookie HTTP-only scoped a /v1/auth; el campo del body
// existe por compatibilidad con el cliente mobile.
type TokenResponse struct {
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type"` // "Bearer"
	ExpiresIn    int64       `json:"expires_in"` // segundos
	RefreshToken string      `json:"refresh_token"`
	User         UserSummary `json:"user"`
}

// MeResponse: identidad + roles/permisos resueltos. Es la forma canónica
// en que la UI aprende "quién soy y qué puedo hacer".
type MeResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// LogoutResponse reporta cuántos refresh tokens se revocaron.
type LogoutResponse struct {
	Revoked int `json:"revoked"`
}
