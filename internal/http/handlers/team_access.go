package handlers

import (
	"net/http"

	"github.com/talentia/talentia-api/internal/app"
)

// NewTeamAccessHandler responde 204 si el caller llegó hasta acá: la
// cadena RequireAuth -> RequireTeamAccess ya validó todo. Sirve para que
// el front pregunte "¿puedo ver este equipo?" sin traer datos.
func NewTeamAccessHandler(_ *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}
