package repository

import "errors"

// Errores sentinela compartidos por todos los repositorios.
// Los stores concretos (pg) traducen sus errores nativos a estos.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid input")

	// ErrTokenClaimed indica que la fila de refresh token ya fue revocada
	// por otra operación (carrera de rotación doble). El segundo corredor
	// debe fallar cerrado.
	ErrTokenClaimed = errors.New("refresh token already claimed")
)
