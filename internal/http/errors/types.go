package errors

import (
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores de la aplicación.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa original, para logs; no se expone
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// FromError convierte un error genérico en AppError; lo que no es AppError
// queda como error interno conservando la causa.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// WithDetail retorna una COPIA con detalle extra (no muta los globales).
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause retorna una COPIA con la causa original.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// Taxonomía del core. Nota: invalid_credentials e invalid_refresh son
// deliberadamente opacos (misma respuesta para todas sus causas), y los
// errores de dependencia NUNCA se disfrazan de 401/403.
var (
	ErrInvalidJSON   = New(http.StatusBadRequest, "invalid_json", "payload JSON inválido")
	ErrMissingFields = New(http.StatusBadRequest, "missing_fields", "faltan campos obligatorios")

	ErrInvalidCredentials = New(http.StatusUnauthorized, "invalid_credentials", "credenciales inválidas")
	ErrInvalidRefresh     = New(http.StatusUnauthorized, "invalid_refresh", "refresh token inválido")
	ErrTokenMissing       = New(http.StatusUnauthorized, "unauthorized", "falta Authorization: Bearer <token>")
	ErrTokenInvalid       = New(http.StatusUnauthorized, "unauthorized", "token inválido o expirado")
	ErrUnauthorized       = New(http.StatusUnauthorized, "unauthorized", "no autenticado")

	ErrForbidden = New(http.StatusForbidden, "forbidden", "acceso denegado")

	ErrRateLimited = New(http.StatusTooManyRequests, "rate_limited", "demasiados intentos, probá más tarde")

	ErrInternal   = New(http.StatusInternalServerError, "internal_error", "error interno")
	ErrDependency = New(http.StatusInternalServerError, "dependency_error", "dependencia no disponible")
)
