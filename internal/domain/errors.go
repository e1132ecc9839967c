package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrUsernameExists    = errors.New("el nombre de usuario ya existe")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidQuantity   = errors.New("cantidad inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrMaterialInactive  = errors.New("el material no está activo")
	ErrProtectedUser     = errors.New("el usuario administrador no se puede modificar")

	// Guardas del ciclo de vida de movimientos.
	ErrInvalidTransition = errors.New("transición no permitida desde el estado actual")
	ErrAlreadyProcessed  = errors.New("la solicitud ya fue procesada")
	ErrNoteRequired      = errors.New("se requiere una observación")
)
