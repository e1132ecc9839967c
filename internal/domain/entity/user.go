package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin       = "ADMIN"
	RoleAlmacenista = "ALMACENISTA"
	RoleIngeniero   = "INGENIERO"
)

// DefaultPhoto foto asignada cuando el usuario no carga una.
const DefaultPhoto = "default.jpg"

// User representa un usuario del sistema (ingeniero, almacenista o administrador).
type User struct {
	ID           string
	Username     string
	Name         string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // ADMIN, ALMACENISTA, INGENIERO
	Photo        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole indica si el rol pertenece al vocabulario conocido.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAlmacenista, RoleIngeniero:
		return true
	}
	return false
}

// Actor identidad de quien dispara una operación. La entrega la capa HTTP
// (claims del token) y el motor confía en ella sin volver a verificarla.
type Actor struct {
	UserID string
	Role   string
}

// Is indica si el actor tiene el rol dado.
func (a Actor) Is(role string) bool { return a.Role == role }
