package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80"`
	Name     string `json:"nombre" validate:"required,min=1,max=120"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"rol" validate:"required,oneof=ADMIN ALMACENISTA INGENIERO"`
	Photo    string `json:"foto" validate:"omitempty,max=255"`
}

// UpdateUserRequest edición por el administrador. Password vacío = no cambia.
type UpdateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80"`
	Name     string `json:"nombre" validate:"required,min=1,max=120"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Role     string `json:"rol" validate:"required,oneof=ADMIN ALMACENISTA INGENIERO"`
	Photo    string `json:"foto" validate:"omitempty,max=255"`
}

// UpdateProfileRequest el usuario edita su propio perfil (no puede cambiar su rol).
type UpdateProfileRequest struct {
	Name     string `json:"nombre" validate:"required,min=1,max=120"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Photo    string `json:"foto" validate:"omitempty,max=255"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"nombre"`
	Role      string    `json:"rol"`
	Photo     string    `json:"foto"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token JWT y datos del usuario.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
