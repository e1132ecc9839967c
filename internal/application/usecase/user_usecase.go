package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/civistock/civistock-api/internal/application/dto"
	"github.com/civistock/civistock-api/internal/domain"
	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/domain/repository"
)

// ProtectedUsername cuenta de administrador que no se edita ni se borra desde la gestión de usuarios.
const ProtectedUsername = "admin"

// UserUseCase gestión de usuarios por el administrador y perfil propio.
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// List todos los usuarios ordenados por nombre.
func (uc *UserUseCase) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := uc.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, *ToUserResponse(u))
	}
	return out, nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	u, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(u), nil
}

// Create hashea la contraseña con bcrypt y persiste. Username único.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || !entity.ValidRole(in.Role) {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUsernameExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Role:         in.Role,
		Photo:        photoOrDefault(in.Photo),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return ToUserResponse(u), nil
}

// Update edición por el administrador. La cuenta protegida no se toca.
func (uc *UserUseCase) Update(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	u, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Username == ProtectedUsername {
		return nil, domain.ErrProtectedUser
	}
	if !entity.ValidRole(in.Role) {
		return nil, domain.ErrInvalidInput
	}
	username := strings.TrimSpace(in.Username)
	if username != u.Username {
		other, err := uc.repo.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, domain.ErrUsernameExists
		}
	}
	u.Username = username
	u.Name = strings.TrimSpace(in.Name)
	u.Role = in.Role
	if in.Photo != "" {
		u.Photo = in.Photo
	}
	if err := setPassword(u, in.Password); err != nil {
		return nil, err
	}
	u.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return ToUserResponse(u), nil
}

// Delete la cuenta protegida y la propia no se pueden borrar.
// Un usuario con movimientos registrados devuelve ErrConflict.
func (uc *UserUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	u, err := uc.find(ctx, id)
	if err != nil {
		return err
	}
	if u.Username == ProtectedUsername {
		return domain.ErrProtectedUser
	}
	if u.ID == actor.UserID {
		return domain.ErrConflict
	}
	return uc.repo.Delete(ctx, u.ID)
}

// Profile datos del usuario autenticado.
func (uc *UserUseCase) Profile(ctx context.Context, actor entity.Actor) (*dto.UserResponse, error) {
	return uc.GetByID(ctx, actor.UserID)
}

// UpdateProfile el usuario cambia nombre, foto o contraseña; nunca su rol.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, actor entity.Actor, in dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	u, err := uc.find(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	u.Name = strings.TrimSpace(in.Name)
	if in.Photo != "" {
		u.Photo = in.Photo
	}
	if err := setPassword(u, in.Password); err != nil {
		return nil, err
	}
	u.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return ToUserResponse(u), nil
}

func (uc *UserUseCase) find(ctx context.Context, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// setPassword vacío = sin cambio.
func setPassword(u *entity.User, password string) error {
	if password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func photoOrDefault(p string) string {
	if strings.TrimSpace(p) == "" {
		return entity.DefaultPhoto
	}
	return p
}

// ToUserResponse convierte a DTO sin el hash.
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		Photo:     u.Photo,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// EnsureAdmin crea la cuenta de administrador si no existe. Devuelve false si ya estaba.
func (uc *UserUseCase) EnsureAdmin(ctx context.Context, username, name, password string) (bool, error) {
	if strings.TrimSpace(password) == "" {
		return false, domain.ErrInvalidInput
	}
	_, err := uc.Create(ctx, dto.CreateUserRequest{
		Username: username,
		Name:     name,
		Password: password,
		Role:     entity.RoleAdmin,
	})
	if errors.Is(err, domain.ErrUsernameExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
