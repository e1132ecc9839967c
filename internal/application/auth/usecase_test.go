package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/civistock/civistock-api/internal/application/auth"
	"github.com/civistock/civistock-api/internal/application/dto"
	"github.com/civistock/civistock-api/internal/domain"
	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/infrastructure/memory"
	"github.com/civistock/civistock-api/pkg/jwt"
)

const testSecret = "secreto-de-prueba"

func TestLogin(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("clave123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(ctx, &entity.User{
		ID: "u-1", Username: "alm1", Name: "Luis", PasswordHash: string(hash), Role: entity.RoleAlmacenista,
	}))
	uc := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testSecret, ExpMinutes: 60, Issuer: "civistock"})

	t.Run("credenciales válidas", func(t *testing.T) {
		res, err := uc.Login(ctx, dto.LoginRequest{Username: " alm1 ", Password: "clave123"})
		require.NoError(t, err)
		assert.Equal(t, "alm1", res.User.Username)

		claims, err := jwt.Parse(testSecret, res.Token)
		require.NoError(t, err)
		assert.Equal(t, "u-1", claims.UserID)
		assert.Equal(t, entity.RoleAlmacenista, claims.Role)
		assert.Equal(t, "civistock", claims.Issuer)
	})

	t.Run("contraseña errónea", func(t *testing.T) {
		_, err := uc.Login(ctx, dto.LoginRequest{Username: "alm1", Password: "otra"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("usuario inexistente", func(t *testing.T) {
		_, err := uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "clave123"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
