package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civistock/civistock-api/internal/application/dto"
	"github.com/civistock/civistock-api/internal/application/usecase"
	"github.com/civistock/civistock-api/internal/domain"
	"github.com/civistock/civistock-api/internal/infrastructure/memory"
)

func newMaterialUC() *usecase.MaterialUseCase {
	return usecase.NewMaterialUseCase(memory.NewStore().Materials())
}

func createMaterial(t *testing.T, uc *usecase.MaterialUseCase, code, name, desc string) *dto.MaterialResponse {
	t.Helper()
	m, err := uc.Create(context.Background(), dto.CreateMaterialRequest{
		Code: code, Name: name, Description: desc, Unit: "unidad",
		Stock: decimal.NewFromInt(10), MinStock: decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	return m
}

func TestMaterialUseCase_CreateDuplicateCode(t *testing.T) {
	uc := newMaterialUC()
	m := createMaterial(t, uc, "TUB-01", "Tubería PVC", "media pulgada")
	assert.True(t, m.Active)
	assert.False(t, m.LowStock)
	assert.True(t, m.InReturn.IsZero())

	_, err := uc.Create(context.Background(), dto.CreateMaterialRequest{Code: "TUB-01", Name: "Otro", Unit: "m"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestMaterialUseCase_SearchIgnoresCaseAndAccents(t *testing.T) {
	uc := newMaterialUC()
	ctx := context.Background()
	createMaterial(t, uc, "TUB-01", "Tubería PVC", "media pulgada")
	createMaterial(t, uc, "CEM-01", "Cemento", "gris uso general")

	found, err := uc.List(ctx, "TUBERIA", false)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "TUB-01", found[0].Code)

	found, err = uc.List(ctx, "  Gris ", false)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "CEM-01", found[0].Code)

	all, err := uc.List(ctx, "", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMaterialUseCase_UpdateRefreshesSearchAndChecksCode(t *testing.T) {
	uc := newMaterialUC()
	ctx := context.Background()
	a := createMaterial(t, uc, "A-1", "Arena", "")
	createMaterial(t, uc, "B-1", "Bloque", "")

	_, err := uc.Update(ctx, a.ID, dto.UpdateMaterialRequest{Code: "B-1", Name: "Arena", Unit: "m3"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	upd, err := uc.Update(ctx, a.ID, dto.UpdateMaterialRequest{Code: "A-1", Name: "Arena lavada", Unit: "m3", MinStock: decimal.NewFromInt(20)})
	require.NoError(t, err)
	assert.True(t, upd.Stock.Equal(decimal.NewFromInt(10)), "editar no toca stock")
	assert.True(t, upd.LowStock)

	found, err := uc.List(ctx, "lavada", false)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestMaterialUseCase_RejectsUnstorableAmounts(t *testing.T) {
	uc := newMaterialUC()
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateMaterialRequest{Code: "X-1", Name: "Clavo", Unit: "kg", Stock: decimal.RequireFromString("1.2345")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = uc.Create(ctx, dto.CreateMaterialRequest{Code: "X-1", Name: "Clavo", Unit: "kg", MinStock: decimal.New(1, 11)})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = uc.Create(ctx, dto.CreateMaterialRequest{Code: "X-1", Name: "Clavo", Unit: "kg", Stock: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	m := createMaterial(t, uc, "X-1", "Clavo", "")
	_, err = uc.Update(ctx, m.ID, dto.UpdateMaterialRequest{Code: "X-1", Name: "Clavo", Unit: "kg", MinStock: decimal.RequireFromString("0.0001")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = uc.SetStock(ctx, m.ID, dto.SetStockRequest{Stock: decimal.RequireFromString("2.0005")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	out, err := uc.SetStock(ctx, m.ID, dto.SetStockRequest{Stock: decimal.RequireFromString("2.125")})
	require.NoError(t, err)
	assert.Equal(t, "2.125", out.Stock.String())
}

func TestMaterialUseCase_SetStockAndDelete(t *testing.T) {
	uc := newMaterialUC()
	ctx := context.Background()
	m := createMaterial(t, uc, "V-1", "Varilla", "")

	_, err := uc.SetStock(ctx, m.ID, dto.SetStockRequest{Stock: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	out, err := uc.SetStock(ctx, m.ID, dto.SetStockRequest{Stock: decimal.NewFromInt(2)})
	require.NoError(t, err)
	assert.True(t, out.LowStock)

	require.NoError(t, uc.Delete(ctx, m.ID))
	active, err := uc.List(ctx, "", true)
	require.NoError(t, err)
	assert.Empty(t, active)

	got, err := uc.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = uc.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, "x"), domain.ErrNotFound)
}
