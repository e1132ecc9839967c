package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/civistock/civistock-api/internal/domain/entity"
)

// MaterialRepository define el puerto de persistencia para Material.
// Usable con pool o dentro de una transacción (GetForUpdate).
type MaterialRepository interface {
	Create(ctx context.Context, m *entity.Material) error
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE). Solo tiene sentido dentro de una tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Material, error)
	GetByCode(ctx context.Context, code string) (*entity.Material, error)
	// List filtra por la clave de búsqueda normalizada (vacía = todos).
	List(ctx context.Context, search string, onlyActive bool) ([]*entity.Material, error)
	ListLowStock(ctx context.Context) ([]*entity.Material, error)
	CountBelowMin(ctx context.Context) (int, error)
	Update(ctx context.Context, m *entity.Material) error
	// UpdateBalances persiste stock y en_devolucion tras una transición.
	UpdateBalances(ctx context.Context, m *entity.Material) error
	SetStock(ctx context.Context, id string, stock decimal.Decimal) error
	SoftDelete(ctx context.Context, id string) error
}
