package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/civistock/civistock-api/internal/domain/entity"
)

// MovementFilter criterios de listado. Campos vacíos no filtran.
type MovementFilter struct {
	Types              []string
	Statuses           []string
	SubStates          []entity.SubState
	RequestedBy        string
	MaterialID         string
	Visible            *bool
	Active             *bool
	ActiveMaterialOnly bool
	From               *time.Time // inclusive
	To                 *time.Time // exclusivo
	Limit              int
}

// MovementRepository define el puerto de persistencia para Movement.
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// GetForUpdate bloquea la fila del movimiento hasta el fin de la tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Movement, error)
	Update(ctx context.Context, m *entity.Movement) error
	GetDetail(ctx context.Context, id string) (*entity.MovementDetail, error)
	// ListDetails ordena por fecha descendente.
	ListDetails(ctx context.Context, f MovementFilter) ([]*entity.MovementDetail, error)
	Count(ctx context.Context, f MovementFilter) (int, error)
	// SumQuantity suma cantidad por solicitante, material, tipo y estado (0 si no hay filas).
	SumQuantity(ctx context.Context, requestedBy, materialID, movType, status string) (decimal.Decimal, error)
	// SumByMaterial igual que SumQuantity agrupado por material_id.
	SumByMaterial(ctx context.Context, requestedBy, movType, status string) (map[string]decimal.Decimal, error)
	LastDate(ctx context.Context) (*time.Time, error)
	// DeleteRejectedByRequester borra los movimientos rechazados del solicitante y devuelve las filas afectadas.
	DeleteRejectedByRequester(ctx context.Context, requestedBy string) (int64, error)
}
