package repository

import (
	"context"

	"github.com/civistock/civistock-api/internal/domain/entity"
)

// MovementEventRepository historial append-only de transiciones.
type MovementEventRepository interface {
	Create(ctx context.Context, e *entity.MovementEvent) error
	ListByMovement(ctx context.Context, movementID string) ([]*entity.MovementEvent, error)
}
