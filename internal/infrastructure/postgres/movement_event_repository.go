package postgres

import (
	"context"
	"fmt"

	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/domain/repository"
)

var _ repository.MovementEventRepository = (*MovementEventRepo)(nil)

// MovementEventRepo historial de transiciones (solo INSERT y SELECT).
type MovementEventRepo struct {
	q Querier
}

// NewMovementEventRepository construye el adaptador del historial. Pasar pool o tx (Querier).
func NewMovementEventRepository(q Querier) *MovementEventRepo {
	return &MovementEventRepo{q: q}
}

// Create agrega un evento.
func (r *MovementEventRepo) Create(ctx context.Context, e *entity.MovementEvent) error {
	query := `
		INSERT INTO movimiento_eventos (id, movimiento_id, accion, tipo, estado, subestado, actor_id, observacion, stock_delta, fecha)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.MovementID, e.Action, e.Type, e.Status, string(e.SubState), e.ActorID,
		nullIfEmpty(e.Note), e.StockDelta, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert evento: %w", err)
	}
	return nil
}

// ListByMovement eventos de un movimiento en orden cronológico.
func (r *MovementEventRepo) ListByMovement(ctx context.Context, movementID string) ([]*entity.MovementEvent, error) {
	query := `
		SELECT id, movimiento_id, accion, tipo, estado, subestado, actor_id, observacion, stock_delta, fecha
		FROM movimiento_eventos WHERE movimiento_id = $1 ORDER BY fecha, id`
	rows, err := r.q.Query(ctx, query, movementID)
	if err != nil {
		return nil, fmt.Errorf("list eventos: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementEvent
	for rows.Next() {
		var e entity.MovementEvent
		if err := rows.Scan(
			&e.ID, &e.MovementID, &e.Action, &e.Type, &e.Status, &e.SubState, &e.ActorID,
			(*nullString)(&e.Note), &e.StockDelta, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan evento: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
