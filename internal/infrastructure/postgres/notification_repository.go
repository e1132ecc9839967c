package postgres

import (
	"context"
	"fmt"

	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo implementación de NotificationRepository sobre PostgreSQL.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador de notificaciones.
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// Create inserta una notificación.
func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO notificaciones (id, usuario_id, mensaje, nivel, leida, fecha)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.UserID, n.Message, n.Level, n.Read, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notificación: %w", err)
	}
	return nil
}

// ListRecentUnread últimas no leídas del usuario.
func (r *NotificationRepo) ListRecentUnread(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, usuario_id, mensaje, nivel, leida, fecha
		FROM notificaciones WHERE usuario_id = $1 AND leida = FALSE
		ORDER BY fecha DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notificaciones: %w", err)
	}
	defer rows.Close()
	var list []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Level, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notificación: %w", err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

// MarkAllRead marca como leídas todas las del usuario.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	if _, err := r.q.Exec(ctx, `UPDATE notificaciones SET leida = TRUE WHERE usuario_id = $1 AND leida = FALSE`, userID); err != nil {
		return fmt.Errorf("marcar leídas: %w", err)
	}
	return nil
}

// DeleteAll elimina todas las notificaciones del usuario.
func (r *NotificationRepo) DeleteAll(ctx context.Context, userID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM notificaciones WHERE usuario_id = $1`, userID); err != nil {
		return fmt.Errorf("vaciar notificaciones: %w", err)
	}
	return nil
}
