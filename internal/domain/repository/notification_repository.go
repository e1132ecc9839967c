package repository

import (
	"context"

	"github.com/civistock/civistock-api/internal/domain/entity"
)

// NotificationRepository define el puerto de persistencia para Notification.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListRecentUnread(ctx context.Context, userID string, limit int) ([]*entity.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	DeleteAll(ctx context.Context, userID string) error
}
