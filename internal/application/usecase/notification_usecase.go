package usecase

import (
	"context"
	"time"

	"github.com/civistock/civistock-api/internal/application/dto"
	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/domain/repository"
	"github.com/civistock/civistock-api/pkg/timefmt"
)

// RecentNotifications cantidad que muestra la campana.
const RecentNotifications = 10

// NotificationUseCase avisos del usuario autenticado.
type NotificationUseCase struct {
	repo repository.NotificationRepository
	loc  *time.Location
}

// NewNotificationUseCase construye el caso de uso.
func NewNotificationUseCase(repo repository.NotificationRepository, loc *time.Location) *NotificationUseCase {
	return &NotificationUseCase{repo: repo, loc: loc}
}

// Recent últimas no leídas, más nuevas primero.
func (uc *NotificationUseCase) Recent(ctx context.Context, actor entity.Actor) ([]dto.NotificationResponse, error) {
	list, err := uc.repo.ListRecentUnread(ctx, actor.UserID, RecentNotifications)
	if err != nil {
		return nil, err
	}
	out := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, dto.NotificationResponse{
			ID:      n.ID,
			Message: n.Message,
			Level:   n.Level,
			Read:    n.Read,
			Date:    n.CreatedAt,
			Local:   timefmt.Format(n.CreatedAt, uc.loc),
		})
	}
	return out, nil
}

// MarkAllRead marca como leídas todas las del usuario.
func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, actor entity.Actor) error {
	return uc.repo.MarkAllRead(ctx, actor.UserID)
}

// Clear borra todas las del usuario.
func (uc *NotificationUseCase) Clear(ctx context.Context, actor entity.Actor) error {
	return uc.repo.DeleteAll(ctx, actor.UserID)
}
