// Package notify entrega los avisos del ciclo de vida: los persiste por destinatario
// y los publica en Redis para clientes conectados en vivo.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/civistock/civistock-api/internal/application/inventory"
	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/domain/repository"
	"github.com/civistock/civistock-api/pkg/logger"
)

var _ inventory.Notifier = (*Notifier)(nil)

// Publisher canal de difusión en vivo.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Event mensaje publicado por cada notificación creada.
type Event struct {
	ID      string    `json:"id"`
	UserID  string    `json:"usuario_id"`
	Message string    `json:"mensaje"`
	Level   string    `json:"nivel"`
	Date    time.Time `json:"fecha"`
}

// Notifier resuelve el destinatario (usuario o rol), guarda una notificación por usuario
// y la publica. publisher nil = solo persistir.
type Notifier struct {
	users         repository.UserRepository
	notifications repository.NotificationRepository
	publisher     Publisher
	channel       string
	log           *logger.Logger
	now           func() time.Time
}

// NewNotifier construye el notificador.
func NewNotifier(
	users repository.UserRepository,
	notifications repository.NotificationRepository,
	publisher Publisher,
	channel string,
	log *logger.Logger,
) *Notifier {
	return &Notifier{
		users:         users,
		notifications: notifications,
		publisher:     publisher,
		channel:       channel,
		log:           log.Component("notifier"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Notify persiste para cada destinatario. Un fallo al publicar solo se registra;
// un fallo al persistir se devuelve.
func (n *Notifier) Notify(ctx context.Context, target inventory.Target, message, level string) error {
	recipients, err := n.recipients(ctx, target)
	if err != nil {
		return err
	}
	if len(message) == 0 {
		return fmt.Errorf("notify: mensaje vacío")
	}
	if level == "" {
		level = entity.NotificationInfo
	}

	for _, userID := range recipients {
		note := &entity.Notification{
			ID:        uuid.New().String(),
			UserID:    userID,
			Message:   message,
			Level:     level,
			CreatedAt: n.now(),
		}
		if err := n.notifications.Create(ctx, note); err != nil {
			return fmt.Errorf("notify: guardar para %s: %w", userID, err)
		}
		n.publish(ctx, note)
	}
	return nil
}

func (n *Notifier) recipients(ctx context.Context, target inventory.Target) ([]string, error) {
	if target.UserID != "" {
		return []string{target.UserID}, nil
	}
	if target.Role == "" {
		return nil, fmt.Errorf("notify: destinatario vacío")
	}
	users, err := n.users.ListByRole(ctx, target.Role)
	if err != nil {
		return nil, fmt.Errorf("notify: usuarios con rol %s: %w", target.Role, err)
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func (n *Notifier) publish(ctx context.Context, note *entity.Notification) {
	if n.publisher == nil {
		return
	}
	payload, err := json.Marshal(Event{
		ID:      note.ID,
		UserID:  note.UserID,
		Message: note.Message,
		Level:   note.Level,
		Date:    note.CreatedAt,
	})
	if err != nil {
		n.log.Warn().Err(err).Msg("no se pudo serializar la notificación")
		return
	}
	if err := n.publisher.Publish(ctx, n.channel, payload); err != nil {
		n.log.Warn().Err(err).Str("canal", n.channel).Str("usuario_id", note.UserID).Msg("no se pudo publicar la notificación")
	}
}
