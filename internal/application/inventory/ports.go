package inventory

import (
	"context"

	"github.com/civistock/civistock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad de cada transición del ciclo de vida.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		materialRepo repository.MaterialRepository,
		eventRepo repository.MovementEventRepository,
	) error) error
}

// Target destinatario de una notificación: un usuario concreto o todos los de un rol.
type Target struct {
	Role   string
	UserID string
}

// Notifier canal lateral de avisos. Se invoca después del commit; su error no revierte nada.
type Notifier interface {
	Notify(ctx context.Context, target Target, message, level string) error
}

// Recorder métricas de transiciones (outcome: ok | rechazada | error).
type Recorder interface {
	Transition(action, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) Transition(string, string) {}
