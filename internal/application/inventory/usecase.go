package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/civistock/civistock-api/internal/application/dto"
	"github.com/civistock/civistock-api/internal/domain"
	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/domain/repository"
	"github.com/civistock/civistock-api/pkg/logger"
	"github.com/civistock/civistock-api/pkg/timefmt"
)

// LifecycleUseCase ejecuta las transiciones de movimientos: cada una en su propia transacción
// (bloqueo de movimiento y material, guarda, efecto, evento) y notifica después del commit.
type LifecycleUseCase struct {
	txRunner     TxRunner
	materialRepo repository.MaterialRepository
	movementRepo repository.MovementRepository
	userRepo     repository.UserRepository
	notifier     Notifier
	recorder     Recorder
	log          *logger.Logger
	loc          *time.Location
	now          func() time.Time
}

// Option configura dependencias opcionales del caso de uso.
type Option func(*LifecycleUseCase)

// WithRecorder métricas de transiciones.
func WithRecorder(r Recorder) Option {
	return func(uc *LifecycleUseCase) {
		if r != nil {
			uc.recorder = r
		}
	}
}

// WithClock reloj inyectable.
func WithClock(now func() time.Time) Option {
	return func(uc *LifecycleUseCase) { uc.now = now }
}

// WithLocation zona para fecha_local en las respuestas.
func WithLocation(loc *time.Location) Option {
	return func(uc *LifecycleUseCase) { uc.loc = loc }
}

// NewLifecycleUseCase construye el caso de uso.
func NewLifecycleUseCase(
	txRunner TxRunner,
	materialRepo repository.MaterialRepository,
	movementRepo repository.MovementRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	log *logger.Logger,
	opts ...Option,
) *LifecycleUseCase {
	uc := &LifecycleUseCase{
		txRunner:     txRunner,
		materialRepo: materialRepo,
		movementRepo: movementRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		recorder:     nopRecorder{},
		log:          log.Component("lifecycle"),
		loc:          timefmt.Location(""),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// activeMaterial valida existencia y estado activo fuera de la tx (creaciones).
func (uc *LifecycleUseCase) activeMaterial(ctx context.Context, id string) (*entity.Material, error) {
	mat, err := uc.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mat == nil {
		return nil, domain.ErrNotFound
	}
	if !mat.Active {
		return nil, domain.ErrMaterialInactive
	}
	return mat, nil
}

// create persiste un movimiento nuevo con su evento inicial.
func (uc *LifecycleUseCase) create(ctx context.Context, actor entity.Actor, m *entity.Movement, action string) error {
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		_ repository.MaterialRepository,
		eventRepo repository.MovementEventRepository,
	) error {
		if err := movRepo.Create(ctx, m); err != nil {
			return err
		}
		return eventRepo.Create(ctx, newEvent(m, action, actor.UserID, m.Note, decimal.Zero, m.Date))
	})
	uc.record(action, err)
	return err
}

// transition bloquea movimiento y material, aplica fn y persiste todo en una sola tx.
func (uc *LifecycleUseCase) transition(
	ctx context.Context,
	actor entity.Actor,
	movementID, action string,
	fn func(m *entity.Movement, mat *entity.Material, now time.Time) (decimal.Decimal, error),
) (*entity.Movement, *entity.Material, error) {
	if !actor.Is(entity.RoleAlmacenista) {
		return nil, nil, domain.ErrForbidden
	}
	if _, err := uuid.Parse(movementID); err != nil {
		return nil, nil, domain.ErrNotFound
	}

	var (
		mov *entity.Movement
		mat *entity.Material
	)
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		materialRepo repository.MaterialRepository,
		eventRepo repository.MovementEventRepository,
	) error {
		m, err := movRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
		material, err := materialRepo.GetForUpdate(ctx, m.MaterialID)
		if err != nil {
			return err
		}
		if material == nil {
			return domain.ErrNotFound
		}

		stockBefore, inReturnBefore := material.Stock, material.InReturn
		now := uc.now()
		delta, err := fn(m, material, now)
		if err != nil {
			return err
		}
		if !material.Stock.Equal(stockBefore) || !material.InReturn.Equal(inReturnBefore) {
			if err := materialRepo.UpdateBalances(ctx, material); err != nil {
				return err
			}
		}
		if err := movRepo.Update(ctx, m); err != nil {
			return err
		}
		if err := eventRepo.Create(ctx, newEvent(m, action, actor.UserID, m.ReviewerNote, delta, now)); err != nil {
			return err
		}
		mov, mat = m, material
		return nil
	})
	uc.record(action, err)
	if err != nil {
		return nil, nil, err
	}

	uc.log.Info().
		Str("movimiento_id", mov.ID).
		Str("accion", action).
		Str("actor_id", actor.UserID).
		Str("estado", mov.Status).
		Str("subestado", string(mov.SubState)).
		Msg("transición aplicada")
	return mov, mat, nil
}

// notify envía el aviso después del commit. Un fallo solo se registra.
func (uc *LifecycleUseCase) notify(ctx context.Context, target Target, action string, mov *entity.Movement, mat *entity.Material, requesterName, note string) {
	if uc.notifier == nil {
		return
	}
	msg := notificationText(action, mat, mov.Quantity, requesterName, note)
	if err := uc.notifier.Notify(ctx, target, msg, notificationLevel(action)); err != nil {
		uc.log.Warn().Err(err).
			Str("movimiento_id", mov.ID).
			Str("accion", action).
			Msg("no se pudo enviar la notificación")
	}
}

func (uc *LifecycleUseCase) record(action string, err error) {
	switch {
	case err == nil:
		uc.recorder.Transition(action, "ok")
	case isRefusal(err):
		uc.recorder.Transition(action, "rechazada")
	default:
		uc.recorder.Transition(action, "error")
	}
}

// isRefusal errores de negocio o de guarda (no fallos de infraestructura).
func isRefusal(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidTransition, domain.ErrAlreadyProcessed, domain.ErrNoteRequired,
		domain.ErrInsufficientStock, domain.ErrNotFound, domain.ErrForbidden,
		domain.ErrInvalidInput, domain.ErrInvalidQuantity, domain.ErrMaterialInactive,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func newEvent(m *entity.Movement, action, actorID, note string, delta decimal.Decimal, now time.Time) *entity.MovementEvent {
	return &entity.MovementEvent{
		ID:         uuid.NewString(),
		MovementID: m.ID,
		Action:     action,
		Type:       m.Type,
		Status:     m.Status,
		SubState:   m.SubState,
		ActorID:    actorID,
		Note:       note,
		StockDelta: delta,
		CreatedAt:  now,
	}
}

func (uc *LifecycleUseCase) requesterName(ctx context.Context, userID string) string {
	u, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return ""
	}
	return u.Name
}

func (uc *LifecycleUseCase) response(m *entity.Movement, mat *entity.Material, requesterName string) *dto.MovementResponse {
	r := ToMovementResponse(&entity.MovementDetail{
		Movement:      *m,
		MaterialCode:  mat.Code,
		MaterialName:  mat.Name,
		MaterialUnit:  mat.Unit,
		RequesterName: requesterName,
	}, uc.loc)
	return &r
}

// ToMovementResponse convierte un detalle de movimiento a su DTO con fecha local.
func ToMovementResponse(d *entity.MovementDetail, loc *time.Location) dto.MovementResponse {
	r := dto.MovementResponse{
		ID:               d.ID,
		MaterialID:       d.MaterialID,
		MaterialCode:     d.MaterialCode,
		MaterialName:     d.MaterialName,
		Unit:             d.MaterialUnit,
		Type:             d.Type,
		Quantity:         d.Quantity,
		Status:           d.Status,
		SubState:         string(d.SubState),
		SubStateLabel:    d.SubState.Label(),
		VisibleInStock:   d.VisibleInStock,
		Active:           d.Active,
		Note:             d.Note,
		ReviewerNote:     d.ReviewerNote,
		Evidence:         d.Evidence,
		ReviewerEvidence: d.ReviewerEvidence,
		RequestedBy:      d.RequestedBy,
		RequesterName:    d.RequesterName,
		ProcessorName:    d.ProcessorName,
		Date:             d.Date,
		Local:            timefmt.Format(d.Date, loc),
	}
	if d.ProcessedBy != nil {
		r.ProcessedBy = *d.ProcessedBy
	}
	return r
}
