package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/civistock/civistock-api/internal/application/dto"
	"github.com/civistock/civistock-api/internal/application/inventory"
	"github.com/civistock/civistock-api/internal/domain"
	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/domain/repository"
	"github.com/civistock/civistock-api/pkg/logger"
	"github.com/civistock/civistock-api/pkg/timefmt"
)

// PanelSize movimientos en el panel del ingeniero.
const PanelSize = 5

// MovementQueryUseCase listados y reportes de movimientos (solo lectura, salvo borrar historial).
type MovementQueryUseCase struct {
	movementRepo repository.MovementRepository
	materialRepo repository.MaterialRepository
	eventRepo    repository.MovementEventRepository
	log          *logger.Logger
	loc          *time.Location
	now          func() time.Time
}

// NewMovementQueryUseCase construye el caso de uso.
func NewMovementQueryUseCase(
	movementRepo repository.MovementRepository,
	materialRepo repository.MaterialRepository,
	eventRepo repository.MovementEventRepository,
	log *logger.Logger,
	loc *time.Location,
) *MovementQueryUseCase {
	return &MovementQueryUseCase{
		movementRepo: movementRepo,
		materialRepo: materialRepo,
		eventRepo:    eventRepo,
		log:          log.Component("movement_query"),
		loc:          loc,
		now:          time.Now,
	}
}

// ── Ingeniero ────────────────────────────────────────────────────────────────

// History movimientos propios sobre materiales activos, más nuevos primero.
func (uc *MovementQueryUseCase) History(ctx context.Context, actor entity.Actor) ([]dto.MovementResponse, error) {
	return uc.list(ctx, repository.MovementFilter{RequestedBy: actor.UserID, ActiveMaterialOnly: true})
}

// Panel últimos movimientos propios.
func (uc *MovementQueryUseCase) Panel(ctx context.Context, actor entity.Actor) (*dto.EngineerPanelDTO, error) {
	recent, err := uc.list(ctx, repository.MovementFilter{RequestedBy: actor.UserID, Limit: PanelSize})
	if err != nil {
		return nil, err
	}
	return &dto.EngineerPanelDTO{Recent: recent}, nil
}

// Returns devoluciones propias en cualquier estado.
func (uc *MovementQueryUseCase) Returns(ctx context.Context, actor entity.Actor) ([]dto.MovementResponse, error) {
	return uc.list(ctx, repository.MovementFilter{
		RequestedBy: actor.UserID,
		Types:       []string{entity.MovementTypeDevolucion},
	})
}

// EngineerReport retiros aprobados, rechazados y devoluciones propias.
func (uc *MovementQueryUseCase) EngineerReport(ctx context.Context, actor entity.Actor) (*dto.EngineerReportDTO, error) {
	approved, rejected, returns, err := uc.report(ctx, repository.MovementFilter{RequestedBy: actor.UserID})
	if err != nil {
		return nil, err
	}
	return &dto.EngineerReportDTO{Approved: approved, Rejected: rejected, Returns: returns}, nil
}

// ClearHistory borra los movimientos rechazados del ingeniero. Lo pendiente y lo autorizado
// se conservan.
func (uc *MovementQueryUseCase) ClearHistory(ctx context.Context, actor entity.Actor) (*dto.ClearHistoryResponse, error) {
	if !actor.Is(entity.RoleIngeniero) {
		return nil, domain.ErrForbidden
	}
	n, err := uc.movementRepo.DeleteRejectedByRequester(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("actor_id", actor.UserID).Int64("eliminados", n).Msg("historial borrado")
	return &dto.ClearHistoryResponse{Deleted: n}, nil
}

// ── Almacenista ──────────────────────────────────────────────────────────────

// PendingWithdrawals solicitudes de retiro por resolver.
func (uc *MovementQueryUseCase) PendingWithdrawals(ctx context.Context) ([]dto.MovementResponse, error) {
	return uc.list(ctx, repository.MovementFilter{
		Types:    []string{entity.MovementTypeSolicitud},
		Statuses: []string{entity.StatusPendiente},
	})
}

// PendingReturns devoluciones por aceptar o rechazar.
func (uc *MovementQueryUseCase) PendingReturns(ctx context.Context) ([]dto.MovementResponse, error) {
	return uc.list(ctx, repository.MovementFilter{
		Types:    []string{entity.MovementTypeDevolucion},
		Statuses: []string{entity.StatusPendiente},
	})
}

// StockBuckets materiales activos y devoluciones autorizadas agrupadas por sub-estado.
func (uc *MovementQueryUseCase) StockBuckets(ctx context.Context) (*dto.StockBucketsDTO, error) {
	materials, err := uc.materialRepo.List(ctx, "", true)
	if err != nil {
		return nil, err
	}
	out := &dto.StockBucketsDTO{Materials: make([]dto.MaterialResponse, 0, len(materials))}
	for _, m := range materials {
		out.Materials = append(out.Materials, *toMaterialResponse(m))
	}

	returns, err := uc.movementRepo.ListDetails(ctx, repository.MovementFilter{
		Types:    []string{entity.MovementTypeDevolucion},
		Statuses: []string{entity.StatusAutorizado},
	})
	if err != nil {
		return nil, err
	}
	out.AwaitingDecision = []dto.MovementResponse{}
	out.InShopReview = []dto.MovementResponse{}
	out.RejectedDiscarded = []dto.MovementResponse{}
	out.ApprovedByShop = []dto.MovementResponse{}
	for _, d := range returns {
		r := inventory.ToMovementResponse(d, uc.loc)
		switch d.SubState {
		case entity.SubStateNone:
			if d.Active && d.VisibleInStock {
				out.AwaitingDecision = append(out.AwaitingDecision, r)
			}
		case entity.SubStateInReview:
			out.InShopReview = append(out.InShopReview, r)
		case entity.SubStateRejectedByShop, entity.SubStateDiscarded:
			out.RejectedDiscarded = append(out.RejectedDiscarded, r)
		case entity.SubStateApprovedByShop:
			out.ApprovedByShop = append(out.ApprovedByShop, r)
		}
	}
	return out, nil
}

// MonthlyReport retiros aprobados, rechazados y devoluciones del mes en curso (hora local).
func (uc *MovementQueryUseCase) MonthlyReport(ctx context.Context) (*dto.KeeperReportDTO, error) {
	from, to := timefmt.MonthRange(uc.now(), uc.loc)
	approved, rejected, returns, err := uc.report(ctx, repository.MovementFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	return &dto.KeeperReportDTO{
		Month:    fmt.Sprintf("%04d-%02d", from.Year(), int(from.Month())),
		Approved: approved,
		Rejected: rejected,
		Returns:  returns,
	}, nil
}

// Events historial de transiciones. El ingeniero solo ve las de sus movimientos.
func (uc *MovementQueryUseCase) Events(ctx context.Context, actor entity.Actor, movementID string) ([]dto.MovementEventResponse, error) {
	if _, err := uuid.Parse(movementID); err != nil {
		return nil, domain.ErrNotFound
	}
	m, err := uc.movementRepo.GetByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	if !actor.Is(entity.RoleAlmacenista) && m.RequestedBy != actor.UserID {
		return nil, domain.ErrForbidden
	}
	events, err := uc.eventRepo.ListByMovement(ctx, movementID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, dto.MovementEventResponse{
			ID:         e.ID,
			Action:     e.Action,
			Type:       e.Type,
			Status:     e.Status,
			SubState:   string(e.SubState),
			ActorID:    e.ActorID,
			Note:       e.Note,
			StockDelta: e.StockDelta,
			Date:       e.CreatedAt,
			Local:      timefmt.Format(e.CreatedAt, uc.loc),
		})
	}
	return out, nil
}

// report divide en aprobados, rechazados (sin devoluciones) y devoluciones.
func (uc *MovementQueryUseCase) report(ctx context.Context, base repository.MovementFilter) (approved, rejected, returns []dto.MovementResponse, err error) {
	f := base
	f.Types = []string{entity.MovementTypeSalida}
	f.Statuses = []string{entity.StatusAutorizado}
	if approved, err = uc.list(ctx, f); err != nil {
		return nil, nil, nil, err
	}
	f.Statuses = []string{entity.StatusRechazado}
	if rejected, err = uc.list(ctx, f); err != nil {
		return nil, nil, nil, err
	}
	f = base
	f.Types = []string{entity.MovementTypeDevolucion}
	if returns, err = uc.list(ctx, f); err != nil {
		return nil, nil, nil, err
	}
	return approved, rejected, returns, nil
}

func (uc *MovementQueryUseCase) list(ctx context.Context, f repository.MovementFilter) ([]dto.MovementResponse, error) {
	details, err := uc.movementRepo.ListDetails(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(details))
	for _, d := range details {
		out = append(out, inventory.ToMovementResponse(d, uc.loc))
	}
	return out, nil
}
