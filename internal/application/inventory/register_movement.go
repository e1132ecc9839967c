package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/civistock/civistock-api/internal/application/dto"
	"github.com/civistock/civistock-api/internal/domain"
	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/domain/inventory"
)

// CreateWithdrawal registra una solicitud de retiro (SOLICITUD/PENDIENTE) y avisa a los almacenistas.
func (uc *LifecycleUseCase) CreateWithdrawal(ctx context.Context, actor entity.Actor, in dto.CreateWithdrawalRequest) (*dto.MovementResponse, error) {
	if !actor.Is(entity.RoleIngeniero) {
		return nil, domain.ErrForbidden
	}
	mat, err := uc.activeMaterial(ctx, in.MaterialID)
	if err != nil {
		return nil, err
	}
	m, err := inventory.NewWithdrawal(uuid.NewString(), mat.ID, actor.UserID, in.Quantity, in.Note, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.create(ctx, actor, m, entity.ActionCreateWithdrawal); err != nil {
		return nil, err
	}

	name := uc.requesterName(ctx, actor.UserID)
	uc.log.Info().Str("movimiento_id", m.ID).Str("material_id", mat.ID).Str("actor_id", actor.UserID).Msg("solicitud de retiro registrada")
	uc.notify(ctx, Target{Role: entity.RoleAlmacenista}, entity.ActionCreateWithdrawal, m, mat, name, m.Note)
	return uc.response(m, mat, name), nil
}

// CreateReturn registra una devolución (DEVOLUCION/PENDIENTE). La comparación contra lo
// retirado solo produce una advertencia; el movimiento se guarda igual.
func (uc *LifecycleUseCase) CreateReturn(ctx context.Context, actor entity.Actor, in dto.CreateReturnRequest) (*dto.CreateReturnResponse, error) {
	if !actor.Is(entity.RoleIngeniero) {
		return nil, domain.ErrForbidden
	}
	if err := inventory.CheckQuantity(in.Quantity); err != nil {
		return nil, err
	}
	mat, err := uc.activeMaterial(ctx, in.MaterialID)
	if err != nil {
		return nil, err
	}

	totals, err := uc.returnTotals(ctx, actor.UserID, mat.ID)
	if err != nil {
		return nil, err
	}
	warning := inventory.AssessReturn(totals, in.Quantity, in.Note)

	m, err := inventory.NewReturn(uuid.NewString(), mat.ID, actor.UserID, in.Quantity, in.Note, in.Evidence, uc.now())
	if err != nil {
		return nil, err
	}
	if err := uc.create(ctx, actor, m, entity.ActionCreateReturn); err != nil {
		return nil, err
	}

	name := uc.requesterName(ctx, actor.UserID)
	ev := uc.log.Info().Str("movimiento_id", m.ID).Str("material_id", mat.ID).Str("actor_id", actor.UserID)
	if warning != nil {
		ev = ev.Str("advertencia", warning.Code)
	}
	ev.Msg("devolución registrada")
	uc.notify(ctx, Target{Role: entity.RoleAlmacenista}, entity.ActionCreateReturn, m, mat, name, m.Note)

	out := &dto.CreateReturnResponse{Movement: *uc.response(m, mat, name)}
	if warning != nil {
		out.Warning = &dto.ReturnWarningDTO{
			Code:      warning.Code,
			Message:   warningMessage(warning),
			Available: warning.Available,
		}
	}
	return out, nil
}

// ReturnAllowance por cada material activo: lo retirado y lo que aún se puede devolver.
func (uc *LifecycleUseCase) ReturnAllowance(ctx context.Context, actor entity.Actor) ([]dto.ReturnAllowanceDTO, error) {
	if !actor.Is(entity.RoleIngeniero) {
		return nil, domain.ErrForbidden
	}
	materials, err := uc.materialRepo.List(ctx, "", true)
	if err != nil {
		return nil, err
	}
	withdrawn, err := uc.movementRepo.SumByMaterial(ctx, actor.UserID, entity.MovementTypeSalida, entity.StatusAutorizado)
	if err != nil {
		return nil, err
	}
	returned, err := uc.movementRepo.SumByMaterial(ctx, actor.UserID, entity.MovementTypeDevolucion, entity.StatusAutorizado)
	if err != nil {
		return nil, err
	}
	pending, err := uc.movementRepo.SumByMaterial(ctx, actor.UserID, entity.MovementTypeDevolucion, entity.StatusPendiente)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ReturnAllowanceDTO, 0, len(materials))
	for _, mat := range materials {
		t := inventory.ReturnTotals{Withdrawn: withdrawn[mat.ID], Returned: returned[mat.ID], Pending: pending[mat.ID]}
		out = append(out, dto.ReturnAllowanceDTO{
			MaterialID:   mat.ID,
			Code:         mat.Code,
			Name:         mat.Name,
			Unit:         mat.Unit,
			Withdrawn:    t.Withdrawn,
			Returned:     t.Returned,
			Pending:      t.Pending,
			MaxReturnQty: t.Allowance(),
		})
	}
	return out, nil
}

func (uc *LifecycleUseCase) returnTotals(ctx context.Context, requesterID, materialID string) (inventory.ReturnTotals, error) {
	var (
		t   inventory.ReturnTotals
		err error
	)
	if t.Withdrawn, err = uc.movementRepo.SumQuantity(ctx, requesterID, materialID, entity.MovementTypeSalida, entity.StatusAutorizado); err != nil {
		return t, err
	}
	if t.Returned, err = uc.movementRepo.SumQuantity(ctx, requesterID, materialID, entity.MovementTypeDevolucion, entity.StatusAutorizado); err != nil {
		return t, err
	}
	if t.Pending, err = uc.movementRepo.SumQuantity(ctx, requesterID, materialID, entity.MovementTypeDevolucion, entity.StatusPendiente); err != nil {
		return t, err
	}
	return t, nil
}

func warningMessage(w *inventory.ReturnWarning) string {
	switch w.Code {
	case inventory.WarningNoWithdrawal:
		return "No has retirado este material, la devolución será evaluada por el almacenista."
	case inventory.WarningOverReturnUnjustified:
		return fmt.Sprintf("Estás devolviendo más de lo permitido (%s). Debes justificarlo en la observación.", w.Available.String())
	case inventory.WarningOverReturnJustified:
		return fmt.Sprintf("Estás devolviendo más de lo disponible (%s). Tu solicitud fue registrada y será revisada.", w.Available.String())
	}
	return ""
}
