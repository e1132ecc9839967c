package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/civistock/civistock-api/internal/application/dto"
	"github.com/civistock/civistock-api/internal/domain"
	"github.com/civistock/civistock-api/internal/domain/entity"
	"github.com/civistock/civistock-api/internal/domain/inventory"
)

// Decisiones sobre una devolución pendiente.
const (
	DecisionAccept = "aceptar"
	DecisionReject = "rechazar"
)

// AuthorizeWithdrawal SOLICITUD/PENDIENTE -> SALIDA/AUTORIZADO con descuento de stock.
func (uc *LifecycleUseCase) AuthorizeWithdrawal(ctx context.Context, actor entity.Actor, movementID string, in dto.ReviewRequest) (*dto.MovementResponse, error) {
	mov, mat, err := uc.transition(ctx, actor, movementID, entity.ActionAuthorizeWithdrawal,
		func(m *entity.Movement, mat *entity.Material, now time.Time) (decimal.Decimal, error) {
			delta, err := inventory.AuthorizeWithdrawal(m, mat, actor.UserID, in.Note, now)
			if err != nil {
				return decimal.Zero, err
			}
			attachEvidence(m, in.Evidence)
			return delta, nil
		})
	if err != nil {
		return nil, err
	}
	return uc.finish(ctx, entity.ActionAuthorizeWithdrawal, mov, mat), nil
}

// RejectWithdrawal SOLICITUD/PENDIENTE -> SALIDA/RECHAZADO.
func (uc *LifecycleUseCase) RejectWithdrawal(ctx context.Context, actor entity.Actor, movementID string, in dto.ReviewRequest) (*dto.MovementResponse, error) {
	mov, mat, err := uc.transition(ctx, actor, movementID, entity.ActionRejectWithdrawal,
		func(m *entity.Movement, _ *entity.Material, now time.Time) (decimal.Decimal, error) {
			if err := inventory.RejectWithdrawal(m, actor.UserID, in.Note, now); err != nil {
				return decimal.Zero, err
			}
			attachEvidence(m, in.Evidence)
			return decimal.Zero, nil
		})
	if err != nil {
		return nil, err
	}
	return uc.finish(ctx, entity.ActionRejectWithdrawal, mov, mat), nil
}

// AcceptReturn DEVOLUCION/PENDIENTE -> DEVOLUCION/AUTORIZADO (cantidad pasa a en_devolucion).
func (uc *LifecycleUseCase) AcceptReturn(ctx context.Context, actor entity.Actor, movementID string, in dto.ReviewRequest) (*dto.MovementResponse, error) {
	mov, mat, err := uc.transition(ctx, actor, movementID, entity.ActionAcceptReturn,
		func(m *entity.Movement, mat *entity.Material, now time.Time) (decimal.Decimal, error) {
			if err := inventory.AcceptReturn(m, mat, actor.UserID, in.Note, now); err != nil {
				return decimal.Zero, err
			}
			attachEvidence(m, in.Evidence)
			return decimal.Zero, nil
		})
	if err != nil {
		return nil, err
	}
	return uc.finish(ctx, entity.ActionAcceptReturn, mov, mat), nil
}

// RejectReturn DEVOLUCION/PENDIENTE -> DEVOLUCION/RECHAZADO. Requiere observación.
func (uc *LifecycleUseCase) RejectReturn(ctx context.Context, actor entity.Actor, movementID string, in dto.ReviewRequest) (*dto.MovementResponse, error) {
	mov, mat, err := uc.transition(ctx, actor, movementID, entity.ActionRejectReturn,
		func(m *entity.Movement, _ *entity.Material, now time.Time) (decimal.Decimal, error) {
			if err := inventory.RejectReturn(m, actor.UserID, in.Note, now); err != nil {
				return decimal.Zero, err
			}
			attachEvidence(m, in.Evidence)
			return decimal.Zero, nil
		})
	if err != nil {
		return nil, err
	}
	return uc.finish(ctx, entity.ActionRejectReturn, mov, mat), nil
}

// ReviewReturn despacha la decisión del almacenista ("aceptar" | "rechazar").
func (uc *LifecycleUseCase) ReviewReturn(ctx context.Context, actor entity.Actor, movementID string, in dto.ReturnDecisionRequest) (*dto.MovementResponse, error) {
	review := dto.ReviewRequest{Note: in.Note, Evidence: in.Evidence}
	switch strings.ToLower(strings.TrimSpace(in.Decision)) {
	case DecisionAccept:
		return uc.AcceptReturn(ctx, actor, movementID, review)
	case DecisionReject:
		return uc.RejectReturn(ctx, actor, movementID, review)
	}
	return nil, domain.ErrInvalidInput
}

// Dispose aplica una disposición a una devolución autorizada: RETORNAR_A_STOCK,
// ENVIAR_A_FERRETERIA, DESCARTAR, APROBAR_FERRETERIA o RECHAZAR_FERRETERIA.
func (uc *LifecycleUseCase) Dispose(ctx context.Context, actor entity.Actor, movementID, action string) (*dto.MovementResponse, error) {
	if !inventory.IsDisposition(action) {
		return nil, domain.ErrInvalidInput
	}
	mov, mat, err := uc.transition(ctx, actor, movementID, action,
		func(m *entity.Movement, mat *entity.Material, now time.Time) (decimal.Decimal, error) {
			return inventory.Dispose(m, mat, action, actor.UserID, now)
		})
	if err != nil {
		return nil, err
	}
	return uc.finish(ctx, action, mov, mat), nil
}

// attachEvidence guarda la referencia del almacenista; vacía conserva la anterior.
func attachEvidence(m *entity.Movement, ref string) {
	if ref = strings.TrimSpace(ref); ref != "" {
		m.ReviewerEvidence = ref
	}
}

// finish avisa al solicitante y arma la respuesta.
func (uc *LifecycleUseCase) finish(ctx context.Context, action string, mov *entity.Movement, mat *entity.Material) *dto.MovementResponse {
	note := ""
	if action == entity.ActionRejectReturn || action == entity.ActionRejectWithdrawal {
		note = mov.ReviewerNote
	}
	uc.notify(ctx, Target{UserID: mov.RequestedBy}, action, mov, mat, "", note)
	return uc.response(mov, mat, uc.requesterName(ctx, mov.RequestedBy))
}
