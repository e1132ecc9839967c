// Package inventory contiene la máquina de estados de los movimientos (servicio de dominio):
// guardas, efectos sobre el material y la etiqueta de estado en la observación del almacenista.
// No persiste nada; la capa de aplicación la ejecuta dentro de una transacción.
package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/civistock/civistock-api/internal/domain"
	"github.com/civistock/civistock-api/internal/domain/entity"
)

// StateTagMarker separa la nota libre del almacenista de la etiqueta de sub-estado.
const StateTagMarker = "| estado:"

// RewriteStateTag reemplaza la etiqueta vigente por una nueva conservando el prefijo libre.
// "revisado | estado: X" + "Y" -> "revisado | estado: Y".
func RewriteStateTag(note, label string) string {
	base := note
	if i := strings.Index(note, StateTagMarker); i >= 0 {
		base = note[:i]
	}
	base = strings.TrimSpace(base)
	if base == "" {
		return StateTagMarker + " " + label
	}
	return base + " " + StateTagMarker + " " + label
}

// NewWithdrawal crea una solicitud de retiro en SOLICITUD/PENDIENTE.
func NewWithdrawal(id, materialID, requesterID string, qty decimal.Decimal, note string, now time.Time) (*entity.Movement, error) {
	if err := CheckQuantity(qty); err != nil {
		return nil, err
	}
	return &entity.Movement{
		ID:             id,
		MaterialID:     materialID,
		Type:           entity.MovementTypeSolicitud,
		Quantity:       qty,
		Status:         entity.StatusPendiente,
		SubState:       entity.SubStateNone,
		VisibleInStock: true,
		Active:         true,
		Note:           strings.TrimSpace(note),
		RequestedBy:    requesterID,
		Date:           now,
		UpdatedAt:      now,
	}, nil
}

// NewReturn crea una devolución en DEVOLUCION/PENDIENTE. evidence es una referencia opaca.
func NewReturn(id, materialID, requesterID string, qty decimal.Decimal, note, evidence string, now time.Time) (*entity.Movement, error) {
	if err := CheckQuantity(qty); err != nil {
		return nil, err
	}
	return &entity.Movement{
		ID:             id,
		MaterialID:     materialID,
		Type:           entity.MovementTypeDevolucion,
		Quantity:       qty,
		Status:         entity.StatusPendiente,
		SubState:       entity.SubStateNone,
		VisibleInStock: true,
		Active:         true,
		Note:           strings.TrimSpace(note),
		Evidence:       evidence,
		RequestedBy:    requesterID,
		Date:           now,
		UpdatedAt:      now,
	}, nil
}

// AuthorizeWithdrawal SOLICITUD/PENDIENTE -> SALIDA/AUTORIZADO. Descuenta stock.
// Devuelve el delta aplicado a material.Stock.
func AuthorizeWithdrawal(m *entity.Movement, mat *entity.Material, actorID, note string, now time.Time) (decimal.Decimal, error) {
	if err := pendingWithdrawal(m); err != nil {
		return decimal.Zero, err
	}
	if mat.Stock.LessThan(m.Quantity) {
		return decimal.Zero, domain.ErrInsufficientStock
	}
	mat.Stock = mat.Stock.Sub(m.Quantity)
	mat.UpdatedAt = now

	m.Type = entity.MovementTypeSalida
	m.Status = entity.StatusAutorizado
	m.ReviewerNote = strings.TrimSpace(note)
	touch(m, actorID, now)
	return m.Quantity.Neg(), nil
}

// RejectWithdrawal SOLICITUD/PENDIENTE -> SALIDA/RECHAZADO. Sin cambio de stock.
func RejectWithdrawal(m *entity.Movement, actorID, note string, now time.Time) error {
	if err := pendingWithdrawal(m); err != nil {
		return err
	}
	m.Type = entity.MovementTypeSalida
	m.Status = entity.StatusRechazado
	m.Active = false
	m.ReviewerNote = strings.TrimSpace(note)
	touch(m, actorID, now)
	return nil
}

// AcceptReturn DEVOLUCION/PENDIENTE -> DEVOLUCION/AUTORIZADO sin etiqueta.
// La cantidad queda en material.InReturn hasta su disposición.
func AcceptReturn(m *entity.Movement, mat *entity.Material, actorID, note string, now time.Time) error {
	if err := pendingReturn(m); err != nil {
		return err
	}
	mat.InReturn = mat.InReturn.Add(m.Quantity)
	mat.UpdatedAt = now

	m.Status = entity.StatusAutorizado
	m.SubState = entity.SubStateNone
	m.VisibleInStock = true
	m.ReviewerNote = strings.TrimSpace(note)
	touch(m, actorID, now)
	return nil
}

// RejectReturn DEVOLUCION/PENDIENTE -> DEVOLUCION/RECHAZADO. Exige observación.
func RejectReturn(m *entity.Movement, actorID, note string, now time.Time) error {
	if err := pendingReturn(m); err != nil {
		return err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return domain.ErrNoteRequired
	}
	m.Status = entity.StatusRechazado
	m.Active = false
	m.ReviewerNote = note
	touch(m, actorID, now)
	return nil
}

type disposition struct {
	from    entity.SubState
	to      entity.SubState
	restock bool // suma la cantidad a material.Stock
	closes  bool // activo = false
}

var dispositions = map[string]disposition{
	entity.ActionReturnToStock: {from: entity.SubStateNone, to: entity.SubStateReturnedStock, restock: true, closes: true},
	entity.ActionSendToShop:    {from: entity.SubStateNone, to: entity.SubStateInReview},
	entity.ActionDiscard:       {from: entity.SubStateNone, to: entity.SubStateDiscarded, closes: true},
	entity.ActionApproveByShop: {from: entity.SubStateInReview, to: entity.SubStateApprovedByShop, restock: true, closes: true},
	entity.ActionRejectByShop:  {from: entity.SubStateInReview, to: entity.SubStateRejectedByShop, closes: true},
}

// IsDisposition indica si la acción pertenece a la revisión de existencias.
func IsDisposition(action string) bool {
	_, ok := dispositions[action]
	return ok
}

// Dispose aplica una disposición a una devolución autorizada (retornar a stock, enviar a
// ferretería, descartar, aprobar o rechazar en ferretería). Devuelve el delta de stock.
func Dispose(m *entity.Movement, mat *entity.Material, action, actorID string, now time.Time) (decimal.Decimal, error) {
	d, ok := dispositions[action]
	if !ok {
		return decimal.Zero, domain.ErrInvalidInput
	}
	if m.Type != entity.MovementTypeDevolucion || m.Status != entity.StatusAutorizado ||
		m.SubState != d.from || !m.Active {
		return decimal.Zero, domain.ErrInvalidTransition
	}

	delta := decimal.Zero
	if d.restock {
		mat.Stock = mat.Stock.Add(m.Quantity)
		delta = m.Quantity
	}
	if d.to.Terminal() {
		mat.InReturn = mat.InReturn.Sub(m.Quantity)
		if mat.InReturn.LessThan(decimal.Zero) {
			mat.InReturn = decimal.Zero
		}
	}
	mat.UpdatedAt = now

	m.SubState = d.to
	m.ReviewerNote = RewriteStateTag(m.ReviewerNote, d.to.Label())
	m.VisibleInStock = false
	if d.closes {
		m.Active = false
	}
	touch(m, actorID, now)
	return delta, nil
}

func pendingWithdrawal(m *entity.Movement) error {
	if m.Type == entity.MovementTypeSalida && m.Status != entity.StatusPendiente {
		return domain.ErrAlreadyProcessed
	}
	if m.Type != entity.MovementTypeSolicitud {
		return domain.ErrInvalidTransition
	}
	if m.Status != entity.StatusPendiente {
		return domain.ErrAlreadyProcessed
	}
	return nil
}

func pendingReturn(m *entity.Movement) error {
	if m.Type != entity.MovementTypeDevolucion {
		return domain.ErrInvalidTransition
	}
	if m.Status != entity.StatusPendiente {
		return domain.ErrAlreadyProcessed
	}
	return nil
}

func touch(m *entity.Movement, actorID string, now time.Time) {
	if actorID != "" {
		id := actorID
		m.ProcessedBy = &id
	}
	m.UpdatedAt = now
}
