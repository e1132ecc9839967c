package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento.
const (
	MovementTypeSolicitud  = "SOLICITUD"  // solicitud de retiro
	MovementTypeSalida     = "SALIDA"     // retiro resuelto
	MovementTypeDevolucion = "DEVOLUCION" // devolución
)

// Estados de movimiento.
const (
	StatusPendiente  = "PENDIENTE"
	StatusAutorizado = "AUTORIZADO"
	StatusRechazado  = "RECHAZADO"
)

// SubState sub-estado explícito de una devolución autorizada.
type SubState string

const (
	SubStateNone           SubState = "NINGUNO"
	SubStateInReview       SubState = "EN_REVISION_FERRETERIA"
	SubStateApprovedByShop SubState = "APROBADO_FERRETERIA"
	SubStateRejectedByShop SubState = "RECHAZADO_FERRETERIA"
	SubStateDiscarded      SubState = "DESCARTADO"
	SubStateReturnedStock  SubState = "RETORNADO_STOCK"
)

// Label texto legible del sub-estado tal como se muestra en la observación del almacenista.
func (s SubState) Label() string {
	switch s {
	case SubStateInReview:
		return "En revisión en ferretería"
	case SubStateApprovedByShop:
		return "Aprobado por ferretería"
	case SubStateRejectedByShop:
		return "Rechazado por ferretería"
	case SubStateDiscarded:
		return "Movido a materiales sin uso"
	case SubStateReturnedStock:
		return "Retornado a stock"
	}
	return ""
}

// Terminal indica si el sub-estado cierra el flujo de la devolución.
func (s SubState) Terminal() bool {
	switch s {
	case SubStateApprovedByShop, SubStateRejectedByShop, SubStateDiscarded, SubStateReturnedStock:
		return true
	}
	return false
}

// Movement es el registro transaccional: solicitud de retiro, retiro resuelto o devolución.
// Una SOLICITUD se reescribe en sitio como SALIDA al resolverse; el historial queda en MovementEvent.
type Movement struct {
	ID               string
	MaterialID       string
	Type             string
	Quantity         decimal.Decimal
	Status           string
	SubState         SubState
	VisibleInStock   bool // visible en la vista de existencias
	Active           bool // sigue en algún flujo de trabajo
	Note             string
	ReviewerNote     string
	Evidence         string
	ReviewerEvidence string
	RequestedBy      string  // ingeniero solicitante
	ProcessedBy      *string // almacenista que lo tocó por última vez
	Date             time.Time
	UpdatedAt        time.Time
}

// MovementDetail movimiento con datos del material y del solicitante para listados.
type MovementDetail struct {
	Movement
	MaterialCode  string
	MaterialName  string
	MaterialUnit  string
	RequesterName string
	ProcessorName string
}
