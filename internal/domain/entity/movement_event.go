package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Acciones registradas en el historial de un movimiento.
const (
	ActionCreateWithdrawal    = "CREAR_SOLICITUD"
	ActionAuthorizeWithdrawal = "AUTORIZAR_RETIRO"
	ActionRejectWithdrawal    = "RECHAZAR_RETIRO"
	ActionCreateReturn        = "CREAR_DEVOLUCION"
	ActionAcceptReturn        = "ACEPTAR_DEVOLUCION"
	ActionRejectReturn        = "RECHAZAR_DEVOLUCION"
	ActionReturnToStock       = "RETORNAR_A_STOCK"
	ActionSendToShop          = "ENVIAR_A_FERRETERIA"
	ActionDiscard             = "DESCARTAR"
	ActionApproveByShop       = "APROBAR_FERRETERIA"
	ActionRejectByShop        = "RECHAZAR_FERRETERIA"
)

// MovementEvent registro append-only de una transición aplicada a un movimiento.
type MovementEvent struct {
	ID         string
	MovementID string
	Action     string
	Type       string
	Status     string
	SubState   SubState
	ActorID    string
	Note       string
	StockDelta decimal.Decimal // cambio aplicado a material.stock (0 si no hubo)
	CreatedAt  time.Time
}
