package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/civistock/civistock-api/pkg/timefmt"
)

// CreateWithdrawalRequest body para POST /api/ingeniero/retiros.
type CreateWithdrawalRequest struct {
	MaterialID string          `json:"material_id" validate:"required,uuid"`
	Quantity   decimal.Decimal `json:"cantidad" validate:"gt=0"`
	Note       string          `json:"observacion" validate:"omitempty,max=1000"`
}

// CreateReturnRequest body para POST /api/ingeniero/devoluciones.
// Evidence es una referencia opaca a un archivo ya almacenado.
type CreateReturnRequest struct {
	MaterialID string          `json:"material_id" validate:"required,uuid"`
	Quantity   decimal.Decimal `json:"cantidad" validate:"gt=0"`
	Note       string          `json:"observacion" validate:"omitempty,max=1000"`
	Evidence   string          `json:"evidencia" validate:"omitempty,max=255"`
}

// ReviewRequest observación del almacenista al autorizar o rechazar.
// Evidence es una referencia opaca a un archivo ya almacenado.
type ReviewRequest struct {
	Note     string `json:"observacion" validate:"omitempty,max=1000"`
	Evidence string `json:"evidencia" validate:"omitempty,max=255"`
}

// ReturnDecisionRequest body para POST /api/almacenista/devoluciones/:id/decision.
type ReturnDecisionRequest struct {
	Decision string `json:"accion" validate:"required,oneof=aceptar rechazar"`
	Note     string `json:"observacion" validate:"omitempty,max=1000"`
	Evidence string `json:"evidencia" validate:"omitempty,max=255"`
}

// MovementResponse movimiento con datos de material y usuarios.
type MovementResponse struct {
	ID               string          `json:"id"`
	MaterialID       string          `json:"material_id"`
	MaterialCode     string          `json:"material_codigo,omitempty"`
	MaterialName     string          `json:"material_nombre,omitempty"`
	Unit             string          `json:"unidad,omitempty"`
	Type             string          `json:"tipo"`
	Quantity         decimal.Decimal `json:"cantidad"`
	Status           string          `json:"estado"`
	SubState         string          `json:"subestado"`
	SubStateLabel    string          `json:"subestado_label,omitempty"`
	VisibleInStock   bool            `json:"visible_en_existencias"`
	Active           bool            `json:"activo"`
	Note             string          `json:"observacion,omitempty"`
	ReviewerNote     string          `json:"observacion_almacenista,omitempty"`
	Evidence         string          `json:"evidencia,omitempty"`
	ReviewerEvidence string          `json:"evidencia_almacenista,omitempty"`
	RequestedBy      string          `json:"solicitado_por_id"`
	RequesterName    string          `json:"solicitado_por,omitempty"`
	ProcessedBy      string          `json:"usuario_id,omitempty"`
	ProcessorName    string          `json:"procesado_por,omitempty"`
	Date             time.Time       `json:"fecha"`
	Local            timefmt.Local   `json:"fecha_local"`
}

// ReturnWarningDTO advertencia no bloqueante al crear una devolución.
type ReturnWarningDTO struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	Available decimal.Decimal `json:"disponible"`
}

// CreateReturnResponse devolución creada más la advertencia si aplica.
type CreateReturnResponse struct {
	Movement MovementResponse  `json:"movimiento"`
	Warning  *ReturnWarningDTO `json:"advertencia,omitempty"`
}

// ReturnAllowanceDTO cuánto puede devolver el ingeniero de un material.
type ReturnAllowanceDTO struct {
	MaterialID   string          `json:"material_id"`
	Code         string          `json:"codigo"`
	Name         string          `json:"nombre"`
	Unit         string          `json:"unidad"`
	Withdrawn    decimal.Decimal `json:"total_retirado"`
	Returned     decimal.Decimal `json:"total_devuelto"`
	Pending      decimal.Decimal `json:"devoluciones_pendientes"`
	MaxReturnQty decimal.Decimal `json:"disponible_para_devolver"`
}

// MovementEventResponse una entrada del historial de un movimiento.
type MovementEventResponse struct {
	ID         string          `json:"id"`
	Action     string          `json:"accion"`
	Type       string          `json:"tipo"`
	Status     string          `json:"estado"`
	SubState   string          `json:"subestado"`
	ActorID    string          `json:"actor_id"`
	Note       string          `json:"observacion,omitempty"`
	StockDelta decimal.Decimal `json:"stock_delta"`
	Date       time.Time       `json:"fecha"`
	Local      timefmt.Local   `json:"fecha_local"`
}

// StockBucketsDTO vista de existencias: materiales más las devoluciones agrupadas por etapa.
type StockBucketsDTO struct {
	Materials         []MaterialResponse `json:"materiales"`
	AwaitingDecision  []MovementResponse `json:"en_devolucion"`
	InShopReview      []MovementResponse `json:"en_revision_ferreteria"`
	RejectedDiscarded []MovementResponse `json:"rechazados_descartados"`
	ApprovedByShop    []MovementResponse `json:"aprobados_ferreteria"`
}

// ClearHistoryResponse resultado de borrar el historial.
type ClearHistoryResponse struct {
	Deleted int64 `json:"eliminados"`
}
