package dto

import "github.com/civistock/civistock-api/pkg/timefmt"

// KeeperAlertsDTO panel de alertas del almacenista.
type KeeperAlertsDTO struct {
	PendingWithdrawals int           `json:"pendientes_retiro"`
	PendingReturns     int           `json:"devoluciones_pendientes"`
	AcceptedUnreviewed int           `json:"devoluciones_autorizadas_sin_revision"`
	InShopReview       int           `json:"devoluciones_en_revision"`
	LowStock           int           `json:"stock_bajo_panel"`
	LastMovement       timefmt.Local `json:"ultima_fecha"`
	ShowAlerts         bool          `json:"mostrar_alertas"`
	LowStockItems      []LowStockDTO `json:"materiales_bajo_stock"`
}

// EngineerPanelDTO panel del ingeniero: últimos movimientos propios.
type EngineerPanelDTO struct {
	Recent []MovementResponse `json:"ultimos_movimientos"`
}

// KeeperReportDTO reporte del mes en curso.
type KeeperReportDTO struct {
	Month    string             `json:"mes"` // "2024-05"
	Approved []MovementResponse `json:"aprobados"`
	Rejected []MovementResponse `json:"rechazados"`
	Returns  []MovementResponse `json:"devoluciones"`
}

// EngineerReportDTO reporte de obra del ingeniero.
type EngineerReportDTO struct {
	Approved []MovementResponse `json:"aprobados"`
	Rejected []MovementResponse `json:"rechazados"`
	Returns  []MovementResponse `json:"devoluciones"`
}
