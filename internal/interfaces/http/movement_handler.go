package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civistock/civistock-api/internal/application/usecase"
)

// MovementHandler listados, reportes e historial de movimientos.
type MovementHandler struct {
	uc *usecase.MovementQueryUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *usecase.MovementQueryUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// History godoc
// @Summary      Historial propio
// @Tags         ingeniero
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/ingeniero/movimientos [get]
func (h *MovementHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.History(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ClearHistory godoc
// @Summary      Borrar movimientos rechazados propios
// @Description  Solo borra lo rechazado; lo pendiente y lo autorizado se conservan.
// @Tags         ingeniero
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ClearHistoryResponse
// @Router       /api/ingeniero/movimientos [delete]
func (h *MovementHandler) ClearHistory(c *fiber.Ctx) error {
	out, err := h.uc.ClearHistory(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// EngineerReport godoc
// @Summary      Reporte de obra
// @Tags         ingeniero
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.EngineerReportDTO
// @Router       /api/ingeniero/reportes [get]
func (h *MovementHandler) EngineerReport(c *fiber.Ctx) error {
	out, err := h.uc.EngineerReport(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Returns godoc
// @Summary      Devoluciones propias
// @Tags         ingeniero
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/ingeniero/devoluciones [get]
func (h *MovementHandler) Returns(c *fiber.Ctx) error {
	out, err := h.uc.Returns(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Panel godoc
// @Summary      Últimos movimientos propios
// @Tags         ingeniero
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.EngineerPanelDTO
// @Router       /api/ingeniero/panel [get]
func (h *MovementHandler) Panel(c *fiber.Ctx) error {
	out, err := h.uc.Panel(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PendingWithdrawals godoc
// @Summary      Solicitudes de retiro pendientes
// @Tags         almacenista
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/almacenista/retiros [get]
func (h *MovementHandler) PendingWithdrawals(c *fiber.Ctx) error {
	out, err := h.uc.PendingWithdrawals(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// PendingReturns godoc
// @Summary      Devoluciones pendientes
// @Tags         almacenista
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/almacenista/devoluciones [get]
func (h *MovementHandler) PendingReturns(c *fiber.Ctx) error {
	out, err := h.uc.PendingReturns(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// StockBuckets godoc
// @Summary      Existencias y devoluciones por etapa
// @Tags         almacenista
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockBucketsDTO
// @Router       /api/almacenista/existencias [get]
func (h *MovementHandler) StockBuckets(c *fiber.Ctx) error {
	out, err := h.uc.StockBuckets(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// MonthlyReport godoc
// @Summary      Reporte del mes en curso
// @Tags         almacenista
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.KeeperReportDTO
// @Router       /api/almacenista/reportes [get]
func (h *MovementHandler) MonthlyReport(c *fiber.Ctx) error {
	out, err := h.uc.MonthlyReport(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Events godoc
// @Summary      Historial de transiciones de un movimiento
// @Tags         almacenista
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Movimiento ID"
// @Success      200  {array}   dto.MovementEventResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/almacenista/movimientos/{id}/eventos [get]
// @Router       /api/ingeniero/movimientos/{id}/eventos [get]
func (h *MovementHandler) Events(c *fiber.Ctx) error {
	out, err := h.uc.Events(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
