package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/civistock/civistock-api/internal/application/analytics"
)

// DashboardHandler panel de alertas del almacenista.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// KeeperAlerts godoc
// @Summary      Panel de alertas
// @Description  Pendientes, devoluciones por revisar, stock bajo y fecha del último movimiento (hora local).
// @Tags         almacenista
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.KeeperAlertsDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/almacenista/panel [get]
func (h *DashboardHandler) KeeperAlerts(c *fiber.Ctx) error {
	out, err := h.uc.KeeperAlerts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
