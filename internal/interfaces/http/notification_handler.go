package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civistock/civistock-api/internal/application/usecase"
)

// NotificationHandler campana de avisos del usuario autenticado.
type NotificationHandler struct {
	uc *usecase.NotificationUseCase
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(uc *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

// Recent godoc
// @Summary      Notificaciones no leídas recientes
// @Tags         notificaciones
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.NotificationResponse
// @Router       /api/notificaciones [get]
func (h *NotificationHandler) Recent(c *fiber.Ctx) error {
	out, err := h.uc.Recent(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// MarkAllRead godoc
// @Summary      Marcar todas como leídas
// @Tags         notificaciones
// @Security     Bearer
// @Success      204
// @Router       /api/notificaciones/leidas [post]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.uc.MarkAllRead(c.UserContext(), GetActor(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Clear godoc
// @Summary      Borrar todas
// @Tags         notificaciones
// @Security     Bearer
// @Success      204
// @Router       /api/notificaciones [delete]
func (h *NotificationHandler) Clear(c *fiber.Ctx) error {
	if err := h.uc.Clear(c.UserContext(), GetActor(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
