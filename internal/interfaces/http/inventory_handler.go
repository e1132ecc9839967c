package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civistock/civistock-api/internal/application/dto"
	"github.com/civistock/civistock-api/internal/application/inventory"
	"github.com/civistock/civistock-api/internal/domain"
	"github.com/civistock/civistock-api/internal/domain/entity"
)

// dispositionSlugs segmento de ruta -> acción de disposición.
var dispositionSlugs = map[string]string{
	"retornar-stock":      entity.ActionReturnToStock,
	"enviar-ferreteria":   entity.ActionSendToShop,
	"descartar":           entity.ActionDiscard,
	"aprobar-ferreteria":  entity.ActionApproveByShop,
	"rechazar-ferreteria": entity.ActionRejectByShop,
}

// InventoryHandler transiciones del ciclo de vida de movimientos (protegido).
type InventoryHandler struct {
	uc            *inventory.LifecycleUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.LifecycleUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, replenishment: replenishment}
}

// CreateWithdrawal godoc
// @Summary      Solicitar retiro de material
// @Tags         ingeniero
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateWithdrawalRequest  true  "material_id, cantidad, observacion"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ingeniero/retiros [post]
func (h *InventoryHandler) CreateWithdrawal(c *fiber.Ctx) error {
	var in dto.CreateWithdrawalRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateWithdrawal(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateReturn godoc
// @Summary      Registrar devolución
// @Description  Si la cantidad supera lo retirado la respuesta trae "advertencia"; la devolución se registra igual.
// @Tags         ingeniero
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReturnRequest  true  "material_id, cantidad, observacion, evidencia"
// @Success      201   {object}  dto.CreateReturnResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/ingeniero/devoluciones [post]
func (h *InventoryHandler) CreateReturn(c *fiber.Ctx) error {
	var in dto.CreateReturnRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateReturn(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ReturnAllowance godoc
// @Summary      Cantidad disponible para devolver por material
// @Tags         ingeniero
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReturnAllowanceDTO
// @Router       /api/ingeniero/devoluciones/disponible [get]
func (h *InventoryHandler) ReturnAllowance(c *fiber.Ctx) error {
	out, err := h.uc.ReturnAllowance(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AuthorizeWithdrawal godoc
// @Summary      Autorizar retiro
// @Tags         almacenista
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true   "Movimiento ID"
// @Param        body  body  dto.ReviewRequest  false  "observacion, evidencia"
// @Success      200   {object}  dto.MovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/almacenista/retiros/{id}/autorizar [post]
func (h *InventoryHandler) AuthorizeWithdrawal(c *fiber.Ctx) error {
	in, ok, err := reviewBody(c)
	if !ok {
		return err
	}
	out, err := h.uc.AuthorizeWithdrawal(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RejectWithdrawal godoc
// @Summary      Rechazar retiro
// @Tags         almacenista
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true   "Movimiento ID"
// @Param        body  body  dto.ReviewRequest  false  "observacion, evidencia"
// @Success      200   {object}  dto.MovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/almacenista/retiros/{id}/rechazar [post]
func (h *InventoryHandler) RejectWithdrawal(c *fiber.Ctx) error {
	in, ok, err := reviewBody(c)
	if !ok {
		return err
	}
	out, err := h.uc.RejectWithdrawal(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ReviewReturn godoc
// @Summary      Aceptar o rechazar una devolución
// @Description  Rechazar exige observación.
// @Tags         almacenista
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "Movimiento ID"
// @Param        body  body  dto.ReturnDecisionRequest  true  "accion (aceptar|rechazar), observacion, evidencia"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/almacenista/devoluciones/{id}/decision [post]
func (h *InventoryHandler) ReviewReturn(c *fiber.Ctx) error {
	var in dto.ReturnDecisionRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.ReviewReturn(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Dispose godoc
// @Summary      Disposición de una devolución autorizada
// @Tags         almacenista
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "Movimiento ID"
// @Param        accion  path  string  true  "retornar-stock | enviar-ferreteria | descartar | aprobar-ferreteria | rechazar-ferreteria"
// @Success      200  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/almacenista/existencias/{id}/{accion} [post]
func (h *InventoryHandler) Dispose(c *fiber.Ctx) error {
	action, ok := dispositionSlugs[c.Params("accion")]
	if !ok {
		return writeError(c, domain.ErrNotFound)
	}
	out, err := h.uc.Dispose(c.UserContext(), GetActor(c), c.Params("id"), action)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Materiales en o bajo el stock mínimo
// @Tags         almacenista
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LowStockDTO
// @Router       /api/almacenista/stock-bajo [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.replenishment.LowStock(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// reviewBody el cuerpo es opcional al autorizar o rechazar un retiro.
func reviewBody(c *fiber.Ctx) (dto.ReviewRequest, bool, error) {
	var in dto.ReviewRequest
	if len(c.Body()) == 0 {
		return in, true, nil
	}
	ok, err := bindAndValidate(c, &in)
	return in, ok, err
}
