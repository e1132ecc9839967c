package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civistock/civistock-api/internal/application/dto"
	"github.com/civistock/civistock-api/internal/application/usecase"
)

// MaterialHandler catálogo de materiales.
type MaterialHandler struct {
	uc *usecase.MaterialUseCase
}

// NewMaterialHandler construye el handler.
func NewMaterialHandler(uc *usecase.MaterialUseCase) *MaterialHandler {
	return &MaterialHandler{uc: uc}
}

// Create godoc
// @Summary      Crear material
// @Tags         materiales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMaterialRequest  true  "codigo, nombre, unidad, stock, stock_minimo"
// @Success      201   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/almacenista/materiales [post]
func (h *MaterialHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMaterialRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar materiales
// @Description  q busca en código, nombre, descripción y unidad sin distinguir tildes.
// @Tags         materiales
// @Security     Bearer
// @Produce      json
// @Param        q  query  string  false  "texto a buscar"
// @Success      200  {array}   dto.MaterialResponse
// @Router       /api/almacenista/materiales [get]
func (h *MaterialHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), c.Query("q"), false)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// ListActive godoc
// @Summary      Materiales disponibles para solicitar
// @Tags         ingeniero
// @Security     Bearer
// @Produce      json
// @Param        q  query  string  false  "texto a buscar"
// @Success      200  {array}   dto.MaterialResponse
// @Router       /api/ingeniero/materiales [get]
func (h *MaterialHandler) ListActive(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), c.Query("q"), true)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Obtener material
// @Tags         materiales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "Material ID"
// @Success      200  {object}  dto.MaterialResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/almacenista/materiales/{id} [get]
func (h *MaterialHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar material
// @Tags         materiales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "Material ID"
// @Param        body  body  dto.UpdateMaterialRequest  true  "datos descriptivos y stock_minimo"
// @Success      200   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/almacenista/materiales/{id} [put]
func (h *MaterialHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMaterialRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetStock godoc
// @Summary      Ajustar stock (conteo físico)
// @Tags         materiales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "Material ID"
// @Param        body  body  dto.SetStockRequest  true  "stock"
// @Success      200   {object}  dto.MaterialResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/almacenista/materiales/{id}/stock [put]
func (h *MaterialHandler) SetStock(c *fiber.Ctx) error {
	var in dto.SetStockRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.SetStock(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Desactivar material
// @Tags         materiales
// @Security     Bearer
// @Param        id   path  string  true  "Material ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/almacenista/materiales/{id} [delete]
func (h *MaterialHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
