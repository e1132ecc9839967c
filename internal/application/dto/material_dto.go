package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest body para POST /api/almacenista/materiales.
type CreateMaterialRequest struct {
	Code        string          `json:"codigo" validate:"required,max=50"`
	Name        string          `json:"nombre" validate:"required,max=150"`
	Description string          `json:"descripcion" validate:"omitempty,max=2000"`
	Unit        string          `json:"unidad" validate:"required,max=30"`
	Stock       decimal.Decimal `json:"stock" validate:"min=0"`
	MinStock    decimal.Decimal `json:"stock_minimo" validate:"min=0"`
}

// UpdateMaterialRequest body para PUT /api/almacenista/materiales/:id. El stock se ajusta aparte.
type UpdateMaterialRequest struct {
	Code        string          `json:"codigo" validate:"required,max=50"`
	Name        string          `json:"nombre" validate:"required,max=150"`
	Description string          `json:"descripcion" validate:"omitempty,max=2000"`
	Unit        string          `json:"unidad" validate:"required,max=30"`
	MinStock    decimal.Decimal `json:"stock_minimo" validate:"min=0"`
}

// SetStockRequest body para PUT /api/almacenista/materiales/:id/stock.
type SetStockRequest struct {
	Stock decimal.Decimal `json:"stock" validate:"min=0"`
}

// MaterialResponse salida de un material.
type MaterialResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"codigo"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	Unit        string          `json:"unidad"`
	Stock       decimal.Decimal `json:"stock"`
	MinStock    decimal.Decimal `json:"stock_minimo"`
	InReturn    decimal.Decimal `json:"en_devolucion"`
	Active      bool            `json:"activo"`
	LowStock    bool            `json:"stock_bajo"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// LowStockDTO material en o bajo el mínimo con el faltante para reponer.
type LowStockDTO struct {
	MaterialID string          `json:"material_id"`
	Code       string          `json:"codigo"`
	Name       string          `json:"nombre"`
	Unit       string          `json:"unidad"`
	Stock      decimal.Decimal `json:"stock"`
	MinStock   decimal.Decimal `json:"stock_minimo"`
	Deficit    decimal.Decimal `json:"faltante"` // stock_minimo - stock, mínimo 0
}
