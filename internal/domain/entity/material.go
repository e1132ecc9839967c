package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa un ítem de inventario de la obra.
// Stock se ajusta solo por transiciones de movimientos (o por SetStock del almacenista).
type Material struct {
	ID          string
	Code        string // código único
	Name        string
	Description string
	Unit        string // unidad de medida
	Stock       decimal.Decimal
	MinStock    decimal.Decimal // umbral de reposición
	InReturn    decimal.Decimal // cantidad aceptada en devolución, pendiente de disposición
	Active      bool            // borrado lógico
	SearchKey   string          // código+nombre+descripción+unidad normalizados para búsqueda
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LowStock indica si el material está en o por debajo del stock mínimo.
func (m *Material) LowStock() bool {
	return m.Stock.LessThanOrEqual(m.MinStock)
}
