package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/civistock/civistock-api/internal/domain"
)

// QuantityScale decimales de las columnas NUMERIC(14,3).
const QuantityScale = 3

// quantityLimit primer valor que no cabe en once dígitos enteros.
var quantityLimit = decimal.New(1, 14-QuantityScale)

// CheckQuantity cantidad de un movimiento: mayor que cero y representable sin redondeo.
func CheckQuantity(q decimal.Decimal) error {
	if !q.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	return checkScale(q)
}

// CheckStock existencias o mínimo de un material: cero o más y representable sin redondeo.
func CheckStock(q decimal.Decimal) error {
	if q.IsNegative() {
		return domain.ErrInvalidQuantity
	}
	return checkScale(q)
}

func checkScale(q decimal.Decimal) error {
	if !q.Equal(q.Truncate(QuantityScale)) || q.Abs().GreaterThanOrEqual(quantityLimit) {
		return domain.ErrInvalidQuantity
	}
	return nil
}
