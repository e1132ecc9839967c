package inventory

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Códigos de advertencia al registrar una devolución. Son informativos: la devolución
// se crea igual en DEVOLUCION/PENDIENTE y la revisa el almacenista.
const (
	WarningNoWithdrawal          = "SIN_RETIRO"
	WarningOverReturnUnjustified = "EXCESO_SIN_JUSTIFICACION"
	WarningOverReturnJustified   = "EXCESO_JUSTIFICADO"
)

// ReturnTotals sumas por solicitante y material.
type ReturnTotals struct {
	Withdrawn decimal.Decimal // SALIDA/AUTORIZADO
	Returned  decimal.Decimal // DEVOLUCION/AUTORIZADO
	Pending   decimal.Decimal // DEVOLUCION/PENDIENTE
}

// Available cantidad retirada aún no devuelta (sin contar devoluciones pendientes).
func (t ReturnTotals) Available() decimal.Decimal {
	return t.Withdrawn.Sub(t.Returned)
}

// Allowance cantidad que se sugiere como máximo a devolver: retirado - (devuelto + pendiente), mínimo 0.
func (t ReturnTotals) Allowance() decimal.Decimal {
	v := t.Withdrawn.Sub(t.Returned.Add(t.Pending))
	if v.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return v
}

// ReturnWarning advertencia para mostrar al ingeniero.
type ReturnWarning struct {
	Code      string
	Available decimal.Decimal
}

// AssessReturn evalúa la cantidad a devolver contra lo retirado. nil = sin advertencia.
func AssessReturn(t ReturnTotals, qty decimal.Decimal, note string) *ReturnWarning {
	if t.Withdrawn.IsZero() {
		return &ReturnWarning{Code: WarningNoWithdrawal, Available: decimal.Zero}
	}
	available := t.Available()
	if qty.LessThanOrEqual(available) {
		return nil
	}
	if strings.TrimSpace(note) == "" {
		return &ReturnWarning{Code: WarningOverReturnUnjustified, Available: available}
	}
	return &ReturnWarning{Code: WarningOverReturnJustified, Available: available}
}
