package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/civistock/civistock-api/internal/domain/entity"
)

// Textos de notificación por acción. qty y unidad se formatean sin ceros de más.
func notificationText(action string, mat *entity.Material, qty decimal.Decimal, requester, note string) string {
	amount := fmt.Sprintf("%s %s", qty.String(), mat.Unit)
	var msg string
	switch action {
	case entity.ActionCreateWithdrawal:
		msg = fmt.Sprintf("Nueva solicitud de retiro: %s (%s) solicitada por %s.", mat.Name, amount, requester)
	case entity.ActionCreateReturn:
		msg = fmt.Sprintf("Nueva solicitud de devolución: %s (%s) solicitada por %s.", mat.Name, amount, requester)
	case entity.ActionAuthorizeWithdrawal:
		msg = fmt.Sprintf("Retiro autorizado: %s (%s).", mat.Name, amount)
	case entity.ActionRejectWithdrawal:
		msg = fmt.Sprintf("Solicitud de retiro rechazada: %s (%s).", mat.Name, amount)
	case entity.ActionAcceptReturn:
		msg = fmt.Sprintf("Devolución autorizada para %s (%s). Será validada por el almacenista.", mat.Name, amount)
	case entity.ActionRejectReturn:
		msg = fmt.Sprintf("Su devolución de %s de %s no es válida. Contacte al almacenista.", amount, mat.Name)
	case entity.ActionReturnToStock:
		msg = fmt.Sprintf("Devolución de %s (%s) revisada y retornada al stock.", mat.Name, amount)
	case entity.ActionSendToShop:
		msg = fmt.Sprintf("Devolución de %s (%s) enviada a revisión por ferretería.", mat.Name, amount)
	case entity.ActionApproveByShop:
		msg = fmt.Sprintf("Ferretería aprobó la devolución de %s (%s). El material está disponible en stock.", mat.Name, amount)
	case entity.ActionRejectByShop:
		msg = fmt.Sprintf("Ferretería rechazó la devolución de %s (%s). El material no es utilizable.", mat.Name, amount)
	case entity.ActionDiscard:
		msg = fmt.Sprintf("La devolución de %s (%s) fue revisada y marcada como no utilizable.", mat.Name, amount)
	default:
		msg = fmt.Sprintf("Movimiento de %s (%s) actualizado.", mat.Name, amount)
	}
	if note = strings.TrimSpace(note); note != "" {
		msg += " Observación: " + note
	}
	return truncate(msg, entity.MaxNotificationLength)
}

// notificationLevel nivel según el resultado para el destinatario.
func notificationLevel(action string) string {
	switch action {
	case entity.ActionRejectWithdrawal, entity.ActionRejectReturn, entity.ActionRejectByShop, entity.ActionDiscard:
		return entity.NotificationWarning
	}
	return entity.NotificationInfo
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
