package dto

import (
	"time"

	"github.com/civistock/civistock-api/pkg/timefmt"
)

// NotificationResponse aviso para la campana del usuario.
type NotificationResponse struct {
	ID      string        `json:"id"`
	Message string        `json:"mensaje"`
	Level   string        `json:"nivel"`
	Read    bool          `json:"leida"`
	Date    time.Time     `json:"fecha"`
	Local   timefmt.Local `json:"fecha_local"`
}
