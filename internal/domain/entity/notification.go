package entity

import "time"

// Niveles de notificación.
const (
	NotificationInfo    = "INFO"
	NotificationWarning = "WARNING"
	NotificationError   = "ERROR"
)

// MaxNotificationLength límite de la columna mensaje.
const MaxNotificationLength = 300

// Notification aviso dirigido a un usuario. Solo Read cambia después de creada.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Level     string
	Read      bool
	CreatedAt time.Time
}
