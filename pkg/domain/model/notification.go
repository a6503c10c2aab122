package model

import (
	"time"

	"github.com/teleskin-lab/teleskin/pkg/domain/types"
)

// Notification is one entry in a portal's in-memory feed. Notifications are
// never persisted; a feed resets to its seed set on every restart.
type Notification struct {
	ID        types.NotificationID   `json:"id"`
	Type      types.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	CreatedAt time.Time              `json:"created_at"`
	Read      bool                   `json:"read"`
}

// NewNotification creates an unread notification with a fresh ID
func NewNotification(t types.NotificationType, title, message string) *Notification {
	return &Notification{
		ID:        types.NewNotificationID(),
		Type:      t,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}
