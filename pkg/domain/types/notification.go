package types

import "fmt"

// NotificationType represents the kind of a feed notification
type NotificationType string

const (
	NotificationAlert    NotificationType = "alert"
	NotificationInfo     NotificationType = "info"
	NotificationReminder NotificationType = "reminder"
	NotificationMessage  NotificationType = "message"
)

// AllNotificationTypes returns all valid notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		NotificationAlert,
		NotificationInfo,
		NotificationReminder,
		NotificationMessage,
	}
}

// IsValid checks if the notification type is valid
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationAlert, NotificationInfo, NotificationReminder, NotificationMessage:
		return true
	default:
		return false
	}
}

// String returns the string representation of the notification type
func (t NotificationType) String() string {
	return string(t)
}

// ParseNotificationType parses a string into a NotificationType
func ParseNotificationType(s string) (NotificationType, error) {
	t := NotificationType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid notification type: %s", s)
	}
	return t, nil
}
