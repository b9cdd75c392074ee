package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeOrderRequested  NotificationType = "order_requested"
	NotificationTypeOrderAccepted   NotificationType = "order_accepted"
	NotificationTypeOrderDeclined   NotificationType = "order_declined"
	NotificationTypeOrderProgress   NotificationType = "order_progress"
	NotificationTypePaymentReceived NotificationType = "payment_received"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrderRequested,
	NotificationTypeOrderAccepted,
	NotificationTypeOrderDeclined,
	NotificationTypeOrderProgress,
	NotificationTypePaymentReceived,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
