package models

import "time"

type NotificationType string

const (
	NotificationBookingConfirmed NotificationType = "booking_confirmed"
	NotificationBusApproaching   NotificationType = "bus_approaching"
	NotificationBusDelayed       NotificationType = "bus_delayed"
	NotificationBookingCancelled NotificationType = "booking_cancelled"
	NotificationSystemUpdate     NotificationType = "system_update"
)

// Notification.BookingID is a lookup reference only; deleting a booking does
// not touch its notifications.
type Notification struct {
	ID        int64
	UserID    int64
	Title     string
	Message   string
	Type      NotificationType
	BookingID *int64
	IsRead    bool
	CreatedAt time.Time
}
