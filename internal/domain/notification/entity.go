package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeAttendanceLate    NotificationType = "attendance_late"
	TypeAttendanceHalfDay NotificationType = "attendance_half_day"
	TypeAttendanceCleared NotificationType = "attendance_cleared"
)

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
