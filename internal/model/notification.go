package model

import "time"

// Notification types.
const (
	NotifTypeReminder  = "reminder"
	NotifTypeCreated   = "created"
	NotifTypeUpdated   = "updated"
	NotifTypeCancelled = "cancelled"
)

// Notification is a per-user notification record. Reminder notifications
// carry a ScheduledFor instant and start out unsent; the sent flag only ever
// transitions false -> true, via an atomic claim in the store.
type Notification struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"user_id"`
	EventID      int64      `json:"event_id"`
	Type         string     `json:"type"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Read         bool       `json:"read"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	Sent         bool       `json:"sent"`
	CreatedAt    time.Time  `json:"created_at"`
}
