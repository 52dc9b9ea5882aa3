package model

import "time"

// Event categories form a closed set; anything else is coerced to
// CategoryMeeting before persistence.
const (
	CategoryMeeting  = "meeting"
	CategoryTask     = "task"
	CategoryReminder = "reminder"
	CategoryPersonal = "personal"
	CategoryWork     = "work"
)

// ValidCategory reports whether c is one of the known event categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryMeeting, CategoryTask, CategoryReminder, CategoryPersonal, CategoryWork:
		return true
	}
	return false
}

type Event struct {
	ID               int64     `json:"id"`
	UserID           string    `json:"user_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Location         string    `json:"location"`
	Attendees        []string  `json:"attendees"`
	Category         string    `json:"category"`
	Priority         string    `json:"priority"`
	IsRecurring      bool      `json:"is_recurring"`
	RecurringPattern string    `json:"recurring_pattern,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// EventDraft is an extracted, not-yet-persisted event. End time is always
// derived from StartTime plus a duration and never stored independently.
type EventDraft struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location"`
	Attendees   []string  `json:"attendees"`
	Category    string    `json:"category"`
	Priority    string    `json:"priority"`
	IsRecurring bool      `json:"is_recurring"`
}
