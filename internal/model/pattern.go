package model

import "time"

// UserPattern summarizes a user's scheduling habits, learned from their
// event history. At most one exists per user; it is a snapshot, recomputed
// over a recent window rather than merged incrementally.
type UserPattern struct {
	UserID                 string    `json:"user_id"`
	CommonMeetingTimes     []string  `json:"common_meeting_times"` // "HH:MM", most frequent first
	AverageMeetingDuration int       `json:"average_meeting_duration"`
	FrequentAttendees      []string  `json:"frequent_attendees"`
	PreferredCategories    []string  `json:"preferred_categories"`
	DailyFrequency         int       `json:"daily_frequency"`
	WeeklyFrequency        int       `json:"weekly_frequency"`
	LastUpdated            time.Time `json:"last_updated"`
}
