package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Github-Sonali/ai-calendar/internal/model"
)

type PatternStore struct {
	db *sql.DB
}

func NewPatternStore(db *sql.DB) *PatternStore {
	return &PatternStore{db: db}
}

func (s *PatternStore) Get(userID string) (*model.UserPattern, error) {
	var p model.UserPattern
	var times, attendees, categories string
	err := s.db.QueryRow(
		`SELECT user_id, common_meeting_times, average_meeting_duration, frequent_attendees, preferred_categories, daily_frequency, weekly_frequency, last_updated
		 FROM user_patterns WHERE user_id = ?`,
		userID,
	).Scan(&p.UserID, &times, &p.AverageMeetingDuration, &attendees, &categories, &p.DailyFrequency, &p.WeeklyFrequency, &p.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user pattern: %w", err)
	}

	for _, field := range []struct {
		raw  string
		dest *[]string
	}{
		{times, &p.CommonMeetingTimes},
		{attendees, &p.FrequentAttendees},
		{categories, &p.PreferredCategories},
	} {
		if err := json.Unmarshal([]byte(field.raw), field.dest); err != nil {
			return nil, fmt.Errorf("unmarshal pattern field: %w", err)
		}
	}
	return &p, nil
}

// Upsert writes a computed pattern, replacing any existing row for the user.
func (s *PatternStore) Upsert(p model.UserPattern) error {
	times, err := json.Marshal(emptyIfNil(p.CommonMeetingTimes))
	if err != nil {
		return fmt.Errorf("marshal meeting times: %w", err)
	}
	attendees, err := json.Marshal(emptyIfNil(p.FrequentAttendees))
	if err != nil {
		return fmt.Errorf("marshal attendees: %w", err)
	}
	categories, err := json.Marshal(emptyIfNil(p.PreferredCategories))
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO user_patterns (user_id, common_meeting_times, average_meeting_duration, frequent_attendees, preferred_categories, daily_frequency, weekly_frequency, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   common_meeting_times = excluded.common_meeting_times,
		   average_meeting_duration = excluded.average_meeting_duration,
		   frequent_attendees = excluded.frequent_attendees,
		   preferred_categories = excluded.preferred_categories,
		   daily_frequency = excluded.daily_frequency,
		   weekly_frequency = excluded.weekly_frequency,
		   last_updated = excluded.last_updated`,
		p.UserID, string(times), p.AverageMeetingDuration, string(attendees), string(categories), p.DailyFrequency, p.WeeklyFrequency, p.LastUpdated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert user pattern: %w", err)
	}
	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
