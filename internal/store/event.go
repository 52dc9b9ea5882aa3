package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Github-Sonali/ai-calendar/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

const eventColumns = `id, user_id, title, description, start_time, end_time, location, attendees, category, priority, is_recurring, recurring_pattern, created_at, updated_at`

func (s *EventStore) Create(userID string, d model.EventDraft) (*model.Event, error) {
	attendees, err := marshalAttendees(d.Attendees)
	if err != nil {
		return nil, err
	}

	var recurringInt int
	if d.IsRecurring {
		recurringInt = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO events (user_id, title, description, start_time, end_time, location, attendees, category, priority, is_recurring)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, d.Title, d.Description, d.StartTime.UTC(), d.EndTime.UTC(), d.Location, attendees, d.Category, d.Priority, recurringInt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query event: %w", err)
	}
	return e, nil
}

// ListByUser returns a user's events ordered by start time ascending.
// A zero start/end skips the date range filter.
func (s *EventStore) ListByUser(userID string, start, end time.Time) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = ?`
	args := []any{userID}
	if !start.IsZero() && !end.IsZero() {
		query += ` AND start_time >= ? AND end_time <= ?`
		args = append(args, start.UTC(), end.UTC())
	}
	query += ` ORDER BY start_time ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListRecent returns up to limit of the user's events, most recent start
// time first. This is the pattern-learning input window.
func (s *EventStore) ListRecent(userID string, limit int) ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT `+eventColumns+` FROM events WHERE user_id = ? ORDER BY start_time DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *EventStore) Update(id int64, d model.EventDraft) (*model.Event, error) {
	attendees, err := marshalAttendees(d.Attendees)
	if err != nil {
		return nil, err
	}

	var recurringInt int
	if d.IsRecurring {
		recurringInt = 1
	}

	_, err = s.db.Exec(
		`UPDATE events
		 SET title = ?, description = ?, start_time = ?, end_time = ?, location = ?, attendees = ?, category = ?, priority = ?, is_recurring = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		d.Title, d.Description, d.StartTime.UTC(), d.EndTime.UTC(), d.Location, attendees, d.Category, d.Priority, recurringInt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	return s.GetByID(id)
}

func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func marshalAttendees(attendees []string) (string, error) {
	if attendees == nil {
		attendees = []string{}
	}
	data, err := json.Marshal(attendees)
	if err != nil {
		return "", fmt.Errorf("marshal attendees: %w", err)
	}
	return string(data), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var e model.Event
	var attendees string
	var recurringInt int
	err := row.Scan(
		&e.ID, &e.UserID, &e.Title, &e.Description, &e.StartTime, &e.EndTime,
		&e.Location, &attendees, &e.Category, &e.Priority, &recurringInt,
		&e.RecurringPattern, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.IsRecurring = recurringInt != 0
	if err := json.Unmarshal([]byte(attendees), &e.Attendees); err != nil {
		return nil, fmt.Errorf("unmarshal attendees: %w", err)
	}
	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
