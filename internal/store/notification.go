package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Github-Sonali/ai-calendar/internal/model"
)

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

const notificationColumns = `id, user_id, event_id, type, title, message, read, scheduled_for, sent, created_at`

func (s *NotificationStore) Create(n model.Notification) (*model.Notification, error) {
	var readInt, sentInt int
	if n.Read {
		readInt = 1
	}
	if n.Sent {
		sentInt = 1
	}

	var scheduledFor any
	if n.ScheduledFor != nil {
		scheduledFor = n.ScheduledFor.UTC()
	}

	result, err := s.db.Exec(
		`INSERT INTO notifications (user_id, event_id, type, title, message, read, scheduled_for, sent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.UserID, n.EventID, n.Type, n.Title, n.Message, readInt, scheduledFor, sentInt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *NotificationStore) GetByID(id int64) (*model.Notification, error) {
	row := s.db.QueryRow(`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query notification: %w", err)
	}
	return n, nil
}

// ListDue returns unsent reminder notifications whose scheduled time has
// passed. Callers must Claim each one before delivering it.
func (s *NotificationStore) ListDue(now time.Time) ([]model.Notification, error) {
	rows, err := s.db.Query(
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE sent = 0 AND scheduled_for IS NOT NULL AND scheduled_for <= ?
		 ORDER BY scheduled_for ASC`,
		now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list due notifications: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

// Claim atomically transitions a notification from unsent to sent. It
// returns true only for the single caller that performed the transition;
// a false return means a concurrent claimant already won.
func (s *NotificationStore) Claim(id int64) (bool, error) {
	result, err := s.db.Exec(`UPDATE notifications SET sent = 1 WHERE id = ? AND sent = 0`, id)
	if err != nil {
		return false, fmt.Errorf("claim notification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim rows affected: %w", err)
	}
	return affected == 1, nil
}

// ListByUser returns up to limit notifications for a user, most recent
// first. unreadOnly restricts to read = false.
func (s *NotificationStore) ListByUser(userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ?`
	args := []any{userID}
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

// MarkRead marks the given notifications as read.
func (s *NotificationStore) MarkRead(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := s.db.Exec(`UPDATE notifications SET read = 1 WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

// DeleteUnsentByEvent removes pending reminders for an event. Used when the
// source event is edited or deleted; already-sent rows are kept as history.
func (s *NotificationStore) DeleteUnsentByEvent(eventID int64) error {
	_, err := s.db.Exec(`DELETE FROM notifications WHERE event_id = ? AND type = ? AND sent = 0`, eventID, model.NotifTypeReminder)
	if err != nil {
		return fmt.Errorf("delete unsent reminders: %w", err)
	}
	return nil
}

func scanNotification(row rowScanner) (*model.Notification, error) {
	var n model.Notification
	var readInt, sentInt int
	var scheduledFor sql.NullTime
	err := row.Scan(
		&n.ID, &n.UserID, &n.EventID, &n.Type, &n.Title, &n.Message,
		&readInt, &scheduledFor, &sentInt, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.Read = readInt != 0
	n.Sent = sentInt != 0
	if scheduledFor.Valid {
		t := scheduledFor.Time
		n.ScheduledFor = &t
	}
	return &n, nil
}

func scanNotifications(rows *sql.Rows) ([]model.Notification, error) {
	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}
