package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/Github-Sonali/ai-calendar/internal/database"
	"github.com/Github-Sonali/ai-calendar/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// Each pooled connection gets its own :memory: database, so keep one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func testDraft(start, end time.Time) model.EventDraft {
	return model.EventDraft{
		Title:     "Team Sync",
		StartTime: start,
		EndTime:   end,
		Category:  model.CategoryMeeting,
		Priority:  "medium",
	}
}

func TestEventCreateAndGetByID(t *testing.T) {
	s := NewEventStore(setupTestDB(t))

	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	draft := testDraft(start, end)
	draft.Location = "Conference Room"
	draft.Attendees = []string{"John", "Sarah"}

	event, err := s.Create("alice", draft)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if event.Title != "Team Sync" {
		t.Errorf("title = %q, want %q", event.Title, "Team Sync")
	}
	if event.UserID != "alice" {
		t.Errorf("user_id = %q, want %q", event.UserID, "alice")
	}
	if len(event.Attendees) != 2 || event.Attendees[0] != "John" {
		t.Errorf("attendees = %v, want [John Sarah]", event.Attendees)
	}

	got, err := s.GetByID(event.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got == nil || got.Location != "Conference Room" {
		t.Errorf("got = %+v, want location %q", got, "Conference Room")
	}
}

func TestEventGetByIDNotFound(t *testing.T) {
	s := NewEventStore(setupTestDB(t))

	got, err := s.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent event")
	}
}

func TestEventListByUserOrdering(t *testing.T) {
	s := NewEventStore(setupTestDB(t))

	late := time.Date(2026, 9, 8, 14, 0, 0, 0, time.UTC)
	early := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)

	if _, err := s.Create("alice", testDraft(late, late.Add(time.Hour))); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create("alice", testDraft(early, early.Add(time.Hour))); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create("bob", testDraft(early, early.Add(time.Hour))); err != nil {
		t.Fatalf("create: %v", err)
	}

	events, err := s.ListByUser("alice", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if !events[0].StartTime.Equal(early) {
		t.Errorf("first event start = %v, want %v", events[0].StartTime, early)
	}
}

func TestEventListByUserDateRange(t *testing.T) {
	s := NewEventStore(setupTestDB(t))

	inRange := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	outOfRange := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	s.Create("alice", testDraft(inRange, inRange.Add(time.Hour)))
	s.Create("alice", testDraft(outOfRange, outOfRange.Add(time.Hour)))

	events, err := s.ListByUser("alice",
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("list by range: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
}

func TestEventListRecent(t *testing.T) {
	s := NewEventStore(setupTestDB(t))

	for day := 1; day <= 5; day++ {
		start := time.Date(2026, 9, day, 9, 0, 0, 0, time.UTC)
		if _, err := s.Create("alice", testDraft(start, start.Add(time.Hour))); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	events, err := s.ListRecent("alice", 3)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	// Most recent first
	if events[0].StartTime.Day() != 5 {
		t.Errorf("first event day = %d, want 5", events[0].StartTime.Day())
	}
}

func TestEventUpdate(t *testing.T) {
	s := NewEventStore(setupTestDB(t))

	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	event, err := s.Create("alice", testDraft(start, start.Add(time.Hour)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newStart := start.Add(4 * time.Hour)
	updated, err := s.Update(event.ID, model.EventDraft{
		Title:     "Moved Sync",
		StartTime: newStart,
		EndTime:   newStart.Add(90 * time.Minute),
		Category:  model.CategoryWork,
		Priority:  "high",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Moved Sync" {
		t.Errorf("title = %q, want %q", updated.Title, "Moved Sync")
	}
	if updated.Category != model.CategoryWork {
		t.Errorf("category = %q, want %q", updated.Category, model.CategoryWork)
	}
	if !updated.StartTime.Equal(newStart) {
		t.Errorf("start = %v, want %v", updated.StartTime, newStart)
	}
}

func TestEventDelete(t *testing.T) {
	s := NewEventStore(setupTestDB(t))

	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	event, err := s.Create("alice", testDraft(start, start.Add(time.Hour)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.Delete(event.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := s.GetByID(event.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}
