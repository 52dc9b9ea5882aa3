package store

import (
	"sync"
	"testing"
	"time"

	"github.com/Github-Sonali/ai-calendar/internal/model"
)

func reminderAt(scheduledFor time.Time) model.Notification {
	return model.Notification{
		UserID:       "alice",
		EventID:      1,
		Type:         model.NotifTypeReminder,
		Title:        "Upcoming: Team Sync",
		Message:      "Starting in 15 minutes",
		ScheduledFor: &scheduledFor,
	}
}

func TestNotificationCreateAndGet(t *testing.T) {
	s := NewNotificationStore(setupTestDB(t))

	scheduledFor := time.Date(2026, 9, 7, 9, 45, 0, 0, time.UTC)
	n, err := s.Create(reminderAt(scheduledFor))
	if err != nil {
		t.Fatalf("create notification: %v", err)
	}
	if n.Sent {
		t.Error("new reminder should be unsent")
	}
	if n.ScheduledFor == nil || !n.ScheduledFor.Equal(scheduledFor) {
		t.Errorf("scheduled_for = %v, want %v", n.ScheduledFor, scheduledFor)
	}
}

func TestNotificationListDue(t *testing.T) {
	s := NewNotificationStore(setupTestDB(t))

	now := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	due, err := s.Create(reminderAt(now.Add(-5 * time.Minute)))
	if err != nil {
		t.Fatalf("create due: %v", err)
	}
	if _, err := s.Create(reminderAt(now.Add(time.Hour))); err != nil {
		t.Fatalf("create future: %v", err)
	}
	// Instant notifications carry no schedule and must never show up as due.
	if _, err := s.Create(model.Notification{
		UserID: "alice", EventID: 1, Type: model.NotifTypeCreated,
		Title: "Event Created", Message: "ok", Sent: true,
	}); err != nil {
		t.Fatalf("create instant: %v", err)
	}

	got, err := s.ListDue(now)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d due, want 1", len(got))
	}
	if got[0].ID != due.ID {
		t.Errorf("due id = %d, want %d", got[0].ID, due.ID)
	}
}

func TestNotificationClaimOnce(t *testing.T) {
	s := NewNotificationStore(setupTestDB(t))

	n, err := s.Create(reminderAt(time.Now().Add(-time.Minute)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	won, err := s.Claim(n.ID)
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if !won {
		t.Fatal("first claim should win")
	}

	won, err = s.Claim(n.ID)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if won {
		t.Fatal("second claim should lose")
	}

	got, err := s.GetByID(n.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Sent {
		t.Error("claimed notification should be sent")
	}
}

func TestNotificationClaimConcurrent(t *testing.T) {
	s := NewNotificationStore(setupTestDB(t))

	n, err := s.Create(reminderAt(time.Now().Add(-time.Minute)))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const claimants = 8
	var wg sync.WaitGroup
	wins := make(chan bool, claimants)
	for range claimants {
		wg.Add(1)
		go func() {
			defer wg.Done()
			won, err := s.Claim(n.ID)
			if err != nil {
				t.Errorf("claim: %v", err)
				return
			}
			wins <- won
		}()
	}
	wg.Wait()
	close(wins)

	var winners int
	for won := range wins {
		if won {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("got %d winners, want exactly 1", winners)
	}
}

func TestNotificationListByUser(t *testing.T) {
	s := NewNotificationStore(setupTestDB(t))

	for i := range 25 {
		read := i%2 == 0
		if _, err := s.Create(model.Notification{
			UserID: "alice", EventID: int64(i), Type: model.NotifTypeCreated,
			Title: "Event Created", Message: "ok", Read: read, Sent: true,
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := s.ListByUser("alice", false, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 20 {
		t.Errorf("got %d notifications, want capped 20", len(all))
	}
	// Most recent first
	if all[0].EventID != 24 {
		t.Errorf("first event_id = %d, want 24", all[0].EventID)
	}

	unread, err := s.ListByUser("alice", true, 20)
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	for _, n := range unread {
		if n.Read {
			t.Errorf("unread-only list returned read notification %d", n.ID)
		}
	}
}

func TestNotificationMarkRead(t *testing.T) {
	s := NewNotificationStore(setupTestDB(t))

	a, _ := s.Create(model.Notification{UserID: "alice", EventID: 1, Type: model.NotifTypeCreated, Title: "t", Message: "m", Sent: true})
	b, _ := s.Create(model.Notification{UserID: "alice", EventID: 2, Type: model.NotifTypeCreated, Title: "t", Message: "m", Sent: true})

	if err := s.MarkRead([]int64{a.ID, b.ID}); err != nil {
		t.Fatalf("mark read: %v", err)
	}

	got, err := s.GetByID(a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Read {
		t.Error("notification should be read")
	}
}

func TestNotificationDeleteUnsentByEvent(t *testing.T) {
	s := NewNotificationStore(setupTestDB(t))

	pending, _ := s.Create(reminderAt(time.Now().Add(time.Hour)))
	sent := reminderAt(time.Now().Add(-time.Hour))
	sent.Sent = true
	kept, _ := s.Create(sent)

	if err := s.DeleteUnsentByEvent(1); err != nil {
		t.Fatalf("delete unsent: %v", err)
	}

	if got, _ := s.GetByID(pending.ID); got != nil {
		t.Error("pending reminder should be deleted")
	}
	if got, _ := s.GetByID(kept.ID); got == nil {
		t.Error("sent reminder should be kept as history")
	}
}
