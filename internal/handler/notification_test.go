package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Github-Sonali/ai-calendar/internal/model"
	"github.com/Github-Sonali/ai-calendar/internal/store"
)

func setupNotificationHandler(t *testing.T) (*NotificationHandler, *store.NotificationStore) {
	t.Helper()
	db := setupTestDB(t)
	notifs := store.NewNotificationStore(db)
	return NewNotificationHandler(notifs, testLogger()), notifs
}

func seedNotification(t *testing.T, notifs *store.NotificationStore, userID string, read bool) *model.Notification {
	t.Helper()
	n, err := notifs.Create(model.Notification{
		UserID:  userID,
		Type:    model.NotifTypeCreated,
		Title:   "Event created",
		Message: "something happened",
		Read:    read,
		Sent:    true,
	})
	if err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return n
}

func TestNotificationList(t *testing.T) {
	h, notifs := setupNotificationHandler(t)
	seedNotification(t, notifs, "alice", false)
	seedNotification(t, notifs, "alice", true)
	seedNotification(t, notifs, "bob", false)

	req := httptest.NewRequest("GET", "/api/notifications?user_id=alice", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got []model.Notification
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

func TestNotificationListUnreadOnly(t *testing.T) {
	h, notifs := setupNotificationHandler(t)
	seedNotification(t, notifs, "alice", false)
	seedNotification(t, notifs, "alice", true)

	req := httptest.NewRequest("GET", "/api/notifications?user_id=alice&unread=true", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	var got []model.Notification
	json.NewDecoder(rec.Body).Decode(&got)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Read {
		t.Error("unread filter returned a read notification")
	}
}

func TestNotificationListCapped(t *testing.T) {
	h, notifs := setupNotificationHandler(t)
	for i := 0; i < 25; i++ {
		seedNotification(t, notifs, "alice", false)
	}

	req := httptest.NewRequest("GET", "/api/notifications?user_id=alice", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	var got []model.Notification
	json.NewDecoder(rec.Body).Decode(&got)
	if len(got) != notificationLimit {
		t.Errorf("len = %d, want %d", len(got), notificationLimit)
	}
}

func TestNotificationMarkRead(t *testing.T) {
	h, notifs := setupNotificationHandler(t)
	n := seedNotification(t, notifs, "alice", false)

	body, _ := json.Marshal(markReadRequest{IDs: []int64{n.ID}})
	req := httptest.NewRequest("POST", "/api/notifications/read", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.MarkRead(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	got, err := notifs.GetByID(n.ID)
	if err != nil {
		t.Fatalf("get notification: %v", err)
	}
	if !got.Read {
		t.Error("notification should be read")
	}
}

func TestNotificationMarkReadEmpty(t *testing.T) {
	h, _ := setupNotificationHandler(t)

	req := httptest.NewRequest("POST", "/api/notifications/read", bytes.NewReader([]byte(`{"ids":[]}`)))
	rec := httptest.NewRecorder()
	h.MarkRead(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
