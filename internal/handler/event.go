package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Github-Sonali/ai-calendar/internal/model"
	"github.com/Github-Sonali/ai-calendar/internal/notify"
	"github.com/Github-Sonali/ai-calendar/internal/store"
	ws "github.com/Github-Sonali/ai-calendar/internal/websocket"
)

// reminderLead is how far before an event's start its reminder fires.
const reminderLead = 15 * time.Minute

type EventHandler struct {
	events   *store.EventStore
	notifs   *store.NotificationStore
	registry *notify.TimerRegistry
	hub      *ws.Hub
	logger   *slog.Logger
	now      func() time.Time
}

func NewEventHandler(es *store.EventStore, ns *store.NotificationStore, reg *notify.TimerRegistry, hub *ws.Hub, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		events:   es,
		notifs:   ns,
		registry: reg,
		hub:      hub,
		logger:   logger,
		now:      time.Now,
	}
}

type eventRequest struct {
	UserID      string   `json:"user_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Location    string   `json:"location"`
	Attendees   []string `json:"attendees"`
	Category    string   `json:"category"`
	Priority    string   `json:"priority"`
	IsRecurring bool     `json:"is_recurring"`
}

func (h *EventHandler) parseAndValidate(r *http.Request, w http.ResponseWriter) (string, model.EventDraft, bool) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return "", model.EventDraft{}, false
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return "", model.EventDraft{}, false
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return "", model.EventDraft{}, false
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_time must be RFC3339 format")
		return "", model.EventDraft{}, false
	}

	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_time must be RFC3339 format")
		return "", model.EventDraft{}, false
	}

	if !startTime.Before(endTime) {
		writeError(w, http.StatusBadRequest, "start_time must be before end_time")
		return "", model.EventDraft{}, false
	}

	if !model.ValidCategory(req.Category) {
		req.Category = model.CategoryMeeting
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}

	draft := model.EventDraft{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   startTime,
		EndTime:     endTime,
		Location:    req.Location,
		Attendees:   req.Attendees,
		Category:    req.Category,
		Priority:    req.Priority,
		IsRecurring: req.IsRecurring,
	}
	return req.UserID, draft, true
}

// Create handles POST /api/events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, draft, ok := h.parseAndValidate(r, w)
	if !ok {
		return
	}

	event, err := h.events.Create(userID, draft)
	if err != nil {
		h.logger.Error("create event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	h.recordActivity(event, model.NotifTypeCreated, fmt.Sprintf("%q has been added to your calendar", event.Title))
	h.scheduleReminder(event)
	h.hub.Publish(userID, ws.NewMessage("event", "created", event.ID, map[string]any{"user_id": userID}))

	writeJSON(w, http.StatusCreated, event)
}

// List handles GET /api/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}

	var start, end time.Time
	if s := r.URL.Query().Get("start"); s != "" {
		t, err := parseFlexibleTime(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be RFC3339 or YYYY-MM-DD format")
			return
		}
		start = t
	}
	if s := r.URL.Query().Get("end"); s != "" {
		t, err := parseFlexibleTime(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end must be RFC3339 or YYYY-MM-DD format")
			return
		}
		end = t
	}

	events, err := h.events.ListByUser(userID, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

// Get handles GET /api/events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	event, err := h.events.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// Update handles PUT /api/events/{id}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.events.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	userID, draft, ok := h.parseAndValidate(r, w)
	if !ok {
		return
	}

	event, err := h.events.Update(id, draft)
	if err != nil {
		h.logger.Error("update event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	// Reschedule: drop the stale reminder before arming the new one.
	h.registry.Cancel(id)
	if err := h.notifs.DeleteUnsentByEvent(id); err != nil {
		h.logger.Error("delete stale reminders", "event_id", id, "error", err)
	}

	h.recordActivity(event, model.NotifTypeUpdated, fmt.Sprintf("%q has been updated", event.Title))
	h.scheduleReminder(event)
	h.hub.Publish(userID, ws.NewMessage("event", "updated", event.ID, map[string]any{"user_id": userID}))

	writeJSON(w, http.StatusOK, event)
}

// Delete handles DELETE /api/events/{id}
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.events.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	if err := h.events.Delete(id); err != nil {
		h.logger.Error("delete event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	h.registry.Cancel(id)
	if err := h.notifs.DeleteUnsentByEvent(id); err != nil {
		h.logger.Error("delete stale reminders", "event_id", id, "error", err)
	}

	h.recordActivity(existing, model.NotifTypeCancelled, fmt.Sprintf("%q has been cancelled", existing.Title))
	h.hub.Publish(existing.UserID, ws.NewMessage("event", "deleted", id, map[string]any{"user_id": existing.UserID}))

	w.WriteHeader(http.StatusNoContent)
}

// recordActivity writes an already-delivered activity notification. These
// never enter the reminder pipeline: they are born sent.
func (h *EventHandler) recordActivity(event *model.Event, notifType, message string) {
	_, err := h.notifs.Create(model.Notification{
		UserID:  event.UserID,
		EventID: event.ID,
		Type:    notifType,
		Title:   "Event " + notifType,
		Message: message,
		Sent:    true,
	})
	if err != nil {
		h.logger.Error("record activity notification", "event_id", event.ID, "error", err)
	}
}

// scheduleReminder creates the unsent reminder record and arms the in-process
// timer. Events already inside the lead window get no reminder at all.
func (h *EventHandler) scheduleReminder(event *model.Event) {
	remindAt := event.StartTime.Add(-reminderLead)
	if !remindAt.After(h.now()) {
		return
	}

	_, err := h.notifs.Create(model.Notification{
		UserID:       event.UserID,
		EventID:      event.ID,
		Type:         model.NotifTypeReminder,
		Title:        "Upcoming: " + event.Title,
		Message:      fmt.Sprintf("%q starts in %d minutes", event.Title, int(reminderLead.Minutes())),
		ScheduledFor: &remindAt,
	})
	if err != nil {
		h.logger.Error("create reminder", "event_id", event.ID, "error", err)
		return
	}

	h.registry.Arm(event.ID, remindAt, notify.Delivery{
		UserID:             event.UserID,
		Title:              "Upcoming: " + event.Title,
		Body:               fmt.Sprintf("%q starts in %d minutes", event.Title, int(reminderLead.Minutes())),
		Tag:                fmt.Sprintf("event-%d", event.ID),
		RequireInteraction: true,
	})
}
