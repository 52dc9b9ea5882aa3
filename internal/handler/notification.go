package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Github-Sonali/ai-calendar/internal/model"
	"github.com/Github-Sonali/ai-calendar/internal/store"
)

// notificationLimit caps how many notifications a single list call returns.
const notificationLimit = 20

type NotificationHandler struct {
	notifs *store.NotificationStore
	logger *slog.Logger
}

func NewNotificationHandler(ns *store.NotificationStore, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{notifs: ns, logger: logger}
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifs, err := h.notifs.ListByUser(userID, unreadOnly, notificationLimit)
	if err != nil {
		h.logger.Error("list notifications", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifs == nil {
		notifs = []model.Notification{}
	}

	writeJSON(w, http.StatusOK, notifs)
}

type markReadRequest struct {
	IDs []int64 `json:"ids"`
}

// MarkRead handles POST /api/notifications/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids is required")
		return
	}

	if err := h.notifs.MarkRead(req.IDs); err != nil {
		h.logger.Error("mark notifications read", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"updated": len(req.IDs)})
}
