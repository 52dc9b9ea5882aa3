package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Github-Sonali/ai-calendar/internal/pattern"
	"github.com/Github-Sonali/ai-calendar/internal/store"
)

// refreshWindow is the larger history window a forced refresh consumes.
const refreshWindow = 100

type PatternHandler struct {
	patterns *store.PatternStore
	events   *store.EventStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewPatternHandler(ps *store.PatternStore, es *store.EventStore, logger *slog.Logger) *PatternHandler {
	return &PatternHandler{
		patterns: ps,
		events:   es,
		logger:   logger,
		now:      time.Now,
	}
}

// Get handles GET /api/patterns. A missing profile is computed on the spot
// from the user's recent history and persisted.
func (h *PatternHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}

	p, err := h.patterns.Get(userID)
	if err != nil {
		h.logger.Error("get pattern", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get patterns")
		return
	}
	if p != nil {
		writeJSON(w, http.StatusOK, p)
		return
	}

	events, err := h.events.ListRecent(userID, suggestWindow)
	if err != nil {
		h.logger.Error("list events for pattern", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to analyze events")
		return
	}

	computed := pattern.Compute(userID, events, h.now().UTC())
	if err := h.patterns.Upsert(computed); err != nil {
		h.logger.Error("save pattern", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save patterns")
		return
	}

	writeJSON(w, http.StatusOK, computed)
}

type refreshRequest struct {
	UserID string `json:"user_id"`
}

// Refresh handles POST /api/patterns/refresh. It recomputes the profile over
// a deeper history window and fails when the user has no events at all.
func (h *PatternHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	events, err := h.events.ListRecent(req.UserID, refreshWindow)
	if err != nil {
		h.logger.Error("list events for refresh", "user_id", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to analyze events")
		return
	}
	if len(events) == 0 {
		writeError(w, http.StatusNotFound, "no events found for user")
		return
	}

	now := h.now().UTC()
	computed := pattern.Compute(req.UserID, events, now)
	if existing, err := h.patterns.Get(req.UserID); err == nil && existing != nil {
		computed = pattern.Update(*existing, events, now)
	}

	if err := h.patterns.Upsert(computed); err != nil {
		h.logger.Error("save pattern", "user_id", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save patterns")
		return
	}

	writeJSON(w, http.StatusOK, computed)
}
