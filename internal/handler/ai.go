package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Github-Sonali/ai-calendar/internal/extract"
	"github.com/Github-Sonali/ai-calendar/internal/model"
	"github.com/Github-Sonali/ai-calendar/internal/ollama"
	"github.com/Github-Sonali/ai-calendar/internal/pattern"
	"github.com/Github-Sonali/ai-calendar/internal/prompt"
	"github.com/Github-Sonali/ai-calendar/internal/store"
)

// suggestWindow is how many recent events feed a lazily computed profile.
const suggestWindow = 50

type AIHandler struct {
	extractor *extract.Extractor
	client    *ollama.Client
	patterns  *store.PatternStore
	events    *store.EventStore
	logger    *slog.Logger
}

func NewAIHandler(ex *extract.Extractor, client *ollama.Client, ps *store.PatternStore, es *store.EventStore, logger *slog.Logger) *AIHandler {
	return &AIHandler{
		extractor: ex,
		client:    client,
		patterns:  ps,
		events:    es,
		logger:    logger,
	}
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Event      model.EventDraft `json:"event"`
	Confidence float64          `json:"confidence"`
	Degraded   bool             `json:"degraded"`
	Reason     string           `json:"reason,omitempty"`
}

// Parse handles POST /api/ai/parse
func (h *AIHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	result, err := h.extractor.Extract(r.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrBackendUnavailable):
			writeError(w, http.StatusServiceUnavailable, "generation backend unavailable")
		case errors.Is(err, extract.ErrExtractionFailed):
			writeError(w, http.StatusInternalServerError, "failed to extract event details")
		default:
			h.logger.Error("extract", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to extract event details")
		}
		return
	}

	writeJSON(w, http.StatusOK, parseResponse{
		Event:      result.Draft,
		Confidence: result.Confidence,
		Degraded:   result.Outcome == extract.OutcomeDegraded,
		Reason:     result.Reason,
	})
}

type suggestRequest struct {
	UserID string `json:"user_id"`
}

// Suggest handles POST /api/ai/suggest
func (h *AIHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	p, err := h.userPattern(req.UserID)
	if err != nil {
		h.logger.Error("load pattern", "user_id", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load user patterns")
		return
	}

	if !h.client.HealthCheck(r.Context()) {
		writeError(w, http.StatusServiceUnavailable, "generation backend unavailable")
		return
	}

	suggestion, err := h.client.Generate(r.Context(), prompt.SuggestTime(*p))
	if err != nil {
		h.logger.Error("generate suggestion", "error", err)
		writeError(w, http.StatusServiceUnavailable, "generation backend unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"suggestion": strings.TrimSpace(suggestion)})
}

// userPattern returns the stored profile, computing and persisting one from
// recent history when none exists yet.
func (h *AIHandler) userPattern(userID string) (*model.UserPattern, error) {
	p, err := h.patterns.Get(userID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	events, err := h.events.ListRecent(userID, suggestWindow)
	if err != nil {
		return nil, err
	}
	computed := pattern.Compute(userID, events, time.Now().UTC())
	if err := h.patterns.Upsert(computed); err != nil {
		return nil, err
	}
	return &computed, nil
}
