// Package extract turns free-text scheduling requests into structured event
// drafts via the generation backend, with a degraded per-field fallback path
// when the backend returns malformed output.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"

	"github.com/Github-Sonali/ai-calendar/internal/model"
	"github.com/Github-Sonali/ai-calendar/internal/ollama"
	"github.com/Github-Sonali/ai-calendar/internal/prompt"
)

var (
	// ErrBackendUnavailable means the generation backend failed its health
	// check; callers should treat it as a retryable precondition failure.
	ErrBackendUnavailable = errors.New("generation backend unavailable")

	// ErrExtractionFailed means both the strict and fallback paths produced
	// nothing usable. Distinct from a low-confidence draft, which is a
	// success.
	ErrExtractionFailed = errors.New("extraction failed")
)

const (
	defaultTitle       = "Untitled Event"
	defaultDurationMin = 60
	strictConfidence   = 0.8 // backend omitted its own confidence
	fallbackConfidence = 0.5 // per-field recovery, fixed low trust
	fallbackTime       = "09:00"
)

// Outcome distinguishes how a draft was produced.
type Outcome int

const (
	// OutcomeStrict means the backend output parsed as structured JSON.
	OutcomeStrict Outcome = iota
	// OutcomeDegraded means the draft was recovered field-by-field from
	// malformed output; confidence is fixed low.
	OutcomeDegraded
)

// Result is an extraction outcome: a complete draft plus how much to trust it.
type Result struct {
	Draft      model.EventDraft
	Confidence float64
	Outcome    Outcome
	Reason     string // what broke the strict parse, when degraded
}

// Extractor orchestrates prompt generation, strict parsing, and fallback
// recovery.
type Extractor struct {
	client *ollama.Client
	logger *slog.Logger
	now    func() time.Time
}

func NewExtractor(client *ollama.Client, logger *slog.Logger) *Extractor {
	return &Extractor{client: client, logger: logger, now: time.Now}
}

// parsedFields is the shape the parse-event prompt instructs the model to
// emit. Duration tolerates quoted numbers — models quote them often enough
// that rejecting the whole object over it would waste good output.
type parsedFields struct {
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Duration    flexInt  `json:"duration"`
	Location    string   `json:"location"`
	Attendees   []string `json:"attendees"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Confidence  float64  `json:"confidence"`
}

type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("duration %q is not a number", s)
	}
	*f = flexInt(n)
	return nil
}

// Extract turns user text into a structured event draft. The generation
// backend is health-checked before any generation attempt; the temporal
// resolver runs exactly once per extraction.
func (e *Extractor) Extract(ctx context.Context, input string) (*Result, error) {
	if !e.client.HealthCheck(ctx) {
		return nil, ErrBackendUnavailable
	}

	raw, err := e.client.Generate(ctx, prompt.ParseEvent(input, e.now()))
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	result := Result{Outcome: OutcomeStrict}
	fields, parseErr := parseStrict(raw)
	if parseErr != nil {
		e.logger.Warn("strict parse failed, using fallback extraction", "error", parseErr)
		fields, err = parseFallback(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrExtractionFailed, parseErr)
		}
		result.Outcome = OutcomeDegraded
		result.Reason = parseErr.Error()
	}

	result.Confidence = fields.Confidence
	if result.Outcome == OutcomeDegraded {
		result.Confidence = fallbackConfidence
	} else if result.Confidence <= 0 || result.Confidence > 1 {
		result.Confidence = strictConfidence
	}

	title := strings.TrimSpace(fields.Title)
	if title == "" {
		title = defaultTitle
	}

	category := fields.Category
	if !model.ValidCategory(category) {
		category = model.CategoryMeeting
	}

	duration := int(fields.Duration)
	if duration <= 0 {
		duration = defaultDurationMin
	}

	start := ResolveDateTime(fields.Date, fields.Time, e.now())
	result.Draft = model.EventDraft{
		Title:       title,
		Description: strings.TrimSpace(fields.Description),
		StartTime:   start,
		EndTime:     DeriveEnd(start, duration),
		Location:    strings.TrimSpace(fields.Location),
		Attendees:   dedupeAttendees(fields.Attendees),
		Category:    category,
		Priority:    "medium",
	}
	return &result, nil
}

// parseStrict cleans the raw output and attempts a structured parse: strip
// code fences, slice the outermost object literal, unmarshal, and — when
// that fails — run a JSON repair pass before giving up.
func parseStrict(raw string) (*parsedFields, error) {
	cleaned := stripCodeFences(raw)
	obj, ok := braceSlice(cleaned)
	if !ok {
		return nil, errors.New("no object literal in output")
	}

	var fields parsedFields
	if err := json.Unmarshal([]byte(obj), &fields); err == nil {
		return &fields, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(obj)
	if repairErr != nil {
		return nil, fmt.Errorf("unparseable object: %s", repairErr)
	}
	if err := json.Unmarshal([]byte(repaired), &fields); err != nil {
		return nil, fmt.Errorf("repaired output still invalid: %s", err)
	}
	return &fields, nil
}

// parseFallback recovers individual fields from unparseable output. Missing
// fields take the same defaults the prompt instructs the model to use. It
// only fails outright on empty output — a hard failure must stay
// distinguishable from a low-confidence draft.
func parseFallback(raw string) (*parsedFields, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("empty generation output")
	}

	fields := parsedFields{
		Title:    defaultTitle,
		Time:     fallbackTime,
		Duration: defaultDurationMin,
		Category: model.CategoryMeeting,
	}
	if v, ok := ExtractField(raw, "title"); ok {
		fields.Title = v
	}
	if v, ok := ExtractField(raw, "date"); ok {
		fields.Date = v
	}
	if v, ok := ExtractField(raw, "time"); ok {
		fields.Time = v
	}
	if v, ok := ExtractField(raw, "duration"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			fields.Duration = flexInt(n)
		}
	}
	if v, ok := ExtractField(raw, "category"); ok {
		fields.Category = v
	}
	if v, ok := ExtractField(raw, "location"); ok {
		fields.Location = v
	}
	return &fields, nil
}

func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// braceSlice returns the outermost {...} substring, matching the first
// opening brace with the last closing one.
func braceSlice(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// dedupeAttendees removes case-insensitive duplicates, keeping first-seen
// order and spelling.
func dedupeAttendees(attendees []string) []string {
	if len(attendees) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(attendees))
	var out []string
	for _, a := range attendees {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		key := strings.ToLower(a)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
