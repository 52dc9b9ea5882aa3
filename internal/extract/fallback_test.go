package extract

import "testing"

func TestExtractFieldFromInvalidObject(t *testing.T) {
	// Trailing comment makes this invalid as structured data; individual
	// fields are still recoverable.
	raw := `{"title": "Team Sync", "date": "2024-10-26"} // my best guess`

	title, ok := ExtractField(raw, "title")
	if !ok || title != "Team Sync" {
		t.Errorf("title = %q, %v; want %q, true", title, ok, "Team Sync")
	}

	date, ok := ExtractField(raw, "date")
	if !ok || date != "2024-10-26" {
		t.Errorf("date = %q, %v; want %q, true", date, ok, "2024-10-26")
	}
}

func TestExtractFieldUnquotedKey(t *testing.T) {
	raw := `title: "Dentist", time: "15:30"`

	title, ok := ExtractField(raw, "title")
	if !ok || title != "Dentist" {
		t.Errorf("title = %q, %v", title, ok)
	}
}

func TestExtractFieldUnquotedValue(t *testing.T) {
	raw := `{"duration": 45, "confidence": 0.9}`

	duration, ok := ExtractField(raw, "duration")
	if !ok || duration != "45" {
		t.Errorf("duration = %q, %v; want \"45\", true", duration, ok)
	}
}

func TestExtractFieldQuotedBeforeLoose(t *testing.T) {
	// The fully-quoted pattern must win so the loose pattern cannot
	// capture the trailing quote and comma.
	raw := `{"category": "work", "title": "Review"}`

	category, ok := ExtractField(raw, "category")
	if !ok || category != "work" {
		t.Errorf("category = %q, %v; want %q, true", category, ok, "work")
	}
}

func TestExtractFieldAbsent(t *testing.T) {
	raw := `I think you mean a meeting`

	if v, ok := ExtractField(raw, "title"); ok {
		t.Errorf("expected no match, got %q", v)
	}
}

func TestExtractFieldCaseInsensitive(t *testing.T) {
	raw := `{"Title": "Standup"}`

	title, ok := ExtractField(raw, "title")
	if !ok || title != "Standup" {
		t.Errorf("title = %q, %v", title, ok)
	}
}
