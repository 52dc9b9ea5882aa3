// Package prompt builds the structured prompts sent to the generation
// backend. Keeping them in one place makes the output-format contract easy
// to audit against the extraction parser.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/Github-Sonali/ai-calendar/internal/model"
)

const jsonOnly = "IMPORTANT: Respond ONLY with valid JSON. No explanatory text before or after. No markdown formatting. Just the raw JSON object."

// ParseEvent asks the model to turn free text into calendar event fields.
// now anchors the "today" default the model is told to use.
func ParseEvent(input string, now time.Time) string {
	return fmt.Sprintf(`You are a calendar assistant. Parse the following natural language input into calendar event details.

Input: %q

Extract the following information:
- title: The event title/subject
- date: The date (if mentioned) in ISO format (YYYY-MM-DD)
- time: The time (if mentioned) in 24-hour format (HH:MM)
- duration: How long the event lasts (in minutes, as a number)
- location: Where the event takes place
- attendees: List of people attending (as array)
- category: One of [meeting, task, reminder, personal, work]
- description: Any additional details

If information is not provided, use these defaults:
- date: today's date (%s)
- time: "09:00"
- duration: 60
- category: "meeting"

Example response format:
{
  "title": "Team Meeting",
  "date": "2024-10-26",
  "time": "14:00",
  "duration": 60,
  "location": "Conference Room",
  "attendees": ["John", "Sarah"],
  "category": "meeting",
  "description": "Weekly team sync",
  "confidence": 0.95
}

%s`, input, now.Format("2006-01-02"), jsonOnly)
}

// SuggestTime asks for meeting-slot suggestions informed by the user's
// learned scheduling habits.
func SuggestTime(p model.UserPattern) string {
	return fmt.Sprintf(`Based on the user's scheduling patterns, suggest optimal meeting times.

User patterns:
- Common meeting times: %s
- Average meeting duration: %d minutes
- Frequent attendees: %s

Suggest 3 optimal time slots for the next 7 days.
Consider work hours (9 AM - 5 PM) and avoid lunch time (12 PM - 1 PM).

Example response format:
{
  "suggestions": [
    {
      "date": "2024-10-27",
      "time": "10:00",
      "reason": "Morning slot aligns with your usual meeting pattern"
    }
  ]
}

%s`, strings.Join(p.CommonMeetingTimes, ", "), p.AverageMeetingDuration, strings.Join(p.FrequentAttendees, ", "), jsonOnly)
}

// CategorizeEvent asks the model to classify an existing event.
func CategorizeEvent(title, description string) string {
	return fmt.Sprintf(`Analyze this calendar event and determine its category and priority.

Title: %q
Description: %q

Categories: meeting, task, reminder, personal, work
Priority levels: low, medium, high

Consider:
- Keywords indicating urgency (urgent, ASAP, important)
- Meeting types (standup, review, 1-on-1)
- Personal vs professional context

Example response:
{
  "category": "meeting",
  "priority": "high",
  "reasoning": "Client meeting indicates high priority business interaction"
}

%s`, title, description, jsonOnly)
}

// SummarizeEvents asks for a short daily brief over the given events.
func SummarizeEvents(events []model.Event) string {
	var b strings.Builder
	b.WriteString("Summarize these calendar events for a daily brief:\n\nEvents:\n")
	for _, e := range events {
		fmt.Fprintf(&b, "- %s at %s (%s)\n", e.Title, e.StartTime.Format(time.RFC3339), e.Category)
	}
	b.WriteString(`
Create a brief, natural summary highlighting:
- Key meetings or deadlines
- Time blocks for focused work
- Any conflicts or busy periods

Keep it concise and actionable.

Example response:
{
  "summary": "You have 3 meetings today starting with the team standup at 9 AM.",
  "keyPoints": ["Team standup at 9 AM"],
  "conflicts": []
}

`)
	b.WriteString(jsonOnly)
	return b.String()
}
