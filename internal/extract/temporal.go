package extract

import (
	"strings"
	"time"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ResolveDateTime turns a loosely-specified date and time into an absolute
// instant anchored at now. The date part may be empty (today), a relative
// phrase ("today", "tomorrow", "next week", "next monday"), an ISO calendar
// date, or free text (best-effort parse, falling back to today — downstream
// confidence scoring already reflects extraction uncertainty, so lenience
// here is not silent data loss). A time part of the form "HH:MM" overwrites
// the hour and minute; otherwise now's wall-clock time-of-day stands.
func ResolveDateTime(datePart, timePart string, now time.Time) time.Time {
	result := now

	if datePart != "" {
		switch lower := strings.ToLower(strings.TrimSpace(datePart)); lower {
		case "today":
			result = now
		case "tomorrow":
			result = now.AddDate(0, 0, 1)
		case "next week":
			result = now.AddDate(0, 0, 7)
		default:
			if day, ok := strings.CutPrefix(lower, "next "); ok {
				if wd, known := weekdays[strings.TrimSpace(day)]; known {
					result = nextWeekday(now, wd)
					break
				}
			}
			// Month-name layouts are case-sensitive; parse the original text.
			result = parseCalendarDate(strings.TrimSpace(datePart), now)
		}
	}

	if timePart != "" {
		if tod, err := time.Parse("15:04", timePart); err == nil {
			result = time.Date(result.Year(), result.Month(), result.Day(),
				tod.Hour(), tod.Minute(), 0, 0, result.Location())
		}
	}

	return result
}

// nextWeekday returns the next future occurrence of the target weekday —
// always 7 days out when today already is that weekday, never 0.
func nextWeekday(now time.Time, target time.Weekday) time.Time {
	days := (int(target) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return now.AddDate(0, 0, days)
}

func parseCalendarDate(s string, now time.Time) time.Time {
	if d, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		// Calendar date only: keep now's time-of-day.
		return time.Date(d.Year(), d.Month(), d.Day(),
			now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "January 2, 2006", "Jan 2, 2006"} {
		if d, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return d
		}
	}
	return now
}

// DeriveEnd returns start plus the given duration in minutes. Callers
// substitute the 60-minute default before calling; durationMinutes is
// assumed positive.
func DeriveEnd(start time.Time, durationMinutes int) time.Time {
	return start.Add(time.Duration(durationMinutes) * time.Minute)
}
