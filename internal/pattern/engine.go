// Package pattern learns a user's scheduling habits from their event
// history. Computation is a pure fold over the input events; persistence of
// the result belongs to the caller.
package pattern

import (
	"math"
	"sort"
	"time"

	"github.com/Github-Sonali/ai-calendar/internal/model"
)

const (
	// DefaultDurationMinutes is the average assumed with no history.
	DefaultDurationMinutes = 60

	topTimeSlots      = 5
	topAttendees      = 10
	categoryThreshold = 1 // preferred means used more than this
)

// Compute folds a user's event history into a behavioral profile. The fold
// is order-independent except for tie-breaking, which uses first-encountered
// order so equal inputs always produce equal output. Daily and weekly
// frequencies are measured against now, so the profile is a snapshot.
func Compute(userID string, events []model.Event, now time.Time) model.UserPattern {
	times := newCounter()
	attendees := newCounter()
	categories := newCounter()

	var totalMinutes float64
	var dailyCount, weeklyCount int
	dayAgo := now.Add(-24 * time.Hour)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	for _, e := range events {
		times.add(e.StartTime.Format("15:04"))
		for _, a := range e.Attendees {
			attendees.add(a)
		}
		if e.Category != "" {
			categories.add(e.Category)
		}
		totalMinutes += e.EndTime.Sub(e.StartTime).Minutes()
		if !e.StartTime.Before(dayAgo) {
			dailyCount++
		}
		if !e.StartTime.Before(weekAgo) {
			weeklyCount++
		}
	}

	avgDuration := DefaultDurationMinutes
	if len(events) > 0 {
		avgDuration = int(math.Round(totalMinutes / float64(len(events))))
	}

	preferred := categories.atLeast(categoryThreshold + 1)
	if len(preferred) == 0 {
		// Never empty: downstream consumers test for presence.
		preferred = []string{model.CategoryMeeting}
	}

	return model.UserPattern{
		UserID:                 userID,
		CommonMeetingTimes:     times.top(topTimeSlots),
		AverageMeetingDuration: avgDuration,
		FrequentAttendees:      attendees.top(topAttendees),
		PreferredCategories:    preferred,
		DailyFrequency:         dailyCount,
		WeeklyFrequency:        weeklyCount,
		LastUpdated:            now,
	}
}

// Update recomputes the profile over a wider recent window. It is a full
// recompute rather than a delta merge; the old profile only contributes its
// identity.
func Update(old model.UserPattern, events []model.Event, now time.Time) model.UserPattern {
	return Compute(old.UserID, events, now)
}

// counter counts exact string keys while remembering first-seen order, so
// frequency ties resolve deterministically.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// top returns up to n keys by descending count, first-seen order breaking
// ties.
func (c *counter) top(n int) []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// atLeast returns keys with count >= min, by descending count with
// first-seen tie-breaking.
func (c *counter) atLeast(min int) []string {
	var keys []string
	for _, k := range c.order {
		if c.counts[k] >= min {
			keys = append(keys, k)
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	return keys
}
