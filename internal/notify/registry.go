package notify

import (
	"log/slog"
	"sync"
	"time"
)

// TimerRegistry owns the client-context countdowns, at most one per event.
// Its lifetime is tied to the session that created it; process exit simply
// loses the pending timers and the server sweep remains the durable
// backstop. Firing does not mark the shared record sent — only the sweep
// claims records.
type TimerRegistry struct {
	mu        sync.Mutex
	timers    map[int64]*time.Timer
	deliverer Deliverer
	logger    *slog.Logger
}

func NewTimerRegistry(deliverer Deliverer, logger *slog.Logger) *TimerRegistry {
	return &TimerRegistry{
		timers:    make(map[int64]*time.Timer),
		deliverer: deliverer,
		logger:    logger,
	}
}

// Arm schedules d for delivery at scheduledFor, keyed by event identity.
// A past-due instant is dropped (returns false) rather than fired late.
// Re-arming an event cancels the prior countdown first: last arm wins,
// never two live countdowns for one key.
func (r *TimerRegistry) Arm(eventID int64, scheduledFor time.Time, d Delivery) bool {
	delay := time.Until(scheduledFor)
	if delay <= 0 {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.timers[eventID]; ok {
		old.Stop()
	}
	r.timers[eventID] = time.AfterFunc(delay, func() {
		r.mu.Lock()
		delete(r.timers, eventID)
		r.mu.Unlock()

		if err := r.deliverer.Deliver(d); err != nil {
			r.logger.Warn("timer delivery failed", "event_id", eventID, "error", err)
		}
	})
	return true
}

// Cancel stops and discards the countdown for an event, if any. Callers
// must invoke it synchronously when the source event is edited or deleted.
func (r *TimerRegistry) Cancel(eventID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.timers[eventID]; ok {
		t.Stop()
		delete(r.timers, eventID)
	}
}

// CancelAll tears down every pending countdown, e.g. on session end.
func (r *TimerRegistry) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
}

// Pending reports the number of live countdowns.
func (r *TimerRegistry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}
