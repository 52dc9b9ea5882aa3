package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Github-Sonali/ai-calendar/internal/store"
)

const defaultSweepInterval = 60 * time.Second

// Sweeper periodically claims and delivers due, unsent reminders. Multiple
// passes may overlap (ticker plus the manual trigger endpoint); the store's
// conditional claim guarantees each reminder is delivered by exactly one of
// them.
type Sweeper struct {
	mu        sync.RWMutex
	notifs    *store.NotificationStore
	deliverer Deliverer
	interval  time.Duration
	logger    *slog.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewSweeper(notifs *store.NotificationStore, deliverer Deliverer, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		notifs:    notifs,
		deliverer: deliverer,
		interval:  defaultSweepInterval,
		logger:    logger,
	}
}

// Start begins the periodic sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.RunOnce(); err != nil {
					s.logger.Error("sweep failed", "error", err)
				}
			}
		}
	}()
}

// Stop gracefully stops the sweep loop.
func (s *Sweeper) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// RunOnce performs a single sweep pass and returns the number of reminders
// this pass claimed. A reminder already claimed by a concurrent pass is
// skipped silently: the outcome (delivered exactly once) is still
// satisfied. Delivery failures are logged per item and never abort the
// batch; a claimed reminder is attempted at most once, with no retry.
func (s *Sweeper) RunOnce() (int, error) {
	due, err := s.notifs.ListDue(time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("list due reminders: %w", err)
	}

	processed := 0
	for _, n := range due {
		won, err := s.notifs.Claim(n.ID)
		if err != nil {
			s.logger.Error("claim failed", "notification_id", n.ID, "error", err)
			continue
		}
		if !won {
			continue
		}
		processed++

		err = s.deliverer.Deliver(Delivery{
			UserID:             n.UserID,
			Title:              n.Title,
			Body:               n.Message,
			Tag:                fmt.Sprintf("event-%d", n.EventID),
			RequireInteraction: true,
		})
		if err != nil {
			s.logger.Warn("reminder delivery failed", "notification_id", n.ID, "error", err)
		}
	}

	if processed > 0 {
		s.logger.Info("sweep complete", "processed", processed, "due", len(due))
	}
	return processed, nil
}
