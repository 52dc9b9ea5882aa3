package handler

import (
	"database/sql"
	"log/slog"
	"sync"
	"testing"

	"github.com/Github-Sonali/ai-calendar/internal/database"
	"github.com/Github-Sonali/ai-calendar/internal/notify"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	// Each pooled connection gets its own :memory: database, so keep one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// fakeDeliverer records deliveries handed to the timer registry or sweeper.
type fakeDeliverer struct {
	mu         sync.Mutex
	deliveries []notify.Delivery
}

func (f *fakeDeliverer) Deliver(d notify.Delivery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deliveries = append(f.deliveries, d)
	return nil
}

func (f *fakeDeliverer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deliveries)
}

func testLogger() *slog.Logger {
	return slog.Default()
}
