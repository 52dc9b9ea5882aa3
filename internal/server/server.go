package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Github-Sonali/ai-calendar/internal/extract"
	"github.com/Github-Sonali/ai-calendar/internal/handler"
	"github.com/Github-Sonali/ai-calendar/internal/middleware"
	"github.com/Github-Sonali/ai-calendar/internal/notify"
	"github.com/Github-Sonali/ai-calendar/internal/ollama"
	"github.com/Github-Sonali/ai-calendar/internal/store"
	ws "github.com/Github-Sonali/ai-calendar/internal/websocket"
)

// Config carries the runtime settings the server needs beyond the database.
type Config struct {
	OllamaURL       string
	OllamaModel     string
	OllamaTimeout   time.Duration
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	CronSecret      string
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	eventH      *handler.EventHandler
	aiH         *handler.AIHandler
	patternH    *handler.PatternHandler
	notifH      *handler.NotificationHandler
	pushH       *handler.PushHandler
	cronH       *handler.CronHandler
	registry    *notify.TimerRegistry
	sweeper     *notify.Sweeper
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	eventStore := store.NewEventStore(db)
	notifStore := store.NewNotificationStore(db)
	patternStore := store.NewPatternStore(db)
	pushStore := store.NewPushStore(db)

	client := ollama.NewClient(ollama.Config{
		BaseURL: cfg.OllamaURL,
		Model:   cfg.OllamaModel,
		Timeout: cfg.OllamaTimeout,
	})
	extractor := extract.NewExtractor(client, logger.With("component", "extract"))

	// Every delivery fans out to connected WebSocket clients; web push joins
	// in only when VAPID keys are configured.
	deliverer := notify.Fanout{notify.NewHubDeliverer(hub)}
	var pushH *handler.PushHandler
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushDeliverer := notify.NewPushDeliverer(notify.VAPIDConfig{
			PublicKey:  cfg.VAPIDPublicKey,
			PrivateKey: cfg.VAPIDPrivateKey,
		}, pushStore, logger.With("component", "push"))
		deliverer = append(deliverer, pushDeliverer)
		pushH = handler.NewPushHandler(pushStore, cfg.VAPIDPublicKey, logger.With("component", "push_handler"))
	}

	registry := notify.NewTimerRegistry(deliverer, logger.With("component", "timers"))
	sweeper := notify.NewSweeper(notifStore, deliverer, logger.With("component", "sweep"))

	return &Server{
		db:          db,
		hub:         hub,
		eventH:      handler.NewEventHandler(eventStore, notifStore, registry, hub, logger.With("component", "events")),
		aiH:         handler.NewAIHandler(extractor, client, patternStore, eventStore, logger.With("component", "ai")),
		patternH:    handler.NewPatternHandler(patternStore, eventStore, logger.With("component", "patterns")),
		notifH:      handler.NewNotificationHandler(notifStore, logger.With("component", "notifications")),
		pushH:       pushH,
		cronH:       handler.NewCronHandler(sweeper, cfg.CronSecret, logger.With("component", "cron")),
		registry:    registry,
		sweeper:     sweeper,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// Sweeper returns the due-reminder sweeper so main can run its loop.
func (s *Server) Sweeper() *notify.Sweeper {
	return s.sweeper
}

// Registry returns the timer registry for shutdown cleanup.
func (s *Server) Registry() *notify.TimerRegistry {
	return s.registry
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Event API routes
	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("GET /api/events/{id}", s.eventH.Get)
	mux.HandleFunc("PUT /api/events/{id}", s.eventH.Update)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)

	// AI routes, rate limited: each call ties up a model inference slot.
	mux.HandleFunc("POST /api/ai/parse", s.rateLimitedHandler(s.aiH.Parse))
	mux.HandleFunc("POST /api/ai/suggest", s.rateLimitedHandler(s.aiH.Suggest))

	// Pattern API routes
	mux.HandleFunc("GET /api/patterns", s.patternH.Get)
	mux.HandleFunc("POST /api/patterns/refresh", s.patternH.Refresh)

	// Notification API routes
	mux.HandleFunc("GET /api/notifications", s.notifH.List)
	mux.HandleFunc("POST /api/notifications/read", s.notifH.MarkRead)

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}

	// External scheduler entry point
	mux.HandleFunc("POST /api/cron/notifications", s.cronH.Sweep)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	chain := middleware.RequestID(mux)
	return middleware.RequestLogger(s.logger.With("component", "http"))(chain)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
