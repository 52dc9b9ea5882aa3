package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Github-Sonali/ai-calendar/internal/database"
	"github.com/Github-Sonali/ai-calendar/internal/logging"
	"github.com/Github-Sonali/ai-calendar/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("CALENDAR_LOG_LEVEL"), os.Getenv("CALENDAR_LOG_FORMAT"))

	port := os.Getenv("CALENDAR_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("CALENDAR_DB_PATH")
	if dbPath == "" {
		dbPath = "calendar.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := server.Config{
		OllamaURL:       os.Getenv("OLLAMA_URL"),
		OllamaModel:     os.Getenv("OLLAMA_MODEL"),
		VAPIDPublicKey:  os.Getenv("CALENDAR_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("CALENDAR_VAPID_PRIVATE_KEY"),
		CronSecret:      os.Getenv("CALENDAR_CRON_SECRET"),
	}

	srv := server.New(db, cfg, logger)

	// Background sweep catches reminders whose in-process timers were lost
	// to a restart.
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	srv.Sweeper().Start(sweepCtx)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second, // generation requests are slow
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancelSweep()
	srv.Sweeper().Stop()
	srv.Registry().CancelAll()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
