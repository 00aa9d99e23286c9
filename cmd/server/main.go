package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"content-summarizer-web/internal/backend"
	"content-summarizer-web/internal/config"
	"content-summarizer-web/internal/database"
	"content-summarizer-web/internal/handlers"
	"content-summarizer-web/internal/history"
	"content-summarizer-web/internal/logger"
	"content-summarizer-web/internal/middleware"
	"content-summarizer-web/internal/models"
	"content-summarizer-web/internal/router"
	"content-summarizer-web/internal/views"
	"content-summarizer-web/internal/websocket"
	"content-summarizer-web/internal/worker"
)

// lateViews forwards to the hub once it exists; the registry and the hub
// each need the other.
type lateViews struct {
	hub *websocket.Hub
}

func (l *lateViews) Publish(viewID string, msg models.WSMessage) {
	if l.hub != nil {
		l.hub.Publish(viewID, msg)
	}
}

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("✗ Configuration invalid: %v", err)
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	log.WithFields(logrus.Fields{"env": cfg.Env, "api_url": cfg.APIURL}).Info("Starting content summarizer")

	// ──── Step 2: Connect Redis (optional) ────
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("✗ Redis connection failed")
		}
		defer redisClient.Close()
		log.Info("✓ Redis connected, realtime updates fan out across replicas")
	} else {
		log.Info("✓ Redis not configured, realtime updates stay in process")
	}

	// ──── Step 3: Backend Client and Views ────
	client := backend.NewClient(cfg.APIURL, log)
	pool := worker.NewPool(client, cfg.SummaryWorkers, log)
	visitors := middleware.NewVisitorAuth(cfg.SessionSecret, cfg.UserID, cfg.IsProduction())

	late := &lateViews{}
	registry := views.NewRegistry(pool, late, cfg.ViewTTL, log)

	// ──── Step 4: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClient, visitors, registry, log)
	late.hub = wsHub
	log.Info("✓ WebSocket hub started")

	// ──── Step 5: Start HTTP Server ────
	r, stopLimiter := router.New(router.Options{
		Visitors:         visitors,
		Summarize:        handlers.NewSummarizeHandler(registry, log),
		History:          handlers.NewHistoryHandler(history.NewReader(client, time.Local, log), log),
		System:           handlers.NewSystemHandler(cfg.APIURL, registry.Count, log),
		Hub:              wsHub,
		FrontendOrigins:  cfg.FrontendOrigins,
		SubmitRatePerMin: cfg.SubmitRatePerMin,
		Log:              log,
	})

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down...")
		stopLimiter()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("HTTP server did not shut down cleanly")
		}
		if err := pool.Stop(ctx); err != nil {
			log.WithError(err).Warn("Summary requests still in flight at exit")
		}
		wsHub.Close()
		registry.Flush()
	}()

	log.Infof("✓ Content summarizer ready on http://localhost:%s", cfg.Port)
	log.Infof("  WS:  ws://localhost:%s/ws", cfg.Port)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("Server error")
	}
	<-stopped
	log.Info("✓ Shutdown complete")
}
